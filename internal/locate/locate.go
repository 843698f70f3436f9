// Package locate acquires the device's position with a two-phase
// strategy: a fast coarse fix published immediately, refined by a
// high-accuracy fix issued shortly after. Consumers always have a
// coordinate; before any real fix arrives they see a fixed fallback.
package locate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fix is a position ordered as [longitude, latitude].
type Fix [2]float64

// Lon returns the longitude component.
func (f Fix) Lon() float64 { return f[0] }

// Lat returns the latitude component.
func (f Fix) Lat() float64 { return f[1] }

// Fallback is the coordinate consumers see before any real fix:
// downtown Mexico City.
var Fallback = Fix{-99.1332, 19.4326}

// ErrPermissionDenied means the user declined the location permission.
var ErrPermissionDenied = errors.New("location permission denied")

// Options tune a single position request.
type Options struct {
	// HighAccuracy requests the best fix the provider can produce.
	HighAccuracy bool
	// Timeout bounds the request.
	Timeout time.Duration
	// MaximumAge accepts a cached fix no older than this; zero demands
	// a fresh one.
	MaximumAge time.Duration
}

// Provider is a source of positions. On platforms with runtime grants
// RequestPermission prompts the user; where permission is declarative
// it is a no-op success.
type Provider interface {
	RequestPermission(ctx context.Context) error
	CurrentPosition(ctx context.Context, opts Options) (Fix, error)
}

// Acquisition parameters. The coarse phase is advisory: cheap, tolerant
// of a cached answer, and allowed to fail. The precise phase demands a
// fresh high-accuracy fix and overrides the coarse one.
const (
	coarseTimeout  = 5 * time.Second
	coarseMaxAge   = 60 * time.Second
	preciseTimeout = 20 * time.Second
	preciseDelay   = time.Second
)

// Publish phases; a higher phase never gets overwritten by a lower one,
// so a slow coarse fix cannot clobber the precise result.
const (
	phaseFallback = iota
	phaseCoarse
	phasePrecise
)

// Acquirer runs the acquisition protocol and holds the current best
// fix. It is safe for concurrent use.
type Acquirer struct {
	mu       sync.Mutex
	current  Fix
	phase    int
	watchers []func(Fix)

	provider Provider
	log      *zap.Logger
	delay    time.Duration
}

// NewAcquirer returns an Acquirer publishing Fallback until a real fix
// arrives.
func NewAcquirer(provider Provider, log *zap.Logger) *Acquirer {
	return &Acquirer{
		current:  Fallback,
		provider: provider,
		log:      log,
		delay:    preciseDelay,
	}
}

// Current returns the most recently published fix.
func (a *Acquirer) Current() Fix {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Watch registers fn to be called on every published fix.
func (a *Acquirer) Watch(fn func(Fix)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watchers = append(a.watchers, fn)
}

func (a *Acquirer) publish(fix Fix, phase int) {
	a.mu.Lock()
	if phase < a.phase {
		a.mu.Unlock()
		return
	}
	a.current = fix
	a.phase = phase
	watchers := make([]func(Fix), len(a.watchers))
	copy(watchers, a.watchers)
	a.mu.Unlock()

	for _, fn := range watchers {
		fn(fix)
	}
}

// Acquire runs the protocol once: permission, coarse fix, then a
// precise fix issued a fixed delay after the coarse one was issued
// (not after it completed). It blocks until the precise phase resolves.
// A denied permission aborts with ErrPermissionDenied and no position
// request is made; fix failures are logged and non-fatal, leaving the
// last published coordinate in effect.
func (a *Acquirer) Acquire(ctx context.Context) error {
	if err := a.provider.RequestPermission(ctx); err != nil {
		a.log.Warn("location permission not granted", zap.Error(err))
		return err
	}

	// Coarse phase, advisory only.
	go func() {
		fix, err := a.provider.CurrentPosition(ctx, Options{
			Timeout:    coarseTimeout,
			MaximumAge: coarseMaxAge,
		})
		if err != nil {
			a.log.Warn("coarse fix failed", zap.Error(err))
			return
		}
		a.publish(fix, phaseCoarse)
	}()

	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	fix, err := a.provider.CurrentPosition(ctx, Options{
		HighAccuracy: true,
		Timeout:      preciseTimeout,
	})
	if err != nil {
		a.log.Warn("precise fix failed", zap.Error(err))
		return nil
	}
	a.publish(fix, phasePrecise)
	return nil
}
