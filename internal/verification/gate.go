// Package verification implements the email-code gate that blocks
// registration until a code has been requested for the address. The
// client is deliberately optimistic about the code itself: any
// non-empty entry passes locally, and the backend is authoritative when
// the code travels with the final registration.
package verification

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/api"
	"github.com/eduarcas/savelook/internal/models"
)

// State is the gate's position in the registration flow.
type State int

const (
	// Idle is the initial state: no code requested yet.
	Idle State = iota
	// CodeSent means the backend accepted a send-code request.
	CodeSent
	// Verified means a non-empty code has been entered.
	Verified
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CodeSent:
		return "code_sent"
	case Verified:
		return "verified"
	}
	return "unknown"
}

var (
	// ErrInvalidEmail rejects syntactically implausible addresses
	// before any network call.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrMissingCode rejects an empty verification code.
	ErrMissingCode = errors.New("verification code required")
	// ErrNoCodeRequested is returned by VerifyCode outside CodeSent.
	ErrNoCodeRequested = errors.New("no verification code has been requested")
	// ErrVerificationRequired blocks Submit before a code was sent.
	ErrVerificationRequired = errors.New("email verification required")
	// ErrMissingFields blocks Submit when required registration fields
	// are empty.
	ErrMissingFields = errors.New("required fields missing")
)

// Gate drives the two-step registration flow: request a code for an
// email, collect the entered code, and submit the registration with the
// code attached. One Gate serves one registration attempt; Reset
// returns it to Idle for a fresh attempt.
type Gate struct {
	mu     sync.Mutex
	state  State
	correo string
	codigo string

	client api.Client
	log    *zap.Logger
}

// NewGate returns a Gate in Idle.
func NewGate(client api.Client, log *zap.Logger) *Gate {
	return &Gate{client: client, log: log}
}

// State returns the gate's current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Email returns the address the current attempt targets.
func (g *Gate) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.correo
}

// RequestCode asks the backend to email a verification code to correo.
// The address must at least contain "@"; otherwise ErrInvalidEmail is
// returned without contacting the backend. On success the gate moves to
// CodeSent. Calling again from CodeSent re-sends without changing
// state. A remote failure leaves the state untouched.
func (g *Gate) RequestCode(ctx context.Context, correo string) error {
	if !strings.Contains(correo, "@") {
		return ErrInvalidEmail
	}

	if err := g.client.SendVerificationCode(ctx, correo); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.correo = correo
	if g.state == Idle {
		g.state = CodeSent
	}
	g.log.Info("verification code sent", zap.String("correo", correo))
	return nil
}

// VerifyCode records the entered code and moves the gate to Verified.
// Valid only from CodeSent; an empty code fails with ErrMissingCode.
// The code is not checked locally beyond non-emptiness: it is handed to
// the backend at Submit, which decides its correctness.
func (g *Gate) VerifyCode(code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != CodeSent {
		return ErrNoCodeRequested
	}
	if code == "" {
		return ErrMissingCode
	}
	g.codigo = code
	g.state = Verified
	return nil
}

// Submit sends the final registration. It is gated: before CodeSent it
// fails with ErrVerificationRequired and performs no network call.
// Required fields (nombre, apellidos, edad, estado, password) must be
// non-empty. The gate's email and entered code are attached to the
// payload; on success the attempt is discarded and the gate resets.
func (g *Gate) Submit(ctx context.Context, reg models.Registration) error {
	g.mu.Lock()
	if g.state == Idle {
		g.mu.Unlock()
		return ErrVerificationRequired
	}
	reg.Correo = g.correo
	reg.Codigo = g.codigo
	g.mu.Unlock()

	if reg.Nombre == "" || reg.Apellidos == "" || reg.Edad == "" || reg.Estado == "" || reg.Password == "" {
		return ErrMissingFields
	}

	if err := g.client.CreateUser(ctx, reg); err != nil {
		return err
	}

	g.log.Info("registration accepted", zap.String("correo", reg.Correo))
	g.Reset()
	return nil
}

// Reset discards the current attempt and returns the gate to Idle.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Idle
	g.correo = ""
	g.codigo = ""
}
