package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StaticProvider always reports the same fix. Useful where no real
// position source exists, and as the declarative-permission case:
// RequestPermission always succeeds.
type StaticProvider struct {
	Fix Fix
}

func (p StaticProvider) RequestPermission(ctx context.Context) error { return nil }

func (p StaticProvider) CurrentPosition(ctx context.Context, opts Options) (Fix, error) {
	return p.Fix, nil
}

// defaultIPEndpoint answers {"lat":..,"lon":..} for the caller's IP.
const defaultIPEndpoint = "http://ip-api.com/json"

// IPProvider geolocates by IP address. Accuracy is whatever the source
// offers, but the coarse/precise split still applies: a request with a
// MaximumAge may be answered from the last cached fix, while a fresh
// request always hits the endpoint. Permission is declarative here, so
// RequestPermission is a no-op success.
type IPProvider struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger

	mu       sync.Mutex
	cached   Fix
	cachedAt time.Time
}

// NewIPProvider returns an IPProvider against the public ip-api endpoint.
func NewIPProvider(log *zap.Logger) *IPProvider {
	return &IPProvider{
		endpoint: defaultIPEndpoint,
		client:   &http.Client{},
		log:      log,
	}
}

func (p *IPProvider) RequestPermission(ctx context.Context) error { return nil }

func (p *IPProvider) CurrentPosition(ctx context.Context, opts Options) (Fix, error) {
	if opts.MaximumAge > 0 {
		p.mu.Lock()
		if !p.cachedAt.IsZero() && time.Since(p.cachedAt) <= opts.MaximumAge {
			fix := p.cached
			p.mu.Unlock()
			return fix, nil
		}
		p.mu.Unlock()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return Fix{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Fix{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fix{}, fmt.Errorf("geolocation endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Fix{}, err
	}

	fix := Fix{body.Lon, body.Lat}
	p.mu.Lock()
	p.cached = fix
	p.cachedAt = time.Now()
	p.mu.Unlock()
	return fix, nil
}
