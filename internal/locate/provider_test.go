package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIPProvider_FreshQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":19.5,"lon":-99.2}`))
	}))
	defer srv.Close()

	p := NewIPProvider(zap.NewNop())
	p.endpoint = srv.URL

	fix, err := p.CurrentPosition(context.Background(), Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("CurrentPosition failed: %v", err)
	}
	if fix != (Fix{-99.2, 19.5}) {
		t.Errorf("unexpected fix: %v", fix)
	}
}

func TestIPProvider_CachedWithinMaximumAge(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"lat":19.5,"lon":-99.2}`))
	}))
	defer srv.Close()

	p := NewIPProvider(zap.NewNop())
	p.endpoint = srv.URL
	ctx := context.Background()

	if _, err := p.CurrentPosition(ctx, Options{Timeout: time.Second}); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	// Tolerant request is served from cache.
	if _, err := p.CurrentPosition(ctx, Options{Timeout: time.Second, MaximumAge: time.Minute}); err != nil {
		t.Fatalf("cached request failed: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 endpoint hit, got %d", got)
	}

	// A fresh request (no MaximumAge) hits the endpoint again.
	if _, err := p.CurrentPosition(ctx, Options{Timeout: time.Second}); err != nil {
		t.Fatalf("fresh request failed: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 endpoint hits, got %d", got)
	}
}

func TestIPProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewIPProvider(zap.NewNop())
	p.endpoint = srv.URL

	if _, err := p.CurrentPosition(context.Background(), Options{Timeout: time.Second}); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{Fix: Fix{1, 2}}
	if err := p.RequestPermission(context.Background()); err != nil {
		t.Fatalf("unexpected permission error: %v", err)
	}
	fix, err := p.CurrentPosition(context.Background(), Options{})
	if err != nil || fix != (Fix{1, 2}) {
		t.Errorf("unexpected result: %v %v", fix, err)
	}
}
