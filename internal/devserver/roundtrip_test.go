package devserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/api"
	"github.com/eduarcas/savelook/internal/auth"
	"github.com/eduarcas/savelook/internal/models"
	"github.com/eduarcas/savelook/internal/profile"
	"github.com/eduarcas/savelook/internal/session"
	"github.com/eduarcas/savelook/internal/verification"
)

// TestRegistrationLoginProfileRoundTrip drives the whole client stack
// against the fixture: request a code, register, log in, edit the
// profile, log out.
func TestRegistrationLoginProfileRoundTrip(t *testing.T) {
	log := zap.NewNop()
	fixture := NewStore()
	srv := httptest.NewServer(NewRouter(&Handler{Store: fixture, Log: log}, log))
	defer srv.Close()

	ctx := context.Background()
	client := api.New(srv.URL, log)

	// Registration, gated on the emailed code.
	gate := verification.NewGate(client, log)
	if err := gate.Submit(ctx, models.Registration{}); !errors.Is(err, verification.ErrVerificationRequired) {
		t.Fatalf("expected gate to block submission, got %v", err)
	}

	if err := gate.RequestCode(ctx, "ana@b.com"); err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	code := fixture.codes["ana@b.com"]
	if err := gate.VerifyCode(code); err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	err := gate.Submit(ctx, models.Registration{
		Password:  "secret",
		Nombre:    "Ana",
		Apellidos: "García",
		Edad:      "30",
		Estado:    "CDMX",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Login with the new credentials.
	store := session.NewStore(session.NewFileBackend(filepath.Join(t.TempDir(), "session.json")), log)
	authSvc := auth.NewService(client, store, log)

	if _, err := authSvc.Login(ctx, "ana@b.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	user, err := authSvc.Login(ctx, "ana@b.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Nombre != "Ana" || user.Edad != 30 {
		t.Errorf("unexpected logged-in user: %+v", user)
	}

	// Profile edit lands both remotely and in the session.
	editor := profile.NewEditor(store, client, log)
	f := editor.Form()
	f.Nombre = "Anita"
	f.TipoSangre = "o+"
	editor.SetForm(f)
	if err := editor.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	remote, err := client.UserByEmail(ctx, "ana@b.com")
	if err != nil {
		t.Fatalf("UserByEmail failed: %v", err)
	}
	if remote.Nombre != "Anita" || remote.TipoSangre != "O+" {
		t.Errorf("remote record not updated: %+v", remote)
	}
	if cur := store.Current(); cur.Nombre != "Anita" {
		t.Errorf("session not updated: %+v", cur)
	}

	authSvc.Logout(ctx)
	if store.Current() != nil {
		t.Error("expected empty session after logout")
	}
}
