// Package auth implements the login and logout lifecycle over the
// remote user directory and the session store.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/api"
	"github.com/eduarcas/savelook/internal/models"
	"github.com/eduarcas/savelook/internal/session"
)

var (
	// ErrMissingCredentials rejects an empty email or password before
	// any network call.
	ErrMissingCredentials = errors.New("email and password required")
	// ErrInvalidCredentials means no directory record matched.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service performs credential checks against the remote directory and
// owns the session on success.
type Service struct {
	client api.Client
	store  *session.Store
	log    *zap.Logger
}

// NewService constructs a Service over the given API client and store.
func NewService(client api.Client, store *session.Store, log *zap.Logger) *Service {
	return &Service{client: client, store: store, log: log}
}

// Login fetches the user directory and looks for an exact email and
// password match. On success the matched record becomes the current
// session (persisted for warm start) and is returned. No match yields
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, correo, password string) (*models.UserSession, error) {
	if correo == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	users, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Correo == correo && u.Password == password {
			s.store.Set(ctx, u)
			s.log.Info("login successful", zap.String("correo", correo))
			return &u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Logout erases the session entirely, including the persisted record.
func (s *Service) Logout(ctx context.Context) {
	s.store.Clear(ctx)
	s.log.Info("logged out")
}
