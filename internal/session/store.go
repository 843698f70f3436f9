// Package session owns the authenticated user's profile snapshot: an
// in-memory current session backed by a single durable record. Every
// screen reads "who is logged in" from here, and only Update/Clear
// mutate it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/models"
)

// ErrNoRecord is returned by a Backend when no session has been persisted.
var ErrNoRecord = errors.New("no session record")

// Backend persists the serialized session under a single named slot.
type Backend interface {
	// Read returns the persisted record, or ErrNoRecord.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the persisted record.
	Write(ctx context.Context, data []byte) error
	// Delete removes the persisted record. Deleting a missing record
	// is not an error.
	Delete(ctx context.Context) error
}

// Store holds the current session and keeps the durable record in step
// with it. All mutations serialize their read-modify-write on one
// mutex, so concurrent updates merge field-by-field instead of losing
// whole patches.
//
// Persistence failures are logged and swallowed: the warm start and the
// durable copy are best-effort, the in-memory session is authoritative
// for the life of the process.
type Store struct {
	mu      sync.Mutex
	current *models.UserSession
	backend Backend
	log     *zap.Logger
}

// NewStore returns a Store over the given backend with no current session.
func NewStore(backend Backend, log *zap.Logger) *Store {
	return &Store{backend: backend, log: log}
}

// Load reads the persisted record into the current session. A missing
// record or a decode failure leaves the current session empty; both are
// logged only, never surfaced.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			s.log.Warn("session load failed", zap.Error(err))
		}
		return
	}

	var user models.UserSession
	if err := json.Unmarshal(data, &user); err != nil {
		s.log.Warn("session decode failed", zap.Error(err))
		return
	}
	s.current = &user
}

// Current returns a copy of the current session, or nil when nobody is
// logged in.
func (s *Store) Current() *models.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Set replaces the current session entirely and persists it. Used on
// successful login and registration.
func (s *Store) Set(ctx context.Context, user models.UserSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &user
	s.persist(ctx)
}

// Update merges patch into the current session, persists the result and
// returns a copy of it. Fields present in the patch overwrite the
// session's fields; everything else is retained. Starting from an empty
// session is allowed. The merge and the swap happen under the lock, so
// callers never observe a partially merged session.
func (s *Store) Update(ctx context.Context, patch models.UserPatch) *models.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := models.UserSession{}
	if s.current != nil {
		merged = *s.current
	}
	patch.Apply(&merged)
	s.current = &merged
	s.persist(ctx)

	u := merged
	return &u
}

// Clear empties the current session and deletes the persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.backend.Delete(ctx); err != nil {
		s.log.Warn("session delete failed", zap.Error(err))
	}
}

// persist writes the current session. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.current)
	if err != nil {
		s.log.Warn("session encode failed", zap.Error(err))
		return
	}
	if err := s.backend.Write(ctx, data); err != nil {
		s.log.Warn("session write failed", zap.Error(err))
	}
}
