// Package devserver is an in-memory stand-in for the SaveLook backend,
// implementing the client's request/response contract for local
// development and tests. It issues real verification codes (logged, not
// emailed) and keeps everything in memory; it is not the production
// backend and implements none of its hardening.
package devserver

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/eduarcas/savelook/internal/models"
)

// Store holds registered users and pending verification codes.
type Store struct {
	mu    sync.Mutex
	users map[string]models.UserSession
	codes map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]models.UserSession),
		codes: make(map[string]string),
	}
}

// Users returns all registered users in insertion-independent order.
func (s *Store) Users() []models.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserSession, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}

// IssueCode generates and records a six-digit code for correo,
// replacing any previous one.
func (s *Store) IssueCode(correo string) string {
	id := uuid.New()
	code := fmt.Sprintf("%06d", binary.BigEndian.Uint32(id[:4])%1000000)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[correo] = code
	return code
}

// CheckCode reports whether code matches the one issued for correo.
func (s *Store) CheckCode(correo, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return code != "" && s.codes[correo] == code
}

// Exists reports whether correo is already registered.
func (s *Store) Exists(correo string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[correo]
	return ok
}

// Put inserts or replaces a user record.
func (s *Store) Put(u models.UserSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Correo] = u
}

// Patch applies a partial update to an existing record. Returns false
// when correo is unknown.
func (s *Store) Patch(correo string, patch models.UserPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[correo]
	if !ok {
		return false
	}
	patch.Apply(&u)
	s.users[correo] = u
	return true
}
