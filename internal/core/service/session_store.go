package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var ErrMalformedSession = errors.New("malformed persisted session")

// SessionStore is the single source of truth for who is logged in. Only
// Hydrate, Login and Logout change it.
type SessionStore struct {
	storage port.KeyValueStore
	log     logrus.FieldLogger

	mu      sync.RWMutex
	session domain.Session
}

func NewSessionStore(storage port.KeyValueStore, log logrus.FieldLogger) *SessionStore {
	return &SessionStore{storage: storage, log: log}
}

// Hydrate restores the session from persisted storage. Anything unreadable
// leaves the store logged out.
func (s *SessionStore) Hydrate(ctx context.Context) {
	desc, err := readDescriptor(ctx, s.storage)
	if err != nil {
		if !errors.Is(err, port.ErrNotFound) {
			s.log.WithError(err).Warn("ignoring persisted session")
		}
		return
	}
	if desc.Token == "" || !desc.Role.Valid() {
		s.log.Debug("persisted session incomplete, staying logged out")
		return
	}

	s.mu.Lock()
	s.session = domain.Session{IsAuthenticated: true, Role: desc.Role}
	s.mu.Unlock()

	s.log.WithField("role", desc.Role).Info("session restored")
}

// Login marks the session authenticated. Roles other than admin and user are
// rejected and leave the session unchanged.
func (s *SessionStore) Login(role domain.Role) {
	if !role.Valid() {
		s.log.WithField("role", role).Warn("refusing login with unknown role")
		return
	}

	s.mu.Lock()
	s.session = domain.Session{IsAuthenticated: true, Role: role}
	s.mu.Unlock()
}

// Logout erases the persisted session and resets the in-memory state. The
// reset happens even when the storage delete fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, port.KeySession); err != nil {
		return fmt.Errorf("erase session: %w", err)
	}
	return nil
}

func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Email returns the email attached to the persisted session, or "".
func (s *SessionStore) Email(ctx context.Context) string {
	desc, err := readDescriptor(ctx, s.storage)
	if err != nil {
		return ""
	}
	return desc.Email
}

// Token returns the persisted bearer token, or "".
func (s *SessionStore) Token(ctx context.Context) string {
	desc, err := readDescriptor(ctx, s.storage)
	if err != nil {
		return ""
	}
	return desc.Token
}

func readDescriptor(ctx context.Context, storage port.KeyValueStore) (domain.SessionDescriptor, error) {
	var desc domain.SessionDescriptor

	data, err := storage.Get(ctx, port.KeySession)
	if err != nil {
		return desc, err
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return desc, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	return desc, nil
}

func writeDescriptor(ctx context.Context, storage port.KeyValueStore, desc domain.SessionDescriptor) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return storage.Set(ctx, port.KeySession, data)
}
