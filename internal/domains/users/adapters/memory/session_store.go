package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

// WithClock overrides the time source used by PurgeExpired.
func (s *SessionStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.sessions.Store(session.ID, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	v, ok := s.sessions.Load(id)
	if !ok {
		return domain.Session{}, ports.ErrSessionNotFound
	}
	return v.(domain.Session), nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	var deleted int64
	s.sessions.Range(func(key, value any) bool {
		if value.(domain.Session).UserID == userID {
			s.sessions.Delete(key)
			deleted++
		}
		return true
	})
	return deleted, nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		if value.(domain.Session).Expired(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}
