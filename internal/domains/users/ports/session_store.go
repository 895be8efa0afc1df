package ports

import (
	"context"
	"errors"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
)

// ErrSessionNotFound means the token's session was logged out or purged.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser revokes every session of userID.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	// PurgeExpired deletes sessions expired at the time of the call and
	// returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
