package ports

import (
	"context"
	"errors"

	"github.com/Apurer/supplychain-tracker/internal/platform/auth"
)

// ErrTooManyAttempts is returned when the login limiter refuses a key.
var ErrTooManyAttempts = errors.New("too many login attempts")

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(subject auth.Subject) (auth.IssuedToken, error)
	Validate(token string) (*auth.Claims, error)
}

// AttemptLimiter throttles repeated login attempts for a key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
