package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyReused means an Idempotency-Key came back with a different payload.
	ErrKeyReused = errors.New("idempotency key already used for a different registration")
	// ErrRegistrationInFlight means the key is claimed but its product is not written yet.
	ErrRegistrationInFlight = errors.New("registration with this idempotency key is still in progress")
)

// Claim binds a client idempotency key to the product id its registration
// will create. The claim is taken before the product is written.
type Claim struct {
	Key         string
	Fingerprint string
	ProductID   string
	ClaimedAt   time.Time
}

// ClaimStore reserves idempotency keys for product registration.
type ClaimStore interface {
	// Claim stores c unless c.Key is already taken. It returns the claim that
	// owns the key and whether that claim is c.
	Claim(ctx context.Context, c Claim) (Claim, bool, error)
	// Release frees key when the registration that claimed it for productID failed.
	Release(ctx context.Context, key, productID string) error
}
