package memory

import (
	"context"
	"sync"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
)

var _ ports.ClaimStore = (*ClaimStore)(nil)

// ClaimStore keeps registration claims in a map guarded by one mutex, so
// check-and-insert is atomic.
type ClaimStore struct {
	mu     sync.Mutex
	claims map[string]ports.Claim
}

func NewClaimStore() *ClaimStore {
	return &ClaimStore{claims: map[string]ports.Claim{}}
}

func (s *ClaimStore) Claim(_ context.Context, c ports.Claim) (ports.Claim, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.claims[c.Key]; ok {
		return owner, false, nil
	}
	s.claims[c.Key] = c
	return c, true, nil
}

func (s *ClaimStore) Release(_ context.Context, key, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.claims[key]; ok && owner.ProductID == productID {
		delete(s.claims, key)
	}
	return nil
}
