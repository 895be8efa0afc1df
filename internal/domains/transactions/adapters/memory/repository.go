package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu           sync.RWMutex
	transactions map[string]*storedTransaction
	publicIDs    map[string]struct{}
	now          func() time.Time
}

type storedTransaction struct {
	tx       *domain.Transaction
	metadata projection.Metadata
}

func NewRepository() *Repository {
	return &Repository{
		transactions: map[string]*storedTransaction{},
		publicIDs:    map[string]struct{}{},
		now:          time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, tx *domain.Transaction) (*types.TransactionProjection, error) {
	if tx == nil {
		return nil, errors.New("cannot save nil transaction")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[tx.ID]; ok {
		return nil, ports.ErrDuplicate
	}
	if _, ok := r.publicIDs[tx.TransactionID]; ok {
		return nil, ports.ErrDuplicate
	}
	ts := r.now()
	stored := &storedTransaction{tx: tx.Clone(), metadata: projection.Metadata{CreatedAt: ts, UpdatedAt: ts, Version: 1}}
	r.transactions[tx.ID] = stored
	r.publicIDs[tx.TransactionID] = struct{}{}
	return projectionCopy(stored), nil
}

// Update compares and writes under one lock.
func (r *Repository) Update(_ context.Context, tx *domain.Transaction, expectedVersion int64) (*types.TransactionProjection, error) {
	if tx == nil {
		return nil, errors.New("cannot save nil transaction")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.transactions[tx.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.metadata.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	stored := &storedTransaction{
		tx: tx.Clone(),
		metadata: projection.Metadata{
			CreatedAt: entry.metadata.CreatedAt,
			UpdatedAt: r.now(),
			Version:   expectedVersion + 1,
		},
	}
	r.transactions[tx.ID] = stored
	return projectionCopy(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*types.TransactionProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.transactions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// List filters, sorts and pages in memory.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*types.TransactionProjection, int, error) {
	r.mu.RLock()
	matches := make([]*types.TransactionProjection, 0, len(r.transactions))
	for _, entry := range r.transactions {
		if matchesFilter(entry, filter) {
			matches = append(matches, projectionCopy(entry))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if filter.Descending {
			a, b = b, a
		}
		switch filter.SortBy {
		case ports.SortByUpdatedAt:
			return a.Metadata.UpdatedAt.Before(b.Metadata.UpdatedAt)
		case ports.SortByStatus:
			return a.Entity.Status < b.Entity.Status
		default:
			return a.Metadata.CreatedAt.Before(b.Metadata.CreatedAt)
		}
	})

	total := len(matches)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Offset >= total {
		return []*types.TransactionProjection{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matches[filter.Offset:end], total, nil
}

func matchesFilter(entry *storedTransaction, f ports.ListFilter) bool {
	tx := entry.tx
	created := entry.metadata.CreatedAt
	switch {
	case f.Status != "" && tx.Status != f.Status:
		return false
	case f.From != nil && created.Before(*f.From):
		return false
	case f.To != nil && created.After(*f.To):
		return false
	case f.ProductID != "" && tx.Product.ID != f.ProductID:
		return false
	case f.UserID != "" && tx.From.ID != f.UserID && tx.To.ID != f.UserID:
		return false
	}
	return tx.Matches(f.Search)
}

func projectionCopy(entry *storedTransaction) *types.TransactionProjection {
	return &types.TransactionProjection{Entity: entry.tx.Clone(), Metadata: entry.metadata}
}
