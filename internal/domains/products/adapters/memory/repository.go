package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu         sync.RWMutex
	products   map[string]*storedProduct
	byTracking map[string]string
	now        func() time.Time
}

type storedProduct struct {
	product  *domain.Product
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		products:   map[string]*storedProduct{},
		byTracking: map[string]string{},
		now:        time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Create inserts a new product at version 1.
func (r *Repository) Create(_ context.Context, product *domain.Product) (*types.ProductProjection, error) {
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return nil, ports.ErrDuplicate
	}
	if _, ok := r.byTracking[product.TrackingNumber]; ok {
		return nil, ports.ErrDuplicate
	}
	timestamp := r.now()
	stored := &storedProduct{
		product:  product.Clone(),
		metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp, Version: 1},
	}
	r.products[product.ID] = stored
	r.byTracking[product.TrackingNumber] = product.ID
	return projectionCopy(stored), nil
}

// Update replaces the product when the stored version still equals
// expectedVersion; the check and the write happen under one lock.
func (r *Repository) Update(_ context.Context, product *domain.Product, expectedVersion int64) (*types.ProductProjection, error) {
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.products[product.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.metadata.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	stored := &storedProduct{
		product: product.Clone(),
		metadata: projection.Metadata{
			CreatedAt: entry.metadata.CreatedAt,
			UpdatedAt: r.now(),
			Version:   expectedVersion + 1,
		},
	}
	r.products[product.ID] = stored
	return projectionCopy(stored), nil
}

// GetByID fetches a product if present.
func (r *Repository) GetByID(_ context.Context, id string) (*types.ProductProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// GetByTrackingNumber fetches a product by its public tracking number.
func (r *Repository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*types.ProductProjection, error) {
	r.mu.RLock()
	id, ok := r.byTracking[trackingNumber]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// List returns the products matching filter, newest first.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*types.ProductProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	statuses := map[domain.Status]struct{}{}
	for _, s := range filter.Statuses {
		statuses[s] = struct{}{}
	}
	list := make([]*types.ProductProjection, 0, len(r.products))
	for _, entry := range r.products {
		p := entry.product
		if len(statuses) > 0 {
			if _, ok := statuses[p.Status]; !ok {
				continue
			}
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.OwnerID != "" && p.CurrentOwner.ID != filter.OwnerID {
			continue
		}
		list = append(list, projectionCopy(entry))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Metadata.CreatedAt.After(list[j].Metadata.CreatedAt)
	})
	return list, nil
}

func projectionCopy(entry *storedProduct) *types.ProductProjection {
	return &types.ProductProjection{
		Entity:   entry.product.Clone(),
		Metadata: entry.metadata,
	}
}
