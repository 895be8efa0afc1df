package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu        sync.RWMutex
	shipments map[string]*storedShipment
	tracking  map[string]struct{}
	now       func() time.Time
}

type storedShipment struct {
	shipment *domain.Shipment
	metadata projection.Metadata
}

func NewRepository() *Repository {
	return &Repository{
		shipments: map[string]*storedShipment{},
		tracking:  map[string]struct{}{},
		now:       time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, shipment *domain.Shipment) (*types.ShipmentProjection, error) {
	if shipment == nil {
		return nil, errors.New("cannot save nil shipment")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shipments[shipment.ID]; ok {
		return nil, ports.ErrDuplicate
	}
	if _, ok := r.tracking[shipment.TrackingNumber]; ok {
		return nil, ports.ErrDuplicate
	}
	ts := r.now()
	stored := &storedShipment{
		shipment: shipment.Clone(),
		metadata: projection.Metadata{CreatedAt: ts, UpdatedAt: ts, Version: 1},
	}
	r.shipments[shipment.ID] = stored
	r.tracking[shipment.TrackingNumber] = struct{}{}
	return projectionCopy(stored), nil
}

// Update compares and writes under one lock.
func (r *Repository) Update(_ context.Context, shipment *domain.Shipment, expectedVersion int64) (*types.ShipmentProjection, error) {
	if shipment == nil {
		return nil, errors.New("cannot save nil shipment")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.shipments[shipment.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.metadata.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	stored := &storedShipment{
		shipment: shipment.Clone(),
		metadata: projection.Metadata{
			CreatedAt: entry.metadata.CreatedAt,
			UpdatedAt: r.now(),
			Version:   expectedVersion + 1,
		},
	}
	r.shipments[shipment.ID] = stored
	return projectionCopy(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*types.ShipmentProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.shipments[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// List returns matching shipments, newest first.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*types.ShipmentProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*types.ShipmentProjection, 0, len(r.shipments))
	for _, entry := range r.shipments {
		s := entry.shipment
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.PartyID != "" && s.From.ID != filter.PartyID && s.To.ID != filter.PartyID {
			continue
		}
		if filter.ProductID != "" && s.Product.ID != filter.ProductID {
			continue
		}
		list = append(list, projectionCopy(entry))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Metadata.CreatedAt.After(list[j].Metadata.CreatedAt)
	})
	return list, nil
}

func projectionCopy(entry *storedShipment) *types.ShipmentProjection {
	return &types.ShipmentProjection{Entity: entry.shipment.Clone(), Metadata: entry.metadata}
}
