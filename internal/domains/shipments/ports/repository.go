package ports

import (
	"context"
	"errors"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/domain"
)

var (
	ErrNotFound = errors.New("shipment not found")
	// ErrVersionConflict means the stored shipment changed since it was read.
	ErrVersionConflict = errors.New("shipment was modified concurrently")
	ErrDuplicate       = errors.New("shipment already exists")
)

// ListFilter narrows listings. PartyID matches sender or receiver.
type ListFilter struct {
	Status    domain.Status
	PartyID   string
	ProductID string
}

// Repository persists shipments. Update writes only when the stored version
// still equals expectedVersion.
type Repository interface {
	Create(ctx context.Context, shipment *domain.Shipment) (*types.ShipmentProjection, error)
	Update(ctx context.Context, shipment *domain.Shipment, expectedVersion int64) (*types.ShipmentProjection, error)
	GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error)
	List(ctx context.Context, filter ListFilter) ([]*types.ShipmentProjection, error)
}
