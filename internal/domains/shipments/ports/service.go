package ports

import (
	"context"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
)

// Service defines the shipments use cases exposed to adapters.
type Service interface {
	CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*types.ShipmentProjection, error)
	UpdateShipmentStatus(ctx context.Context, input types.UpdateStatusInput) (*types.ShipmentProjection, error)
	ReportDelay(ctx context.Context, input types.ReportDelayInput) (*types.ShipmentProjection, error)
	ResolveDelay(ctx context.Context, input types.ResolveDelayInput) (*types.ShipmentProjection, error)
	GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error)
	List(ctx context.Context, input types.ListShipmentsInput) ([]*types.ShipmentProjection, error)
}
