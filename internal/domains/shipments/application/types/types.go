package types

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
	"github.com/Apurer/supplychain-tracker/internal/shared/projection"
)

// ShipmentProjection transports a shipment together with its persistence metadata.
type ShipmentProjection = projection.Projection[*domain.Shipment]

// NewShipmentProjection wraps an aggregate with persistence metadata.
func NewShipmentProjection(s *domain.Shipment, createdAt, updatedAt time.Time, version int64) *ShipmentProjection {
	if s == nil {
		return nil
	}
	return &ShipmentProjection{
		Entity:   s,
		Metadata: projection.Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt, Version: version},
	}
}

// CreateShipmentInput opens a shipment. FromUserID defaults to the actor.
type CreateShipmentInput struct {
	Actor                identity.Actor
	ProductID            string
	FromUserID           string
	ToUserID             string
	ExpectedDeliveryDate time.Time
	Notes                string
}

// UpdateStatusInput sets a shipment status.
type UpdateStatusInput struct {
	ShipmentID string
	Actor      identity.Actor
	Status     string
	Location   string
	Notes      string
}

// ReportDelayInput appends a delay.
type ReportDelayInput struct {
	ShipmentID string
	Actor      identity.Actor
	Reason     string
	Notes      string
}

// ResolveDelayInput resolves the delay at Index.
type ResolveDelayInput struct {
	ShipmentID string
	Actor      identity.Actor
	Index      int
}

// ListShipmentsInput filters listings. Empty fields match everything.
type ListShipmentsInput struct {
	Status    string
	PartyID   string
	ProductID string
}
