package domain

import (
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// ShipmentCreated is raised when a shipment is opened.
type ShipmentCreated struct {
	events.BaseEvent
	ShipmentID     string             `json:"shipmentId"`
	TrackingNumber string             `json:"trackingNumber"`
	Product        identity.Reference `json:"product"`
	From           identity.Reference `json:"fromUser"`
	To             identity.Reference `json:"toUser"`
}

func (ShipmentCreated) EventName() string { return "shipments.shipment.created" }

// ShipmentStatusChanged is raised for every status update.
type ShipmentStatusChanged struct {
	events.BaseEvent
	ShipmentID string             `json:"shipmentId"`
	FromStatus Status             `json:"fromStatus"`
	ToStatus   Status             `json:"toStatus"`
	Location   string             `json:"location"`
	UpdatedBy  identity.Reference `json:"updatedBy"`
}

func (ShipmentStatusChanged) EventName() string { return "shipments.shipment.status_changed" }

// DelayReported is raised when a delay is appended.
type DelayReported struct {
	events.BaseEvent
	ShipmentID string `json:"shipmentId"`
	Reason     string `json:"reason"`
}

func (DelayReported) EventName() string { return "shipments.shipment.delay_reported" }
