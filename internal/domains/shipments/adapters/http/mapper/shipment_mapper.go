package mapper

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// CreateShipment is the inbound payload for opening a shipment.
type CreateShipment struct {
	ProductID            string    `json:"productId" binding:"required"`
	FromUserID           string    `json:"fromUser,omitempty"`
	ToUserID             string    `json:"toUser" binding:"required"`
	ExpectedDeliveryDate time.Time `json:"expectedDeliveryDate" binding:"required"`
	Notes                string    `json:"notes,omitempty"`
}

// StatusUpdate is the inbound payload for a status change.
type StatusUpdate struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// DelayReport is the inbound payload for reporting a delay.
type DelayReport struct {
	Reason string `json:"reason" binding:"required"`
	Notes  string `json:"notes"`
}

type LocationEntry struct {
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

type Location struct {
	Current string          `json:"current"`
	History []LocationEntry `json:"history"`
}

type Delay struct {
	Reason     string     `json:"reason"`
	ReportedAt time.Time  `json:"reportedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Shipment is the outbound representation.
type Shipment struct {
	ID                   string             `json:"id"`
	TrackingNumber       string             `json:"trackingNumber"`
	Status               string             `json:"status"`
	Product              identity.Reference `json:"product"`
	FromUser             identity.Reference `json:"fromUser"`
	ToUser               identity.Reference `json:"toUser"`
	ExpectedDeliveryDate time.Time          `json:"expectedDeliveryDate"`
	DeliveredAt          *time.Time         `json:"deliveredAt,omitempty"`
	Delays               []Delay            `json:"delays"`
	Location             Location           `json:"location"`
	Notes                string             `json:"notes,omitempty"`
	Version              int64              `json:"version"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

func ToCreateInput(actor identity.Actor, payload CreateShipment) types.CreateShipmentInput {
	return types.CreateShipmentInput{
		Actor:                actor,
		ProductID:            payload.ProductID,
		FromUserID:           payload.FromUserID,
		ToUserID:             payload.ToUserID,
		ExpectedDeliveryDate: payload.ExpectedDeliveryDate,
		Notes:                payload.Notes,
	}
}

func FromProjection(p *types.ShipmentProjection) Shipment {
	if p == nil || p.Entity == nil {
		return Shipment{}
	}
	s := p.Entity
	out := Shipment{
		ID:                   s.ID,
		TrackingNumber:       s.TrackingNumber,
		Status:               string(s.Status),
		Product:              s.Product,
		FromUser:             s.From,
		ToUser:               s.To,
		ExpectedDeliveryDate: s.ExpectedDeliveryDate,
		DeliveredAt:          s.DeliveredAt,
		Delays:               make([]Delay, 0, len(s.Delays)),
		Location:             Location{Current: s.CurrentLocation, History: make([]LocationEntry, 0, len(s.History))},
		Notes:                s.Notes,
		Version:              p.Metadata.Version,
		CreatedAt:            p.Metadata.CreatedAt,
		UpdatedAt:            p.Metadata.UpdatedAt,
	}
	for _, d := range s.Delays {
		out.Delays = append(out.Delays, Delay{Reason: d.Reason, ReportedAt: d.ReportedAt, ResolvedAt: d.ResolvedAt, Notes: d.Notes})
	}
	for _, h := range s.History {
		out.Location.History = append(out.Location.History, LocationEntry{Location: h.Location, Timestamp: h.Timestamp, Status: string(h.Status)})
	}
	return out
}

func FromProjectionList(list []*types.ShipmentProjection) []Shipment {
	out := make([]Shipment, 0, len(list))
	for _, p := range list {
		out = append(out, FromProjection(p))
	}
	return out
}
