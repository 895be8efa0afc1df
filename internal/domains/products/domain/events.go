package domain

import (
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// ProductCreated is raised when a manufacturer registers a product.
type ProductCreated struct {
	events.BaseEvent
	ProductID      string             `json:"productId"`
	TrackingNumber string             `json:"trackingNumber"`
	Name           string             `json:"name"`
	Manufacturer   identity.Reference `json:"manufacturer"`
}

// EventName returns the event type identifier.
func (e ProductCreated) EventName() string {
	return "products.product.created"
}

// ProductStatusChanged is raised for every successful lifecycle transition.
type ProductStatusChanged struct {
	events.BaseEvent
	ProductID  string             `json:"productId"`
	FromStatus Status             `json:"fromStatus"`
	ToStatus   Status             `json:"toStatus"`
	Location   string             `json:"location"`
	Handler    identity.Reference `json:"handler"`
}

// EventName returns the event type identifier.
func (e ProductStatusChanged) EventName() string {
	return "products.product.status_changed"
}

// QualityChecked is raised when an inspection outcome is stored.
type QualityChecked struct {
	events.BaseEvent
	ProductID string             `json:"productId"`
	Passed    bool               `json:"passed"`
	Automated bool               `json:"automated"`
	Inspector identity.Reference `json:"inspector"`
}

// EventName returns the event type identifier.
func (e QualityChecked) EventName() string {
	return "products.product.quality_checked"
}
