package types

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
	"github.com/Apurer/supplychain-tracker/internal/shared/projection"
)

// ProductProjection transports a product together with its persistence metadata.
type ProductProjection = projection.Projection[*domain.Product]

// NewProductProjection wraps an aggregate with persistence metadata.
func NewProductProjection(p *domain.Product, createdAt, updatedAt time.Time, version int64) *ProductProjection {
	if p == nil {
		return nil
	}
	return &ProductProjection{
		Entity: p,
		Metadata: projection.Metadata{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
			Version:   version,
		},
	}
}

// SpecificationsInput mirrors domain.Specifications for inbound payloads.
type SpecificationsInput struct {
	Material  string
	Size      string
	Grade     string
	Finish    string
	Standards []string
}

// CreateProductInput carries everything needed to register a product.
type CreateProductInput struct {
	Actor           identity.Actor
	Name            string
	Description     string
	Category        string
	SubCategory     string
	CurrentLocation string
	Quantity        int64
	Price           float64
	Specifications  SpecificationsInput
	// IdempotencyKey lets clients retry creation safely.
	IdempotencyKey string
}

// TransitionInput requests a lifecycle move.
type TransitionInput struct {
	ProductID    string
	Actor        identity.Actor
	TargetStatus string
	Location     string
	Notes        string
}

// CheckDetailsInput mirrors domain.CheckDetails.
type CheckDetailsInput struct {
	VisualInspection bool
	MeasurementCheck bool
	FunctionalTest   bool
}

// QualityCheckInput is a manual inspection outcome.
type QualityCheckInput struct {
	ProductID    string
	Actor        identity.Actor
	Passed       bool
	Notes        string
	Location     string
	CheckDetails CheckDetailsInput
}

// AutoQualityCheckInput requests the automated pass.
type AutoQualityCheckInput struct {
	ProductID string
	Actor     identity.Actor
	Location  string
}

// ProductIdentifier addresses a single product.
type ProductIdentifier struct {
	ID string
}

// TrackingLookup addresses a product by its public tracking number.
type TrackingLookup struct {
	TrackingNumber string
}

// ListProductsInput filters the catalog. Empty fields match everything.
type ListProductsInput struct {
	Statuses []string
	Category string
	OwnerID  string
}
