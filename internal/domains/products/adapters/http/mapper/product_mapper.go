package mapper

import (
	"time"

	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// Specifications is the HTTP representation of product specifications.
type Specifications struct {
	Material  string   `json:"material,omitempty"`
	Size      string   `json:"size,omitempty"`
	Grade     string   `json:"grade,omitempty"`
	Finish    string   `json:"finish,omitempty"`
	Standards []string `json:"standards,omitempty"`
}

// CreateProduct is the inbound registration payload.
type CreateProduct struct {
	Name            string         `json:"name" binding:"required"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	SubCategory     string         `json:"subCategory"`
	CurrentLocation string         `json:"currentLocation" binding:"required"`
	Quantity        int64          `json:"quantity"`
	Price           float64        `json:"price"`
	Specifications  Specifications `json:"specifications"`
}

// StatusUpdate is the inbound lifecycle transition payload.
type StatusUpdate struct {
	Status   string `json:"status" binding:"required"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// CheckDetails mirrors domain.CheckDetails on the wire.
type CheckDetails struct {
	VisualInspection bool `json:"visualInspection"`
	MeasurementCheck bool `json:"measurementCheck"`
	FunctionalTest   bool `json:"functionalTest"`
}

// QualityCheckRequest is the inbound manual inspection payload.
type QualityCheckRequest struct {
	Passed       *bool        `json:"passed" binding:"required"`
	Notes        string       `json:"notes"`
	Location     string       `json:"location"`
	CheckDetails CheckDetails `json:"checkDetails"`
}

// QualityCheck is the stored inspection outcome.
type QualityCheck struct {
	Passed       bool               `json:"passed"`
	Notes        string             `json:"notes,omitempty"`
	CheckDetails CheckDetails       `json:"checkDetails"`
	PerformedBy  identity.Reference `json:"performedBy"`
	PerformedAt  time.Time          `json:"performedAt"`
	Automated    bool               `json:"automated"`
}

// TimelineEntry is one lifecycle event on the wire.
type TimelineEntry struct {
	Status      string             `json:"status"`
	Title       string             `json:"title"`
	Date        time.Time          `json:"date"`
	Location    string             `json:"location"`
	Handler     identity.Reference `json:"handler"`
	Description string             `json:"description,omitempty"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
}

// Product is the HTTP representation of the aggregate.
type Product struct {
	ID              string             `json:"id"`
	TrackingNumber  string             `json:"trackingNumber"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	Category        string             `json:"category,omitempty"`
	SubCategory     string             `json:"subCategory,omitempty"`
	Manufacturer    identity.Reference `json:"manufacturer"`
	CurrentOwner    identity.Reference `json:"currentOwner"`
	CurrentLocation string             `json:"currentLocation"`
	Quantity        int64              `json:"quantity"`
	Price           float64            `json:"price"`
	Specifications  Specifications     `json:"specifications"`
	Status          string             `json:"status"`
	Timeline        []TimelineEntry    `json:"timeline"`
	QualityCheck    *QualityCheck      `json:"qualityCheck,omitempty"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// ToCreateInput maps the payload to the application input.
func ToCreateInput(actor identity.Actor, payload CreateProduct, idempotencyKey string) producttypes.CreateProductInput {
	return producttypes.CreateProductInput{
		Actor:           actor,
		Name:            payload.Name,
		Description:     payload.Description,
		Category:        payload.Category,
		SubCategory:     payload.SubCategory,
		CurrentLocation: payload.CurrentLocation,
		Quantity:        payload.Quantity,
		Price:           payload.Price,
		Specifications: producttypes.SpecificationsInput{
			Material:  payload.Specifications.Material,
			Size:      payload.Specifications.Size,
			Grade:     payload.Specifications.Grade,
			Finish:    payload.Specifications.Finish,
			Standards: payload.Specifications.Standards,
		},
		IdempotencyKey: idempotencyKey,
	}
}

// ToQualityCheckInput maps a manual inspection payload.
func ToQualityCheckInput(productID string, actor identity.Actor, payload QualityCheckRequest) producttypes.QualityCheckInput {
	input := producttypes.QualityCheckInput{
		ProductID: productID,
		Actor:     actor,
		Notes:     payload.Notes,
		Location:  payload.Location,
		CheckDetails: producttypes.CheckDetailsInput{
			VisualInspection: payload.CheckDetails.VisualInspection,
			MeasurementCheck: payload.CheckDetails.MeasurementCheck,
			FunctionalTest:   payload.CheckDetails.FunctionalTest,
		},
	}
	if payload.Passed != nil {
		input.Passed = *payload.Passed
	}
	return input
}

// FromProjection maps a projection to its HTTP representation.
func FromProjection(proj *producttypes.ProductProjection) Product {
	if proj == nil || proj.Entity == nil {
		return Product{}
	}
	p := proj.Entity
	out := Product{
		ID:              p.ID,
		TrackingNumber:  p.TrackingNumber,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		SubCategory:     p.SubCategory,
		Manufacturer:    p.Manufacturer,
		CurrentOwner:    p.CurrentOwner,
		CurrentLocation: p.CurrentLocation,
		Quantity:        p.Quantity,
		Price:           p.Price,
		Specifications: Specifications{
			Material:  p.Specifications.Material,
			Size:      p.Specifications.Size,
			Grade:     p.Specifications.Grade,
			Finish:    p.Specifications.Finish,
			Standards: p.Specifications.Standards,
		},
		Status:    string(p.Status),
		Timeline:  FromTimeline(p.Timeline),
		Version:   proj.Metadata.Version,
		CreatedAt: proj.Metadata.CreatedAt,
		UpdatedAt: proj.Metadata.UpdatedAt,
	}
	if qc := p.QualityCheck; qc != nil {
		out.QualityCheck = &QualityCheck{
			Passed: qc.Passed,
			Notes:  qc.Notes,
			CheckDetails: CheckDetails{
				VisualInspection: qc.CheckDetails.VisualInspection,
				MeasurementCheck: qc.CheckDetails.MeasurementCheck,
				FunctionalTest:   qc.CheckDetails.FunctionalTest,
			},
			PerformedBy: qc.PerformedBy,
			PerformedAt: qc.PerformedAt,
			Automated:   qc.Automated,
		}
	}
	return out
}

// FromProjectionList maps many projections.
func FromProjectionList(list []*producttypes.ProductProjection) []Product {
	out := make([]Product, 0, len(list))
	for _, proj := range list {
		out = append(out, FromProjection(proj))
	}
	return out
}

// FromTimeline maps timeline entries in order.
func FromTimeline(entries []domain.TimelineEntry) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, TimelineEntry{
			Status:      string(e.Status),
			Title:       e.Title,
			Date:        e.Date,
			Location:    e.Location,
			Handler:     e.Handler,
			Description: e.Description,
			Metadata:    e.Metadata,
		})
	}
	return out
}
