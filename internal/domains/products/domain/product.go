package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	ErrEmptyName         = errors.New("product name is required")
	ErrEmptyLocation     = errors.New("location is required")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("price must be greater or equal to zero")
	ErrUnknownStatus     = errors.New("unknown product status")
	ErrMissingHandler    = errors.New("acting party is required")
	ErrCreateForbidden   = errors.New("only manufacturers can register products")
	ErrNotInQualityCheck = errors.New("product is not awaiting a quality check")
	ErrInspectForbidden  = errors.New("role may not perform quality checks")
)

// AutomatedCheckNote is stored on quality checks recorded by the automated pass.
const AutomatedCheckNote = "Automated quality check process"

// Specifications are immutable business attributes of the product.
type Specifications struct {
	Material  string
	Size      string
	Grade     string
	Finish    string
	Standards []string
}

// CheckDetails are the individual inspections of a quality check.
type CheckDetails struct {
	VisualInspection bool
	MeasurementCheck bool
	FunctionalTest   bool
}

// QualityCheck is the latest inspection outcome stored on the product.
type QualityCheck struct {
	Passed       bool
	Notes        string
	CheckDetails CheckDetails
	PerformedBy  identity.Reference
	PerformedAt  time.Time
	Automated    bool
}

// TimelineEntry is one append-only lifecycle event.
type TimelineEntry struct {
	Status      Status
	Title       string
	Date        time.Time
	Location    string
	Handler     identity.Reference
	Description string
	Metadata    map[string]string
}

// Product is the aggregate owned by the products bounded context.
type Product struct {
	events.Recorder

	ID              string
	TrackingNumber  string
	Name            string
	Description     string
	Category        string
	SubCategory     string
	Manufacturer    identity.Reference
	CurrentOwner    identity.Reference
	CurrentLocation string
	Quantity        int64
	Price           float64
	Specifications  Specifications
	Status          Status
	// DelayedFrom is the state a delayed product returns to.
	DelayedFrom  Status
	Timeline     []TimelineEntry
	QualityCheck *QualityCheck
}

// NewProduct validates the invariants and builds a product at the manufactured
// state with a single seed timeline entry.
func NewProduct(id, trackingNumber, name, location string, creator identity.Reference, at time.Time) (*Product, error) {
	if creator.IsZero() {
		return nil, ErrMissingHandler
	}
	p := &Product{ID: id, TrackingNumber: trackingNumber, Manufacturer: creator, CurrentOwner: creator}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	p.Status = StatusManufactured
	p.CurrentLocation = location
	p.Timeline = []TimelineEntry{{
		Status:      StatusManufactured,
		Title:       StatusManufactured.Humanize(),
		Date:        at,
		Location:    location,
		Handler:     creator,
		Description: "Product registered by manufacturer",
	}}
	p.Record(ProductCreated{
		BaseEvent:      events.BaseEvent{Timestamp: at},
		ProductID:      id,
		TrackingNumber: trackingNumber,
		Name:           p.Name,
		Manufacturer:   creator,
	})
	return p, nil
}

// Rename mutates the product name ensuring the invariant.
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// Describe sets the free-text catalog attributes.
func (p *Product) Describe(description, category, subCategory string) {
	p.Description = strings.TrimSpace(description)
	p.Category = strings.TrimSpace(category)
	p.SubCategory = strings.TrimSpace(subCategory)
}

// UpdateStock sets quantity and unit price.
func (p *Product) UpdateStock(quantity int64, price float64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if price < 0 {
		return ErrInvalidPrice
	}
	p.Quantity = quantity
	p.Price = price
	return nil
}

// UpdateSpecifications replaces the specification block.
func (p *Product) UpdateSpecifications(spec Specifications) {
	spec.Standards = append([]string(nil), spec.Standards...)
	p.Specifications = spec
}

// LastEntry returns the most recent timeline entry.
func (p *Product) LastEntry() (TimelineEntry, bool) {
	if len(p.Timeline) == 0 {
		return TimelineEntry{}, false
	}
	return p.Timeline[len(p.Timeline)-1], true
}

// Transition moves the product to target on behalf of actor, appending exactly
// one timeline entry. On error the product is left untouched.
func (p *Product) Transition(actor identity.Actor, target Status, location, notes string, at time.Time) error {
	if !HasTransitionRights(actor.Role) {
		return &TransitionError{Role: actor.Role, From: p.Status, To: target, Err: ErrTransitionForbidden}
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return ErrEmptyLocation
	}
	if actor.ID == "" {
		return ErrMissingHandler
	}
	if err := CheckTransition(actor.Role, p.Status, target, p.DelayedFrom); err != nil {
		return err
	}
	p.advance(actor, target, location, notes, at)
	return nil
}

// advance appends the timeline entry and moves status. Callers have already
// authorized the move.
func (p *Product) advance(actor identity.Actor, target Status, location, notes string, at time.Time) {
	from := p.Status
	p.Timeline = append(p.Timeline, TimelineEntry{
		Status:      target,
		Title:       from.Humanize(),
		Date:        at,
		Location:    location,
		Handler:     actor.Reference(),
		Description: strings.TrimSpace(notes),
	})
	switch {
	case target == StatusDelayed:
		p.DelayedFrom = from
	case from == StatusDelayed:
		p.DelayedFrom = ""
	}
	p.Status = target
	p.CurrentLocation = location
	p.Record(ProductStatusChanged{
		BaseEvent:  events.BaseEvent{Timestamp: at},
		ProductID:  p.ID,
		FromStatus: from,
		ToStatus:   target,
		Location:   location,
		Handler:    actor.Reference(),
	})
}

// QualityCheckResult is the inspector's outcome.
type QualityCheckResult struct {
	Passed       bool
	Notes        string
	CheckDetails CheckDetails
	Automated    bool
}

// AutomatedPass is the result recorded by the automated quality check.
func AutomatedPass() QualityCheckResult {
	return QualityCheckResult{
		Passed:       true,
		Notes:        AutomatedCheckNote,
		CheckDetails: CheckDetails{VisualInspection: true, MeasurementCheck: true, FunctionalTest: true},
		Automated:    true,
	}
}

// RecordQualityCheck stores the inspection outcome. A pass moves the product
// from quality-check to in-supply with one timeline entry; a failure leaves
// status and timeline as they are.
func (p *Product) RecordQualityCheck(actor identity.Actor, result QualityCheckResult, location string, at time.Time) error {
	if !actor.Is(identity.RoleQualityInspector, identity.RoleAdmin) {
		return ErrInspectForbidden
	}
	if p.Status != StatusQualityCheck {
		return ErrNotInQualityCheck
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = p.CurrentLocation
	}
	check := &QualityCheck{
		Passed:       result.Passed,
		Notes:        strings.TrimSpace(result.Notes),
		CheckDetails: result.CheckDetails,
		PerformedBy:  actor.Reference(),
		PerformedAt:  at,
		Automated:    result.Automated,
	}
	if result.Passed {
		p.advance(actor, StatusInSupply, location, qualityCheckDescription(check), at)
	}
	p.QualityCheck = check
	p.Record(QualityChecked{
		BaseEvent: events.BaseEvent{Timestamp: at},
		ProductID: p.ID,
		Passed:    check.Passed,
		Automated: check.Automated,
		Inspector: check.PerformedBy,
	})
	return nil
}

func qualityCheckDescription(check *QualityCheck) string {
	if check.Notes != "" {
		return "Quality check passed: " + check.Notes
	}
	return "Quality check passed"
}

// Clone returns a deep copy without buffered events.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Recorder = events.Recorder{}
	clone.Specifications.Standards = append([]string(nil), p.Specifications.Standards...)
	if len(p.Timeline) > 0 {
		clone.Timeline = make([]TimelineEntry, len(p.Timeline))
		for i, entry := range p.Timeline {
			if entry.Metadata != nil {
				meta := make(map[string]string, len(entry.Metadata))
				for k, v := range entry.Metadata {
					meta[k] = v
				}
				entry.Metadata = meta
			}
			clone.Timeline[i] = entry
		}
	}
	if p.QualityCheck != nil {
		qc := *p.QualityCheck
		clone.QualityCheck = &qc
	}
	return &clone
}
