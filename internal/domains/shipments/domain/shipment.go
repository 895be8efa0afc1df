package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	ErrUnknownStatus        = errors.New("unknown shipment status")
	ErrMissingProduct       = errors.New("product is required")
	ErrMissingParty         = errors.New("sender and receiver are required")
	ErrMissingExpectedDate  = errors.New("expected delivery date is required")
	ErrMissingReason        = errors.New("delay reason is required")
	ErrUpdateForbidden      = errors.New("only the shipment parties, admins or manufacturers may update it")
	ErrCreateForbidden      = errors.New("role may not open shipments")
	ErrDelayNotFound        = errors.New("delay not found")
	ErrDelayAlreadyResolved = errors.New("delay is already resolved")
	ErrAlreadyDelivered     = errors.New("shipment is already delivered")
)

// DefaultOrigin is the location of a shipment nobody has moved yet.
const DefaultOrigin = "Origin"

// LocationEntry is one element of the location history.
type LocationEntry struct {
	Location  string
	Timestamp time.Time
	Status    Status
}

// Delay is a reported hold-up; ResolvedAt is the only field ever written after append.
type Delay struct {
	Reason     string
	ReportedAt time.Time
	ResolvedAt *time.Time
	Notes      string
}

// Open reports whether the delay is unresolved.
func (d Delay) Open() bool {
	return d.ResolvedAt == nil
}

// Shipment moves a product between two parties.
type Shipment struct {
	events.Recorder

	ID                   string
	TrackingNumber       string
	Product              identity.Reference
	From                 identity.Reference
	To                   identity.Reference
	Status               Status
	ExpectedDeliveryDate time.Time
	DeliveredAt          *time.Time
	Delays               []Delay
	CurrentLocation      string
	History              []LocationEntry
	Notes                string
}

// NewShipment opens a pending shipment at DefaultOrigin.
func NewShipment(id, trackingNumber string, product, from, to identity.Reference, expected time.Time, notes string, at time.Time) (*Shipment, error) {
	if product.IsZero() {
		return nil, ErrMissingProduct
	}
	if from.IsZero() || to.IsZero() {
		return nil, ErrMissingParty
	}
	if expected.IsZero() {
		return nil, ErrMissingExpectedDate
	}
	s := &Shipment{
		ID:                   id,
		TrackingNumber:       trackingNumber,
		Product:              product,
		From:                 from,
		To:                   to,
		Status:               StatusPending,
		ExpectedDeliveryDate: expected,
		CurrentLocation:      DefaultOrigin,
		Notes:                strings.TrimSpace(notes),
	}
	s.Record(ShipmentCreated{
		BaseEvent:      events.BaseEvent{Timestamp: at},
		ShipmentID:     id,
		TrackingNumber: trackingNumber,
		Product:        product,
		From:           from,
		To:             to,
	})
	return s, nil
}

// CanUpdate reports whether actor may change the shipment.
func (s *Shipment) CanUpdate(actor identity.Actor) bool {
	if actor.Is(identity.RoleAdmin, identity.RoleManufacturer) {
		return true
	}
	return actor.ID != "" && (actor.ID == s.From.ID || actor.ID == s.To.ID)
}

// UpdateStatus sets status and appends exactly one history entry. An empty
// location keeps the current one. Entering delayed opens a delay; leaving it
// resolves every open delay.
func (s *Shipment) UpdateStatus(actor identity.Actor, target Status, location, notes string, at time.Time) error {
	if !s.CanUpdate(actor) {
		return ErrUpdateForbidden
	}
	if _, err := ParseStatus(string(target)); err != nil {
		return err
	}
	from := s.Status
	location = strings.TrimSpace(location)
	if location != "" {
		s.CurrentLocation = location
	}
	s.History = append(s.History, LocationEntry{Location: s.CurrentLocation, Timestamp: at, Status: target})
	s.Status = target

	if target == StatusDelivered {
		delivered := at
		s.DeliveredAt = &delivered
	} else {
		s.DeliveredAt = nil
	}
	switch {
	case target == StatusDelayed && from != StatusDelayed:
		reason := strings.TrimSpace(notes)
		if reason == "" {
			reason = "Status changed to delayed"
		}
		s.Delays = append(s.Delays, Delay{Reason: reason, ReportedAt: at, Notes: strings.TrimSpace(notes)})
	case from == StatusDelayed && target != StatusDelayed:
		s.resolveOpenDelays(at)
	}
	s.Record(ShipmentStatusChanged{
		BaseEvent:  events.BaseEvent{Timestamp: at},
		ShipmentID: s.ID,
		FromStatus: from,
		ToStatus:   target,
		Location:   s.CurrentLocation,
		UpdatedBy:  actor.Reference(),
	})
	return nil
}

// ReportDelay appends a delay and moves the shipment to delayed.
func (s *Shipment) ReportDelay(actor identity.Actor, reason, notes string, at time.Time) error {
	if !s.CanUpdate(actor) {
		return ErrUpdateForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrMissingReason
	}
	if s.Status == StatusDelivered {
		return ErrAlreadyDelivered
	}
	s.Delays = append(s.Delays, Delay{Reason: reason, ReportedAt: at, Notes: strings.TrimSpace(notes)})
	if s.Status != StatusDelayed {
		from := s.Status
		s.Status = StatusDelayed
		s.History = append(s.History, LocationEntry{Location: s.CurrentLocation, Timestamp: at, Status: StatusDelayed})
		s.Record(ShipmentStatusChanged{
			BaseEvent:  events.BaseEvent{Timestamp: at},
			ShipmentID: s.ID,
			FromStatus: from,
			ToStatus:   StatusDelayed,
			Location:   s.CurrentLocation,
			UpdatedBy:  actor.Reference(),
		})
	}
	s.Record(DelayReported{BaseEvent: events.BaseEvent{Timestamp: at}, ShipmentID: s.ID, Reason: reason})
	return nil
}

// ResolveDelay fills resolvedAt on the delay at index.
func (s *Shipment) ResolveDelay(actor identity.Actor, index int, at time.Time) error {
	if !s.CanUpdate(actor) {
		return ErrUpdateForbidden
	}
	if index < 0 || index >= len(s.Delays) {
		return ErrDelayNotFound
	}
	if !s.Delays[index].Open() {
		return ErrDelayAlreadyResolved
	}
	resolved := at
	s.Delays[index].ResolvedAt = &resolved
	return nil
}

func (s *Shipment) resolveOpenDelays(at time.Time) {
	for i := range s.Delays {
		if s.Delays[i].Open() {
			resolved := at
			s.Delays[i].ResolvedAt = &resolved
		}
	}
}

// OnTime reports whether a delivered shipment arrived by its expected date.
func (s *Shipment) OnTime() bool {
	return s.DeliveredAt != nil && !s.DeliveredAt.After(s.ExpectedDeliveryDate)
}

// Clone returns a deep copy without buffered events.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Recorder = events.Recorder{}
	if s.DeliveredAt != nil {
		d := *s.DeliveredAt
		clone.DeliveredAt = &d
	}
	clone.History = append([]LocationEntry(nil), s.History...)
	if s.Delays != nil {
		clone.Delays = make([]Delay, len(s.Delays))
		for i, d := range s.Delays {
			if d.ResolvedAt != nil {
				r := *d.ResolvedAt
				d.ResolvedAt = &r
			}
			clone.Delays[i] = d
		}
	}
	return &clone
}
