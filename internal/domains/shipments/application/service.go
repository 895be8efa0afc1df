package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
	"github.com/Apurer/supplychain-tracker/internal/shared/tracking"
)

// Service orchestrates shipment use cases. Parties and products are resolved
// through directories owned by other contexts.
type Service struct {
	repo      ports.Repository
	parties   identity.Directory
	products  identity.Directory
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
}

// Option customizes the service.
type Option func(*Service)

// WithPublisher sets where shipment events go after a successful write.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides entity id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewService(repo ports.Repository, parties, products identity.Directory, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		parties:   parties,
		products:  products,
		publisher: events.Discard,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateShipment opens a pending shipment. Customers cannot ship.
func (s *Service) CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*types.ShipmentProjection, error) {
	if input.Actor.ID == "" || input.Actor.Is(identity.RoleCustomer) {
		return nil, mapError(domain.ErrCreateForbidden)
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, mapError(domain.ErrMissingProduct)
	}
	if strings.TrimSpace(input.ToUserID) == "" {
		return nil, mapError(domain.ErrMissingParty)
	}
	product, err := s.products.Lookup(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	from := input.Actor.Reference()
	if id := strings.TrimSpace(input.FromUserID); id != "" && id != input.Actor.ID {
		if !input.Actor.Is(identity.RoleAdmin, identity.RoleManufacturer) {
			return nil, mapError(domain.ErrCreateForbidden)
		}
		if from, err = s.parties.Lookup(ctx, id); err != nil {
			return nil, err
		}
	}
	to, err := s.parties.Lookup(ctx, input.ToUserID)
	if err != nil {
		return nil, err
	}
	id := s.newID()
	for attempt := 0; ; attempt++ {
		shipment, err := domain.NewShipment(id, tracking.Number("SHP", tracking.Seed(id, attempt)), product, from, to, input.ExpectedDeliveryDate, input.Notes, s.now())
		if err != nil {
			return nil, mapError(err)
		}
		saved, err := s.repo.Create(ctx, shipment)
		if tracking.Retry(errors.Is(err, ports.ErrDuplicate), attempt) {
			continue
		}
		if err != nil {
			return nil, mapError(err)
		}
		s.publish(ctx, shipment)
		return saved, nil
	}
}

// UpdateShipmentStatus sets status and appends one location history entry.
func (s *Service) UpdateShipmentStatus(ctx context.Context, input types.UpdateStatusInput) (*types.ShipmentProjection, error) {
	target, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	return s.mutate(ctx, input.ShipmentID, func(sh *domain.Shipment) error {
		return sh.UpdateStatus(input.Actor, target, input.Location, input.Notes, s.now())
	})
}

// ReportDelay appends a delay and marks the shipment delayed.
func (s *Service) ReportDelay(ctx context.Context, input types.ReportDelayInput) (*types.ShipmentProjection, error) {
	return s.mutate(ctx, input.ShipmentID, func(sh *domain.Shipment) error {
		return sh.ReportDelay(input.Actor, input.Reason, input.Notes, s.now())
	})
}

// ResolveDelay fills in resolvedAt on one delay.
func (s *Service) ResolveDelay(ctx context.Context, input types.ResolveDelayInput) (*types.ShipmentProjection, error) {
	return s.mutate(ctx, input.ShipmentID, func(sh *domain.Shipment) error {
		return sh.ResolveDelay(input.Actor, input.Index, s.now())
	})
}

func (s *Service) mutate(ctx context.Context, id string, change func(*domain.Shipment) error) (*types.ShipmentProjection, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	shipment := current.Entity
	if err := change(shipment); err != nil {
		return nil, mapError(fmt.Errorf("shipment %s: %w", id, err))
	}
	saved, err := s.repo.Update(ctx, shipment, current.Metadata.Version)
	if err != nil {
		return nil, mapError(fmt.Errorf("shipment %s: %w", id, err))
	}
	s.publish(ctx, shipment)
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input types.ListShipmentsInput) ([]*types.ShipmentProjection, error) {
	filter := ports.ListFilter{PartyID: input.PartyID, ProductID: input.ProductID}
	if strings.TrimSpace(input.Status) != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Status = status
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

// publish is best effort; the write already happened.
func (s *Service) publish(ctx context.Context, shipment *domain.Shipment) {
	_ = events.PublishAll(ctx, s.publisher, shipment.ID, shipment)
}

var _ ports.Service = (*Service)(nil)
