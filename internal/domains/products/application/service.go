package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
	"github.com/Apurer/supplychain-tracker/internal/shared/tracking"
)

// Service orchestrates the products bounded context use cases. Every write is
// one read-modify-write guarded by the repository's version check.
type Service struct {
	repo      ports.Repository
	claims    ports.ClaimStore
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
}

// Option customizes the service.
type Option func(*Service)

// WithClaimStore enables replay-safe registration through Idempotency-Key.
func WithClaimStore(store ports.ClaimStore) Option {
	return func(s *Service) {
		s.claims = store
	}
}

// WithPublisher sets where lifecycle events go after a successful write.
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

// NewService wires the products service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
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

// CreateProduct registers a product at the manufactured state. With an
// idempotency key the key is claimed for the new product id before anything
// is written; a replay returns the product the claim points to.
func (s *Service) CreateProduct(ctx context.Context, input types.CreateProductInput) (*types.ProductProjection, error) {
	if !input.Actor.Is(identity.RoleManufacturer, identity.RoleAdmin) {
		return nil, mapError(domain.ErrCreateForbidden)
	}
	id := s.newID()
	key := strings.TrimSpace(input.IdempotencyKey)
	claimed := false
	if key != "" && s.claims != nil {
		fingerprint, err := FingerprintCreateProduct(input)
		if err != nil {
			return nil, err
		}
		owner, won, err := s.claims.Claim(ctx, ports.Claim{Key: key, Fingerprint: fingerprint, ProductID: id, ClaimedAt: s.now()})
		if err != nil {
			return nil, err
		}
		if !won {
			return s.replay(ctx, owner, fingerprint)
		}
		claimed = true
	}

	saved, product, err := s.createWithTracking(ctx, id, input)
	if err != nil {
		if claimed {
			_ = s.claims.Release(ctx, key, id)
		}
		return nil, mapError(err)
	}
	s.publish(ctx, product)
	return saved, nil
}

func (s *Service) replay(ctx context.Context, owner ports.Claim, fingerprint string) (*types.ProductProjection, error) {
	if owner.Fingerprint != fingerprint {
		return nil, mapError(ports.ErrKeyReused)
	}
	existing, err := s.repo.GetByID(ctx, owner.ProductID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(ports.ErrRegistrationInFlight)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return existing, nil
}

// createWithTracking retries with a fresh tracking number when the stored
// one collides.
func (s *Service) createWithTracking(ctx context.Context, id string, input types.CreateProductInput) (*types.ProductProjection, *domain.Product, error) {
	for attempt := 0; ; attempt++ {
		product, err := s.buildProduct(id, tracking.Number("PRD", tracking.Seed(id, attempt)), input)
		if err != nil {
			return nil, nil, err
		}
		saved, err := s.repo.Create(ctx, product)
		if err == nil {
			return saved, product, nil
		}
		if !tracking.Retry(errors.Is(err, ports.ErrDuplicate), attempt) {
			return nil, nil, err
		}
	}
}

func (s *Service) buildProduct(id, trackingNumber string, input types.CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(id, trackingNumber, input.Name, input.CurrentLocation, input.Actor.Reference(), s.now())
	if err != nil {
		return nil, err
	}
	product.Describe(input.Description, input.Category, input.SubCategory)
	if err := product.UpdateStock(input.Quantity, input.Price); err != nil {
		return nil, err
	}
	product.UpdateSpecifications(domain.Specifications{
		Material:  strings.TrimSpace(input.Specifications.Material),
		Size:      strings.TrimSpace(input.Specifications.Size),
		Grade:     strings.TrimSpace(input.Specifications.Grade),
		Finish:    strings.TrimSpace(input.Specifications.Finish),
		Standards: input.Specifications.Standards,
	})
	return product, nil
}

// RequestStatusTransition moves a product along the lifecycle table.
func (s *Service) RequestStatusTransition(ctx context.Context, input types.TransitionInput) (*types.ProductProjection, error) {
	if !domain.HasTransitionRights(input.Actor.Role) {
		err := &domain.TransitionError{Role: input.Actor.Role, To: domain.Status(input.TargetStatus), Err: domain.ErrTransitionForbidden}
		return nil, mapError(fmt.Errorf("product %s: %w", input.ProductID, err))
	}
	target, err := domain.ParseStatus(input.TargetStatus)
	if err != nil {
		return nil, mapError(err)
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, mapError(domain.ErrEmptyLocation)
	}
	return s.mutate(ctx, input.ProductID, func(p *domain.Product) error {
		return p.Transition(input.Actor, target, input.Location, input.Notes, s.now())
	})
}

// PerformQualityCheck records a manual inspection outcome.
func (s *Service) PerformQualityCheck(ctx context.Context, input types.QualityCheckInput) (*types.ProductProjection, error) {
	if !input.Actor.Is(identity.RoleQualityInspector, identity.RoleAdmin) {
		return nil, mapError(domain.ErrInspectForbidden)
	}
	result := domain.QualityCheckResult{
		Passed: input.Passed,
		Notes:  input.Notes,
		CheckDetails: domain.CheckDetails{
			VisualInspection: input.CheckDetails.VisualInspection,
			MeasurementCheck: input.CheckDetails.MeasurementCheck,
			FunctionalTest:   input.CheckDetails.FunctionalTest,
		},
	}
	return s.mutate(ctx, input.ProductID, func(p *domain.Product) error {
		return p.RecordQualityCheck(input.Actor, result, input.Location, s.now())
	})
}

// AutoQualityCheck records an automated pass attributed to the caller.
func (s *Service) AutoQualityCheck(ctx context.Context, input types.AutoQualityCheckInput) (*types.ProductProjection, error) {
	if !input.Actor.Is(identity.RoleQualityInspector, identity.RoleAdmin) {
		return nil, mapError(domain.ErrInspectForbidden)
	}
	return s.mutate(ctx, input.ProductID, func(p *domain.Product) error {
		return p.RecordQualityCheck(input.Actor, domain.AutomatedPass(), input.Location, s.now())
	})
}

// mutate loads the product, applies change and writes it back only if nobody
// else wrote in between. Losing the race surfaces as a conflict.
func (s *Service) mutate(ctx context.Context, id string, change func(*domain.Product) error) (*types.ProductProjection, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	product := current.Entity
	if err := change(product); err != nil {
		return nil, mapError(fmt.Errorf("product %s: %w", id, err))
	}
	saved, err := s.repo.Update(ctx, product, current.Metadata.Version)
	if err != nil {
		return nil, mapError(fmt.Errorf("product %s: %w", id, err))
	}
	s.publish(ctx, product)
	return saved, nil
}

// publish is best effort; the write already happened.
func (s *Service) publish(ctx context.Context, product *domain.Product) {
	_ = events.PublishAll(ctx, s.publisher, product.ID, product)
}

// GetByID loads a single product.
func (s *Service) GetByID(ctx context.Context, input types.ProductIdentifier) (*types.ProductProjection, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// Lookup resolves a product id for other bounded contexts.
func (s *Service) Lookup(ctx context.Context, id string) (identity.Reference, error) {
	projection, err := s.GetByID(ctx, types.ProductIdentifier{ID: id})
	if err != nil {
		return identity.Reference{}, err
	}
	return identity.Reference{ID: projection.Entity.ID, DisplayName: projection.Entity.Name}, nil
}

// GetByTrackingNumber loads a product by its public tracking number.
func (s *Service) GetByTrackingNumber(ctx context.Context, input types.TrackingLookup) (*types.ProductProjection, error) {
	projection, err := s.repo.GetByTrackingNumber(ctx, strings.ToUpper(strings.TrimSpace(input.TrackingNumber)))
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// Timeline returns the ordered lifecycle history of a product.
func (s *Service) Timeline(ctx context.Context, input types.ProductIdentifier) ([]domain.TimelineEntry, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection.Entity.Timeline, nil
}

// List exposes the catalog filtered by status, category or current owner.
func (s *Service) List(ctx context.Context, input types.ListProductsInput) ([]*types.ProductProjection, error) {
	filter := ports.ListFilter{
		Category: strings.TrimSpace(input.Category),
		OwnerID:  strings.TrimSpace(input.OwnerID),
	}
	for _, raw := range input.Statuses {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

var (
	_ ports.Service      = (*Service)(nil)
	_ identity.Directory = (*Service)(nil)
)
