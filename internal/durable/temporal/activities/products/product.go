package products

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	productports "github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
)

const (
	// RegisterProductActivityName persists a new product aggregate.
	RegisterProductActivityName = "products.activities.RegisterProduct"
	// AnnounceProductActivityName publishes the registration event for a stored product.
	AnnounceProductActivityName = "products.activities.AnnounceProduct"
)

// Activities groups activities that operate on the products bounded context.
type Activities struct {
	registerService productports.Service
	repo            productports.Repository
	publisher       events.Publisher
}

// NewActivities wires the products collaborators into the Temporal activities bundle.
// registerService should be constructed without a publisher so the created
// event goes out once, from AnnounceProduct.
func NewActivities(registerService productports.Service, repo productports.Repository, publisher events.Publisher) *Activities {
	return &Activities{
		registerService: registerService,
		repo:            repo,
		publisher:       publisher,
	}
}

// RegisterProduct stores a new product and returns its projection.
func (a *Activities) RegisterProduct(ctx context.Context, input producttypes.CreateProductInput) (*producttypes.ProductProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.registerService == nil {
		logger.Error("product register activity not initialized", "name", input.Name)
		return nil, errors.New("product register activity not initialized")
	}
	logger.Info("RegisterProduct activity started", "name", input.Name, "actorId", input.Actor.ID)
	projection, err := a.registerService.CreateProduct(ctx, input)
	if err != nil {
		logger.Error("RegisterProduct activity failed", "name", input.Name, "error", err)
		if kind := apperrors.KindName(err); kind != "" {
			// Domain rejections are final.
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), kind, nil)
		}
		return nil, err
	}
	logger.Info("RegisterProduct activity completed", "productId", projection.Entity.ID)
	return projection, nil
}

// AnnounceProduct loads a product and publishes its created event.
func (a *Activities) AnnounceProduct(ctx context.Context, input producttypes.ProductIdentifier) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		logger.Error("product announce activity not initialized", "productId", input.ID)
		return errors.New("product announce activity not initialized")
	}
	if a.publisher == nil {
		logger.Info("event publisher not configured; skipping", "productId", input.ID)
		return nil
	}
	if a.repo == nil {
		logger.Error("product repository not configured for announce", "productId", input.ID)
		return errors.New("product repository not configured for announce")
	}

	var hb announceHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("AnnounceProduct already completed in prior attempt; skipping", "productId", input.ID)
		return nil
	}

	projection, err := a.repo.GetByID(ctx, input.ID)
	if err != nil {
		logger.Error("AnnounceProduct failed to load product", "productId", input.ID, "error", err)
		return err
	}
	p := projection.Entity
	created := domain.ProductCreated{
		BaseEvent:      events.BaseEvent{Timestamp: projection.Metadata.CreatedAt},
		ProductID:      p.ID,
		TrackingNumber: p.TrackingNumber,
		Name:           p.Name,
		Manufacturer:   p.Manufacturer,
	}
	if err := a.publisher.Publish(ctx, p.ID, created); err != nil {
		logger.Error("AnnounceProduct failed", "productId", input.ID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, announceHeartbeat{Completed: true})
	logger.Info("AnnounceProduct activity completed", "productId", input.ID)
	return nil
}

type announceHeartbeat struct {
	Completed bool
}
