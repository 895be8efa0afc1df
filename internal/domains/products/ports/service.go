package ports

import (
	"context"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
)

// Service defines the products use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateProduct(ctx context.Context, input types.CreateProductInput) (*types.ProductProjection, error)
	RequestStatusTransition(ctx context.Context, input types.TransitionInput) (*types.ProductProjection, error)
	PerformQualityCheck(ctx context.Context, input types.QualityCheckInput) (*types.ProductProjection, error)
	AutoQualityCheck(ctx context.Context, input types.AutoQualityCheckInput) (*types.ProductProjection, error)
	GetByID(ctx context.Context, input types.ProductIdentifier) (*types.ProductProjection, error)
	GetByTrackingNumber(ctx context.Context, input types.TrackingLookup) (*types.ProductProjection, error)
	Timeline(ctx context.Context, input types.ProductIdentifier) ([]domain.TimelineEntry, error)
	List(ctx context.Context, input types.ListProductsInput) ([]*types.ProductProjection, error)
}
