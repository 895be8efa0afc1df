package ports

import (
	"context"
	"errors"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrVersionConflict means the stored product changed since it was read.
	ErrVersionConflict = errors.New("product was modified concurrently")
	ErrDuplicate       = errors.New("product already exists")
)

// ListFilter narrows repository listings. Zero values match everything.
type ListFilter struct {
	Statuses []domain.Status
	Category string
	OwnerID  string
}

// Repository persists product aggregates. Update must be atomic: it writes the
// whole document only if the stored version still equals expectedVersion.
type Repository interface {
	Create(ctx context.Context, product *domain.Product) (*types.ProductProjection, error)
	Update(ctx context.Context, product *domain.Product, expectedVersion int64) (*types.ProductProjection, error)
	GetByID(ctx context.Context, id string) (*types.ProductProjection, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*types.ProductProjection, error)
	List(ctx context.Context, filter ListFilter) ([]*types.ProductProjection, error)
}
