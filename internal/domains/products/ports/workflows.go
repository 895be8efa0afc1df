package ports

import (
	"context"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the products bounded context.
type WorkflowOrchestrator interface {
	RegisterProduct(ctx context.Context, input types.CreateProductInput) (*types.ProductProjection, error)
}
