package products

import (
	"go.temporal.io/sdk/workflow"

	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/durable/temporal/sequences"
)

const (
	// ProductRegistrationWorkflowName is the public identifier for registering the workflow.
	ProductRegistrationWorkflowName = "products.workflows.Registration"
	// ProductRegistrationTaskQueue is the queue consumed by the worker processing product workflows.
	ProductRegistrationTaskQueue = "PRODUCT_REGISTRATION"
)

// ProductRegistrationWorkflowInput captures the payload required to register a product.
type ProductRegistrationWorkflowInput struct {
	Command producttypes.CreateProductInput
	TraceID string
}

// ProductRegistrationWorkflow orchestrates the activities needed to register a product.
func ProductRegistrationWorkflow(ctx workflow.Context, input ProductRegistrationWorkflowInput) (*producttypes.ProductProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ProductRegistrationWorkflow started", withTraceID(input.TraceID, "name", input.Command.Name)...)
	projection, err := sequences.RunProductRegistrationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("ProductRegistrationWorkflow failed", withTraceID(input.TraceID, "name", input.Command.Name, "error", err)...)
		return nil, err
	}
	if projection != nil && projection.Entity != nil {
		logger.Info("ProductRegistrationWorkflow completed", withTraceID(input.TraceID, "productId", projection.Entity.ID)...)
	} else {
		logger.Info("ProductRegistrationWorkflow completed", withTraceID(input.TraceID)...)
	}
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
