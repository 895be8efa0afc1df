package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	productactivities "github.com/Apurer/supplychain-tracker/internal/durable/temporal/activities/products"
)

// RunProductRegistrationSequence persists a product and then announces it.
// A failed announcement is reported but the stored product is still returned.
func RunProductRegistrationSequence(ctx workflow.Context, input producttypes.CreateProductInput) (*producttypes.ProductProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("product registration sequence started", "name", input.Name)
	registerOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	announceOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var projection producttypes.ProductProjection
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, registerOptions), productactivities.RegisterProductActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("product registration sequence failed", "name", input.Name, "error", err)
		return nil, err
	}
	if projection.Entity == nil {
		logger.Info("product registration sequence persisted")
		return &projection, nil
	}
	logger.Info("product registration sequence persisted", "productId", projection.Entity.ID)

	announceInput := producttypes.ProductIdentifier{ID: projection.Entity.ID}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, announceOptions), productactivities.AnnounceProductActivityName, announceInput).Get(ctx, nil); err != nil {
		logger.Warn("product registration sequence announce failed", "productId", projection.Entity.ID, "error", err)
		return &projection, nil
	}
	logger.Info("product registration sequence announced", "productId", projection.Entity.ID)
	return &projection, nil
}
