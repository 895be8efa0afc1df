package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	productworkflows "github.com/Apurer/supplychain-tracker/internal/durable/temporal/workflows/products"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalProductWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineProductWorkflows)(nil)
)

// TemporalProductWorkflows starts product workflows on a Temporal cluster.
type TemporalProductWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalProductWorkflows wires a Temporal client into the orchestrator.
func NewTemporalProductWorkflows(c client.Client) *TemporalProductWorkflows {
	return &TemporalProductWorkflows{client: c, taskQueue: productworkflows.ProductRegistrationTaskQueue}
}

// RegisterProduct starts the Temporal workflow that registers a product.
// Reusing an idempotency key attaches to the workflow already started for it.
func (o *TemporalProductWorkflows) RegisterProduct(ctx context.Context, input producttypes.CreateProductInput) (*producttypes.ProductProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal product workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildRegistrationWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		productworkflows.ProductRegistrationWorkflow,
		productworkflows.ProductRegistrationWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var projection producttypes.ProductProjection
			if err := existingRun.Get(ctx, &projection); err != nil {
				return nil, restoreKind(err)
			}
			return &projection, nil
		}
		return nil, err
	}
	var projection producttypes.ProductProjection
	if err := run.Get(ctx, &projection); err != nil {
		return nil, restoreKind(err)
	}
	return &projection, nil
}

// restoreKind re-attaches the error kind an activity shipped as the
// application error type, so HTTP mapping still works after serialization.
func restoreKind(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	kind, ok := apperrors.KindByName(appErr.Type())
	if !ok {
		return err
	}
	return fmt.Errorf("%w: %s", kind, appErr.Error())
}

// InlineProductWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineProductWorkflows struct {
	service ports.Service
}

// NewInlineProductWorkflows wraps the products service for synchronous execution.
func NewInlineProductWorkflows(service ports.Service) *InlineProductWorkflows {
	return &InlineProductWorkflows{service: service}
}

// RegisterProduct delegates to the application service without durable orchestration.
func (o *InlineProductWorkflows) RegisterProduct(ctx context.Context, input producttypes.CreateProductInput) (*producttypes.ProductProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline product workflows not configured")
	}
	return o.service.CreateProduct(ctx, input)
}

func buildRegistrationWorkflowID(input producttypes.CreateProductInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("product-registration-idem-%s", hashIdempotencyKey(input.Actor.ID+":"+key))
	}
	return fmt.Sprintf("product-registration-%d-%s", time.Now().UnixNano(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// First 16 hex chars keep workflow IDs readable and deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
