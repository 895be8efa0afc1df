package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	platformobs "github.com/Apurer/supplychain-tracker/internal/platform/observability"
)

const tracerName = "github.com/Apurer/supplychain-tracker/internal/domains/transactions/adapters/observability/service"

// Service decorates the transactions port with tracing, logging, and metrics.
type Service struct {
	inner    ports.Service
	obs      *platformobs.Decorator
	recorded metric.Int64Counter
	updates  metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.obs.SetLogger(logger) }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.obs.SetTracer(tr) }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.recorded, _ = m.Int64Counter("transactions.service.recorded", metric.WithDescription("Number of recorded transactions"))
		s.updates, _ = m.Int64Counter("transactions.service.status_updates", metric.WithDescription("Number of transaction status updates"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner, obs: platformobs.NewDecorator(tracerName)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateTransaction(ctx context.Context, input types.CreateTransactionInput) (*types.TransactionProjection, error) {
	ctx, span := s.obs.Start(ctx, "TransactionService.CreateTransaction",
		attribute.String("product.id", input.ProductID),
		attribute.String("actor.id", input.Actor.ID),
		attribute.Int64("transaction.quantity", input.Quantity),
	)
	defer span.End()
	result, err := s.inner.CreateTransaction(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to record transaction", slog.String("product.id", input.ProductID))
	}
	platformobs.AddCounter(ctx, s.recorded, 1)
	s.obs.Info(ctx, "transaction recorded",
		slog.String("transaction.id", result.Entity.ID),
		slog.String("transaction_id", result.Entity.TransactionID),
	)
	return result, nil
}

func (s *Service) UpdateTransactionStatus(ctx context.Context, input types.UpdateStatusInput) (*types.TransactionProjection, error) {
	ctx, span := s.obs.Start(ctx, "TransactionService.UpdateTransactionStatus",
		attribute.String("transaction.id", input.TransactionID),
		attribute.String("transaction.status.target", input.Status),
	)
	defer span.End()
	result, err := s.inner.UpdateTransactionStatus(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "transaction status update rejected",
			slog.String("transaction.id", input.TransactionID), slog.String("target", input.Status))
	}
	platformobs.AddCounter(ctx, s.updates, 1, attribute.String("status", string(result.Entity.Status)))
	s.obs.Info(ctx, "transaction status changed",
		slog.String("transaction.id", result.Entity.ID),
		slog.String("status", string(result.Entity.Status)),
	)
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*types.TransactionProjection, error) {
	ctx, span := s.obs.Start(ctx, "TransactionService.GetByID", attribute.String("transaction.id", id))
	defer span.End()
	return s.inner.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, input types.ListTransactionsInput) (*types.TransactionPage, error) {
	ctx, span := s.obs.Start(ctx, "TransactionService.List",
		attribute.String("filter.status", input.Status),
		attribute.Int("page", input.Page),
		attribute.Int("limit", input.Limit),
	)
	defer span.End()
	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to list transactions")
	}
	span.SetAttributes(attribute.Int("result.total", result.Total))
	return result, nil
}

var _ ports.Service = (*Service)(nil)
