package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/ports"
	platformobs "github.com/Apurer/supplychain-tracker/internal/platform/observability"
)

const tracerName = "github.com/Apurer/supplychain-tracker/internal/domains/metrics/adapters/observability/service"

// Service decorates the metrics port with tracing and logging.
type Service struct {
	inner ports.Service
	obs   *platformobs.Decorator
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.obs.SetLogger(logger) }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.obs.SetTracer(tr) }
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

func (s *Service) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	ctx, span := s.obs.Start(ctx, "MetricsService.Dashboard")
	defer span.End()
	result, err := s.inner.Dashboard(ctx)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to compute dashboard")
	}
	span.SetAttributes(
		attribute.Int("dashboard.products", result.TotalProducts),
		attribute.Int("dashboard.shipments", result.TotalShipments),
	)
	return result, nil
}

func (s *Service) SupplyChain(ctx context.Context, input types.SupplyChainInput) (*domain.SupplyChain, error) {
	ctx, span := s.obs.Start(ctx, "MetricsService.SupplyChain")
	defer span.End()
	result, err := s.inner.SupplyChain(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to compute supply chain metrics")
	}
	span.SetAttributes(attribute.Int("delivered.count", result.DeliveryTimes.Count))
	return result, nil
}

func (s *Service) ProductAnalytics(ctx context.Context, input types.ProductAnalyticsInput) (*domain.ProductAnalytics, error) {
	ctx, span := s.obs.Start(ctx, "MetricsService.ProductAnalytics",
		attribute.String("filter.category", input.Category),
		attribute.String("filter.sub_category", input.SubCategory),
	)
	defer span.End()
	result, err := s.inner.ProductAnalytics(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to compute product analytics")
	}
	span.SetAttributes(attribute.Int("distribution.groups", len(result.Distribution)))
	return result, nil
}

func (s *Service) TransactionAnalytics(ctx context.Context, input types.TransactionAnalyticsInput) (*domain.TransactionAnalytics, error) {
	ctx, span := s.obs.Start(ctx, "MetricsService.TransactionAnalytics", attribute.String("filter.status", input.Status))
	defer span.End()
	result, err := s.inner.TransactionAnalytics(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to compute transaction analytics")
	}
	span.SetAttributes(attribute.Int("volume.days", len(result.Volume)))
	return result, nil
}

func (s *Service) UserAnalytics(ctx context.Context, input types.UserAnalyticsInput) (*domain.UserAnalytics, error) {
	ctx, span := s.obs.Start(ctx, "MetricsService.UserAnalytics", attribute.String("actor.id", input.Actor.ID))
	defer span.End()
	result, err := s.inner.UserAnalytics(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to compute user analytics", slog.String("actor.id", input.Actor.ID))
	}
	return result, nil
}

var _ ports.Service = (*Service)(nil)
