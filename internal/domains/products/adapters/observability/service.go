package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	platformobs "github.com/Apurer/supplychain-tracker/internal/platform/observability"
)

const tracerName = "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/observability/service"

// Service decorates the products application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	obs     *platformobs.Decorator
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.obs.SetLogger(logger)
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.obs.SetTracer(tr)
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner: inner,
		obs:   platformobs.NewDecorator(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateProduct registers a product with instrumentation.
func (s *Service) CreateProduct(ctx context.Context, input producttypes.CreateProductInput) (*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.CreateProduct",
		attribute.String("actor.id", input.Actor.ID),
		attribute.String("actor.role", string(input.Actor.Role)),
	)
	defer span.End()

	s.obs.Info(ctx, "creating product", slog.String("name", input.Name), slog.String("actor.id", input.Actor.ID))
	result, err := s.inner.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to create product", slog.String("name", input.Name))
	}
	span.SetAttributes(attribute.String("product.id", result.Entity.ID))
	s.metrics.recordCreated(ctx, result.Entity.Category)
	s.obs.Info(ctx, "product created",
		slog.String("product.id", result.Entity.ID),
		slog.String("tracking_number", result.Entity.TrackingNumber),
	)
	return result, nil
}

// RequestStatusTransition moves a product along its lifecycle.
func (s *Service) RequestStatusTransition(ctx context.Context, input producttypes.TransitionInput) (*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.RequestStatusTransition",
		attribute.String("product.id", input.ProductID),
		attribute.String("product.status.target", input.TargetStatus),
		attribute.String("actor.role", string(input.Actor.Role)),
	)
	defer span.End()

	attrs := []slog.Attr{
		slog.String("product.id", input.ProductID),
		slog.String("target", input.TargetStatus),
		slog.String("actor.role", string(input.Actor.Role)),
	}
	s.obs.Info(ctx, "requesting status transition", attrs...)
	result, err := s.inner.RequestStatusTransition(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, input.TargetStatus)
		return nil, s.obs.Fail(ctx, span, err, "status transition rejected", attrs...)
	}
	s.metrics.recordTransition(ctx, result.Entity.Status)
	s.obs.Info(ctx, "product status changed",
		slog.String("product.id", result.Entity.ID),
		slog.String("status", string(result.Entity.Status)),
		slog.Int("timeline.length", len(result.Entity.Timeline)),
	)
	return result, nil
}

// PerformQualityCheck records an inspection outcome.
func (s *Service) PerformQualityCheck(ctx context.Context, input producttypes.QualityCheckInput) (*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.PerformQualityCheck",
		attribute.String("product.id", input.ProductID),
		attribute.Bool("quality_check.passed", input.Passed),
	)
	defer span.End()

	s.obs.Info(ctx, "performing quality check", slog.String("product.id", input.ProductID), slog.Bool("passed", input.Passed))
	result, err := s.inner.PerformQualityCheck(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to record quality check", slog.String("product.id", input.ProductID))
	}
	s.metrics.recordQualityCheck(ctx, input.Passed, false)
	s.obs.Info(ctx, "quality check recorded", slog.String("product.id", result.Entity.ID), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

// AutoQualityCheck records the automated pass.
func (s *Service) AutoQualityCheck(ctx context.Context, input producttypes.AutoQualityCheckInput) (*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.AutoQualityCheck",
		attribute.String("product.id", input.ProductID),
		attribute.String("actor.id", input.Actor.ID),
	)
	defer span.End()

	s.obs.Warn(ctx, "automated quality check requested", slog.String("product.id", input.ProductID), slog.String("actor.id", input.Actor.ID))
	result, err := s.inner.AutoQualityCheck(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to record automated quality check", slog.String("product.id", input.ProductID))
	}
	s.metrics.recordQualityCheck(ctx, true, true)
	return result, nil
}

// GetByID loads a single product.
func (s *Service) GetByID(ctx context.Context, input producttypes.ProductIdentifier) (*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.GetByID", attribute.String("product.id", input.ID))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to load product", slog.String("product.id", input.ID))
	}
	return result, nil
}

// GetByTrackingNumber loads a product by tracking number.
func (s *Service) GetByTrackingNumber(ctx context.Context, input producttypes.TrackingLookup) (*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.GetByTrackingNumber", attribute.String("product.tracking_number", input.TrackingNumber))
	defer span.End()

	result, err := s.inner.GetByTrackingNumber(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to load product by tracking number", slog.String("tracking_number", input.TrackingNumber))
	}
	return result, nil
}

// Timeline returns the lifecycle history.
func (s *Service) Timeline(ctx context.Context, input producttypes.ProductIdentifier) ([]domain.TimelineEntry, error) {
	ctx, span := s.obs.Start(ctx, "Service.Timeline", attribute.String("product.id", input.ID))
	defer span.End()

	result, err := s.inner.Timeline(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to load timeline", slog.String("product.id", input.ID))
	}
	span.SetAttributes(attribute.Int("timeline.length", len(result)))
	return result, nil
}

// List exposes the filtered catalog.
func (s *Service) List(ctx context.Context, input producttypes.ListProductsInput) ([]*producttypes.ProductProjection, error) {
	ctx, span := s.obs.Start(ctx, "Service.List",
		attribute.StringSlice("product.statuses.requested", input.Statuses),
		attribute.String("product.category", input.Category),
	)
	defer span.End()

	s.obs.Info(ctx, "listing products", slog.Any("statuses", input.Statuses), slog.String("category", input.Category))
	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("product.result.count", len(result)))
	return result, nil
}

type serviceMetrics struct {
	created       metric.Int64Counter
	transitions   metric.Int64Counter
	rejections    metric.Int64Counter
	qualityChecks metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("products.service.created", metric.WithDescription("Number of products registered"))
	transitions, _ := m.Int64Counter("products.service.transitions", metric.WithDescription("Number of successful lifecycle transitions"))
	rejections, _ := m.Int64Counter("products.service.transitions_rejected", metric.WithDescription("Number of rejected lifecycle transitions"))
	qualityChecks, _ := m.Int64Counter("products.service.quality_checks", metric.WithDescription("Number of recorded quality checks"))
	return serviceMetrics{
		created:       created,
		transitions:   transitions,
		rejections:    rejections,
		qualityChecks: qualityChecks,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, category string) {
	platformobs.AddCounter(ctx, m.created, 1, attribute.String("product.category", category))
}

func (m serviceMetrics) recordTransition(ctx context.Context, to domain.Status) {
	platformobs.AddCounter(ctx, m.transitions, 1, attribute.String("product.status", string(to)))
}

func (m serviceMetrics) recordRejected(ctx context.Context, target string) {
	platformobs.AddCounter(ctx, m.rejections, 1, attribute.String("product.status.target", target))
}

func (m serviceMetrics) recordQualityCheck(ctx context.Context, passed, automated bool) {
	platformobs.AddCounter(ctx, m.qualityChecks, 1,
		attribute.Bool("quality_check.passed", passed),
		attribute.Bool("quality_check.automated", automated),
	)
}

var _ ports.Service = (*Service)(nil)
