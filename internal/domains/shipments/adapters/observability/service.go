package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
	platformobs "github.com/Apurer/supplychain-tracker/internal/platform/observability"
)

const tracerName = "github.com/Apurer/supplychain-tracker/internal/domains/shipments/adapters/observability/service"

// Service decorates the shipments port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	obs     *platformobs.Decorator
	updates metric.Int64Counter
	delays  metric.Int64Counter
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
		s.updates, _ = m.Int64Counter("shipments.service.status_updates", metric.WithDescription("Number of shipment status updates"))
		s.delays, _ = m.Int64Counter("shipments.service.delays", metric.WithDescription("Number of reported shipment delays"))
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

func (s *Service) CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*types.ShipmentProjection, error) {
	ctx, span := s.obs.Start(ctx, "ShipmentService.CreateShipment",
		attribute.String("product.id", input.ProductID),
		attribute.String("actor.id", input.Actor.ID),
	)
	defer span.End()
	result, err := s.inner.CreateShipment(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to create shipment", slog.String("product.id", input.ProductID))
	}
	s.obs.Info(ctx, "shipment created",
		slog.String("shipment.id", result.Entity.ID),
		slog.String("tracking_number", result.Entity.TrackingNumber),
	)
	return result, nil
}

func (s *Service) UpdateShipmentStatus(ctx context.Context, input types.UpdateStatusInput) (*types.ShipmentProjection, error) {
	ctx, span := s.obs.Start(ctx, "ShipmentService.UpdateShipmentStatus",
		attribute.String("shipment.id", input.ShipmentID),
		attribute.String("shipment.status.target", input.Status),
	)
	defer span.End()
	result, err := s.inner.UpdateShipmentStatus(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "shipment status update rejected",
			slog.String("shipment.id", input.ShipmentID), slog.String("target", input.Status))
	}
	platformobs.AddCounter(ctx, s.updates, 1, attribute.String("status", string(result.Entity.Status)))
	s.obs.Info(ctx, "shipment status changed",
		slog.String("shipment.id", result.Entity.ID),
		slog.String("status", string(result.Entity.Status)),
	)
	return result, nil
}

func (s *Service) ReportDelay(ctx context.Context, input types.ReportDelayInput) (*types.ShipmentProjection, error) {
	ctx, span := s.obs.Start(ctx, "ShipmentService.ReportDelay", attribute.String("shipment.id", input.ShipmentID))
	defer span.End()
	result, err := s.inner.ReportDelay(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to report delay", slog.String("shipment.id", input.ShipmentID))
	}
	platformobs.AddCounter(ctx, s.delays, 1)
	s.obs.Warn(ctx, "shipment delayed", slog.String("shipment.id", input.ShipmentID), slog.String("reason", input.Reason))
	return result, nil
}

func (s *Service) ResolveDelay(ctx context.Context, input types.ResolveDelayInput) (*types.ShipmentProjection, error) {
	ctx, span := s.obs.Start(ctx, "ShipmentService.ResolveDelay",
		attribute.String("shipment.id", input.ShipmentID),
		attribute.Int("delay.index", input.Index),
	)
	defer span.End()
	result, err := s.inner.ResolveDelay(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to resolve delay", slog.String("shipment.id", input.ShipmentID))
	}
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error) {
	ctx, span := s.obs.Start(ctx, "ShipmentService.GetByID", attribute.String("shipment.id", id))
	defer span.End()
	return s.inner.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, input types.ListShipmentsInput) ([]*types.ShipmentProjection, error) {
	ctx, span := s.obs.Start(ctx, "ShipmentService.List", attribute.String("filter.status", input.Status))
	defer span.End()
	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to list shipments")
	}
	span.SetAttributes(attribute.Int("result.count", len(result)))
	return result, nil
}

var _ ports.Service = (*Service)(nil)
