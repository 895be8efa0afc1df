package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceNamespace groups every tracker process in trace backends.
const ServiceNamespace = "supplychain-tracker"

// Settings selects how a tracker process reports logs and traces.
type Settings struct {
	// ServiceName identifies the process, e.g. supplychain-tracker-api.
	ServiceName string
	// Component is the role of the process: api, worker or purger.
	Component   string
	Environment string
	// OTLPEndpoint is host:port of an OTLP/HTTP collector. Empty keeps spans
	// in process unless TraceStdout is set.
	OTLPEndpoint string
	OTLPInsecure bool
	TraceStdout  bool
	LogLevel     string
	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

// Instruments bundles the logger and the providers of one process.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	shutdown []func(context.Context) error
}

// Setup builds the instruments for settings and installs them as the
// process-wide otel and slog defaults.
func Setup(ctx context.Context, settings Settings) (*Instruments, error) {
	if strings.TrimSpace(settings.ServiceName) == "" {
		return nil, errors.New("observability: service name is required")
	}
	logger := newLogger(settings)
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", settings.ServiceName),
			attribute.String("service.namespace", ServiceNamespace),
			attribute.String("deployment.environment", settings.Environment),
			attribute.String("tracker.component", settings.Component),
		),
	)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	exporter, err := spanExporter(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewManualReader()),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("observability configured",
		slog.String("environment", settings.Environment),
		slog.Bool("otlp", settings.OTLPEndpoint != ""),
	)
	return &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		shutdown:       []func(context.Context) error{meterProvider.Shutdown, tracerProvider.Shutdown},
	}, nil
}

// Shutdown flushes pending spans and metrics.
func (i *Instruments) Shutdown(ctx context.Context) error {
	if i == nil {
		return nil
	}
	var err error
	for _, fn := range i.shutdown {
		err = errors.Join(err, fn(ctx))
	}
	return err
}

func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

// ParseLevel maps debug, info, warn and error to slog levels; anything else
// is info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newLogger(settings Settings) *slog.Logger {
	out := settings.LogOutput
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(settings.LogLevel)
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug})).
		With(slog.String("service", settings.ServiceName))
	slog.SetDefault(logger)
	return logger
}

// spanExporter prefers the collector, falls back to stdout when the
// collector exporter cannot be built, and returns nil when spans stay local.
func spanExporter(ctx context.Context, settings Settings, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	if endpoint := strings.TrimSpace(settings.OTLPEndpoint); endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if settings.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err == nil {
			return exporter, nil
		}
		logger.Warn("OTLP exporter unavailable, writing spans to stdout", slog.String("error", err.Error()))
		return stdouttrace.New()
	}
	if settings.TraceStdout {
		return stdouttrace.New()
	}
	return nil, nil
}
