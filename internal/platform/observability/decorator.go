package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Decorator carries the tracer and logger used by the application service
// decorators of each bounded context.
type Decorator struct {
	name   string
	tracer trace.Tracer
	logger *slog.Logger
}

// NewDecorator returns a decorator that traces and logs nowhere until
// SetTracer/SetLogger are called.
func NewDecorator(tracerName string) *Decorator {
	return &Decorator{
		name:   tracerName,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: DiscardLogger(),
	}
}

// SetTracer replaces the tracer; nil keeps the no-op one.
func (d *Decorator) SetTracer(tr trace.Tracer) {
	if tr != nil {
		d.tracer = tr
	}
}

// SetLogger replaces the logger; nil keeps the discarding one.
func (d *Decorator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Start opens a span named name.
func (d *Decorator) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return d.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Info logs at info level.
func (d *Decorator) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	d.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs at warn level.
func (d *Decorator) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	d.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// Fail marks span as failed, logs err and returns it unchanged.
func (d *Decorator) Fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	d.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

// DiscardLogger drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// AddCounter increments counter when it was created.
func AddCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
