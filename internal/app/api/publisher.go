package api

import (
	"context"
	"log/slog"

	"github.com/Apurer/supplychain-tracker/internal/shared/events"
)

// loggingPublisher reports delivery failures. Services publish best effort and
// drop the error, so this is where a failed publish becomes visible.
type loggingPublisher struct {
	next   events.Publisher
	logger *slog.Logger
}

func newLoggingPublisher(next events.Publisher, logger *slog.Logger) events.Publisher {
	if next == nil {
		next = events.Discard
	}
	return &loggingPublisher{next: next, logger: logger}
}

func (p *loggingPublisher) Publish(ctx context.Context, key string, event events.Event) error {
	err := p.next.Publish(ctx, key, event)
	if err != nil && p.logger != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "event publish failed",
			slog.String("event", event.EventName()),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return err
}
