package main

import (
	"context"
	"flag"
	"log/slog"
	"time"
)

type expiredSessionStore interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type purger struct {
	store   expiredSessionStore
	logger  *slog.Logger
	timeout time.Duration
}

func onceFlag() bool {
	once := flag.Bool("once", false, "run a single purge and exit")
	flag.Parse()
	return *once
}

// run purges immediately and then every interval until ctx is done.
func (p purger) run(ctx context.Context, interval time.Duration) {
	p.purge(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purge(ctx)
		}
	}
}

func (p purger) purge(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	removed, err := p.store.PurgeExpired(runCtx)
	if err != nil {
		p.logger.Error("session purge failed", slog.String("error", err.Error()))
		return
	}
	p.logger.Info("session purge completed", slog.Int64("removed", removed))
}
