package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/app/api"
	userpostgres "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/supplychain-tracker/internal/platform/observability"
	platformpostgres "github.com/Apurer/supplychain-tracker/internal/platform/postgres"
)

const serviceName = "supplychain-tracker-session-purger"

// The purger removes expired sessions every sessionPurgeIntervalMinutes
// until interrupted. Pass -once to run a single pass.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, err := platformobservability.Setup(ctx, cfg.Telemetry(serviceName, "purger"))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = instruments.Shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	if cfg.PostgresDSN == "" {
		log.Fatal("postgresDsn / POSTGRES_DSN not set; cannot purge sessions")
	}
	db, cleanup, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer cleanup()

	p := purger{store: userpostgres.NewSessionStore(db), logger: logger, timeout: 30 * time.Second}
	if onceFlag() {
		p.purge(ctx)
		return
	}
	logger.Info("session purger running", slog.Duration("interval", cfg.SessionPurgeInterval))
	p.run(ctx, cfg.SessionPurgeInterval)
}
