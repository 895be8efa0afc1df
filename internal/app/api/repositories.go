package api

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	productmemory "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/memory"
	productpostgres "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/persistence/postgres"
	productports "github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	shipmentmemory "github.com/Apurer/supplychain-tracker/internal/domains/shipments/adapters/memory"
	shipmentpostgres "github.com/Apurer/supplychain-tracker/internal/domains/shipments/adapters/persistence/postgres"
	shipmentports "github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
	txmemory "github.com/Apurer/supplychain-tracker/internal/domains/transactions/adapters/memory"
	txpostgres "github.com/Apurer/supplychain-tracker/internal/domains/transactions/adapters/persistence/postgres"
	txports "github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	usermemory "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/memory"
	userpostgres "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	"github.com/Apurer/supplychain-tracker/internal/platform/migrations"
	platformpostgres "github.com/Apurer/supplychain-tracker/internal/platform/postgres"
)

// Repositories bundles the write-side stores of every bounded context.
type Repositories struct {
	Users         userports.Repository
	Sessions      userports.SessionStore
	Products      productports.Repository
	ProductClaims productports.ClaimStore
	Shipments     shipmentports.Repository
	Transactions  txports.Repository
	// Durable is false when the stores live in process memory.
	Durable bool
}

// MemoryRepositories returns in-process stores.
func MemoryRepositories() *Repositories {
	return &Repositories{
		Users:         usermemory.NewRepository(),
		Sessions:      usermemory.NewSessionStore(),
		Products:      productmemory.NewRepository(),
		ProductClaims: productmemory.NewClaimStore(),
		Shipments:     shipmentmemory.NewRepository(),
		Transactions:  txmemory.NewRepository(),
	}
}

// PostgresRepositories returns gorm-backed stores sharing db.
func PostgresRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         userpostgres.NewRepository(db),
		Sessions:      userpostgres.NewSessionStore(db),
		Products:      productpostgres.NewRepository(db),
		ProductClaims: productpostgres.NewClaimStore(db),
		Shipments:     shipmentpostgres.NewRepository(db),
		Transactions:  txpostgres.NewRepository(db),
		Durable:       true,
	}
}

// OpenRepositories connects to PostgreSQL and migrates the schema, falling
// back to memory stores when no DSN is configured or the database is down.
func OpenRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (*Repositories, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return MemoryRepositories(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return MemoryRepositories(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return MemoryRepositories(), func() {}
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		logger.Warn("schema migration failed, falling back to memory", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return MemoryRepositories(), func() {}
	}
	logger.Info("repositories configured with postgres")
	return PostgresRepositories(db), func() { _ = sqlDB.Close() }
}
