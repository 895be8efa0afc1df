package ports

import (
	"context"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/domain"
)

// Source reads the facts metrics are computed from.
type Source interface {
	// Snapshot reads every context; activitySince bounds the transaction dates.
	Snapshot(ctx context.Context, activitySince time.Time) (domain.Snapshot, error)
	Shipments(ctx context.Context) ([]domain.ShipmentFact, error)
	Products(ctx context.Context) ([]domain.ProductFact, error)
	// Transactions returns the transactions created inside w.
	Transactions(ctx context.Context, w domain.Window) ([]domain.TransactionFact, error)
	Users(ctx context.Context) ([]domain.UserFact, error)
}

// Cache stores serialized results for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service exposes the read-only metrics use cases.
type Service interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	SupplyChain(ctx context.Context, input types.SupplyChainInput) (*domain.SupplyChain, error)
	ProductAnalytics(ctx context.Context, input types.ProductAnalyticsInput) (*domain.ProductAnalytics, error)
	TransactionAnalytics(ctx context.Context, input types.TransactionAnalyticsInput) (*domain.TransactionAnalytics, error)
	UserAnalytics(ctx context.Context, input types.UserAnalyticsInput) (*domain.UserAnalytics, error)
}
