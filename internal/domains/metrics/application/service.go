package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/ports"
	txdomain "github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

const dashboardKey = "metrics:dashboard"

// Service computes metrics from a Source, optionally through a TTL cache.
// Cache failures fall through to a fresh computation.
type Service struct {
	source ports.Source
	cache  ports.Cache
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

// WithCache serves results from c for ttl after they are computed.
func WithCache(c ports.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(source ports.Source, opts ...Option) *Service {
	s := &Service{source: source, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	return cached(ctx, s, dashboardKey, func() (*domain.Dashboard, error) {
		now := s.now().UTC()
		snapshot, err := s.source.Snapshot(ctx, domain.ActivityStart(now))
		if err != nil {
			return nil, err
		}
		d := domain.BuildDashboard(snapshot, now)
		return &d, nil
	})
}

// SupplyChain measures delivery times and delays for shipments created in
// the requested window, the last 30 days by default.
func (s *Service) SupplyChain(ctx context.Context, input types.SupplyChainInput) (*domain.SupplyChain, error) {
	window, err := s.window(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	key := windowKey("metrics:supply-chain", window)
	return cached(ctx, s, key, func() (*domain.SupplyChain, error) {
		shipments, err := s.source.Shipments(ctx)
		if err != nil {
			return nil, err
		}
		m := domain.BuildSupplyChain(shipments, window)
		return &m, nil
	})
}

// ProductAnalytics groups products by category pair and measures how long
// they took to reach each status.
func (s *Service) ProductAnalytics(ctx context.Context, input types.ProductAnalyticsInput) (*domain.ProductAnalytics, error) {
	window, err := s.window(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	filter := domain.ProductFilter{
		Window:      window,
		Category:    strings.TrimSpace(input.Category),
		SubCategory: strings.TrimSpace(input.SubCategory),
	}
	key := windowKey("metrics:products", window) + ":" + strings.ToLower(filter.Category) + ":" + strings.ToLower(filter.SubCategory)
	return cached(ctx, s, key, func() (*domain.ProductAnalytics, error) {
		products, err := s.source.Products(ctx)
		if err != nil {
			return nil, err
		}
		a := domain.BuildProductAnalytics(products, filter)
		return &a, nil
	})
}

// TransactionAnalytics reports daily volume and the status mix.
func (s *Service) TransactionAnalytics(ctx context.Context, input types.TransactionAnalyticsInput) (*domain.TransactionAnalytics, error) {
	window, err := s.window(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	var status string
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := txdomain.ParseStatus(input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		status = string(parsed)
	}
	key := windowKey("metrics:transactions", window) + ":" + status
	return cached(ctx, s, key, func() (*domain.TransactionAnalytics, error) {
		txs, err := s.source.Transactions(ctx, window)
		if err != nil {
			return nil, err
		}
		a := domain.BuildTransactionAnalytics(txs, window, status)
		return &a, nil
	})
}

// UserAnalytics reports registrations and account mixes. Admin only.
func (s *Service) UserAnalytics(ctx context.Context, input types.UserAnalyticsInput) (*domain.UserAnalytics, error) {
	if !input.Actor.Is(identity.RoleAdmin) {
		return nil, mapError(errAdminOnly)
	}
	window, err := s.window(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	key := windowKey("metrics:users", window)
	return cached(ctx, s, key, func() (*domain.UserAnalytics, error) {
		users, err := s.source.Users(ctx)
		if err != nil {
			return nil, err
		}
		a := domain.BuildUserAnalytics(users, window)
		return &a, nil
	})
}

func (s *Service) window(start, end *time.Time) (domain.Window, error) {
	w, err := domain.NewWindow(start, end, s.now().UTC())
	if err != nil {
		return domain.Window{}, mapError(err)
	}
	return w, nil
}

// windowKey rounds to the minute so repeated queries share a cache entry.
func windowKey(prefix string, w domain.Window) string {
	return fmt.Sprintf("%s:%d:%d", prefix, w.Start.Truncate(time.Minute).Unix(), w.End.Truncate(time.Minute).Unix())
}

func cached[T any](ctx context.Context, s *Service, key string, compute func() (*T, error)) (*T, error) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var hit T
			if json.Unmarshal(raw, &hit) == nil {
				return &hit, nil
			}
		}
	}
	result, err := compute()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, key, raw, s.ttl)
		}
	}
	return result, nil
}

var _ ports.Service = (*Service)(nil)
