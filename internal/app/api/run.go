package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	trackerserver "github.com/Apurer/supplychain-tracker/go"

	metricsobs "github.com/Apurer/supplychain-tracker/internal/domains/metrics/adapters/observability"
	metricssource "github.com/Apurer/supplychain-tracker/internal/domains/metrics/adapters/source"
	metricsapp "github.com/Apurer/supplychain-tracker/internal/domains/metrics/application"
	productobs "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/observability"
	productworkflows "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/workflows"
	productapp "github.com/Apurer/supplychain-tracker/internal/domains/products/application"
	productports "github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	shipmentobs "github.com/Apurer/supplychain-tracker/internal/domains/shipments/adapters/observability"
	shipmentapp "github.com/Apurer/supplychain-tracker/internal/domains/shipments/application"
	txobs "github.com/Apurer/supplychain-tracker/internal/domains/transactions/adapters/observability"
	txapp "github.com/Apurer/supplychain-tracker/internal/domains/transactions/application"
	txdomain "github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	txports "github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	userobs "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/observability"
	userratelimit "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/ratelimit"
	userapp "github.com/Apurer/supplychain-tracker/internal/domains/users/application"
	userports "github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	"github.com/Apurer/supplychain-tracker/internal/platform/auth"
	"github.com/Apurer/supplychain-tracker/internal/platform/cache/rediscache"
	"github.com/Apurer/supplychain-tracker/internal/platform/messaging/kafka"
	platformobservability "github.com/Apurer/supplychain-tracker/internal/platform/observability"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
)

const serviceName = "supplychain-tracker-api"

// Run boots the tracker HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	instruments, err := platformobservability.Setup(ctx, cfg.Telemetry(serviceName, "api"))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := instruments.Shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	if cfg.DevSecret {
		logger.Warn("JWT_SECRET not set, signing tokens with the development secret", slog.String("environment", cfg.Environment))
	}

	repos, cleanupRepos := OpenRepositories(ctx, cfg, logger)
	defer cleanupRepos()

	publisher, closePublisher := buildPublisher(cfg, logger)
	defer closePublisher()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL())
	if err != nil {
		return fmt.Errorf("failed to configure tokens: %w", err)
	}
	var userOpts []userapp.Option
	redisCache, limiter := connectRedis(ctx, cfg, logger)
	if limiter != nil {
		userOpts = append(userOpts, userapp.WithAttemptLimiter(
			userratelimit.NewLoginLimiter(limiter, int64(cfg.LoginRateLimitPerMinute), time.Minute),
		))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	var userService userports.Service = userobs.New(
		userapp.NewService(repos.Users, repos.Sessions, tokens, userOpts...),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	coreProductService := productapp.NewService(
		repos.Products,
		productapp.WithPublisher(publisher),
		productapp.WithClaimStore(repos.ProductClaims),
	)
	productService := productobs.New(
		coreProductService,
		productobs.WithLogger(logger),
		productobs.WithTracer(instruments.Tracer("internal.products.application")),
		productobs.WithMeter(instruments.Meter("internal.products.application")),
	)
	var productWorkflows productports.WorkflowOrchestrator = productworkflows.NewInlineProductWorkflows(productService)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, registering products inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		productWorkflows = productworkflows.NewTemporalProductWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	shipmentService := shipmentobs.New(
		shipmentapp.NewService(repos.Shipments, userService, coreProductService, shipmentapp.WithPublisher(publisher)),
		shipmentobs.WithLogger(logger),
		shipmentobs.WithTracer(instruments.Tracer("internal.shipments.application")),
		shipmentobs.WithMeter(instruments.Meter("internal.shipments.application")),
	)

	transactionService := txobs.New(
		txapp.NewService(repos.Transactions, partyDirectory(userService), coreProductService, txapp.WithPublisher(publisher)),
		txobs.WithLogger(logger),
		txobs.WithTracer(instruments.Tracer("internal.transactions.application")),
		txobs.WithMeter(instruments.Meter("internal.transactions.application")),
	)

	var metricsOpts []metricsapp.Option
	if redisCache != nil {
		metricsOpts = append(metricsOpts, metricsapp.WithCache(redisCache, cfg.DashboardCacheTTL()))
	}
	metricsService := metricsobs.New(
		metricsapp.NewService(metricssource.New(repos.Products, repos.Shipments, repos.Transactions, repos.Users), metricsOpts...),
		metricsobs.WithLogger(logger),
		metricsobs.WithTracer(instruments.Tracer("internal.metrics.application")),
	)

	handlers := trackerserver.ApiHandleFunctions{
		AuthAPI:        trackerserver.NewAuthAPI(userService),
		ProductAPI:     trackerserver.NewProductAPI(productService, productWorkflows),
		ShipmentAPI:    trackerserver.NewShipmentAPI(shipmentService),
		TransactionAPI: trackerserver.NewTransactionAPI(transactionService),
		MetricsAPI:     trackerserver.NewMetricsAPI(metricsService),
	}

	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := trackerserver.NewRouterWithGinEngine(engine, handlers, userService)
	addr := ":" + cfg.Port
	logger.Info("Supply chain tracker API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Supply chain tracker API exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// partyDirectory resolves transaction parties through the users context.
func partyDirectory(users userports.Service) txports.PartyDirectory {
	return txports.PartyDirectoryFunc(func(ctx context.Context, id string) (txdomain.Party, error) {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return txdomain.Party{}, err
		}
		return txdomain.Party{Reference: user.Reference(), Role: user.Role}, nil
	})
}

// buildPublisher sends events to Kafka when brokers are configured and drops
// them otherwise.
func buildPublisher(cfg Config, logger *slog.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, lifecycle events are discarded")
		return newLoggingPublisher(events.Discard, logger), func() {}
	}
	producer := kafka.NewProducer(cfg.KafkaBrokers)
	logger.Info("publishing lifecycle events to kafka", slog.String("topic", cfg.KafkaTopic))
	return newLoggingPublisher(kafka.NewEventPublisher(producer, cfg.KafkaTopic), logger), func() {
		if err := producer.Close(); err != nil {
			logger.Warn("failed to close kafka producer", slog.String("error", err.Error()))
		}
	}
}

// connectRedis returns nil collaborators when Redis is not configured or not
// reachable; the dashboard is then computed on every request and logins are
// not throttled.
func connectRedis(ctx context.Context, cfg Config, logger *slog.Logger) (*rediscache.RedisCache, *rediscache.RateLimiter) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, running without metrics cache and login rate limiting")
		return nil, nil
	}
	cache := rediscache.New(cfg.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, running without metrics cache and login rate limiting", slog.String("error", err.Error()))
		_ = cache.Close()
		return nil, nil
	}
	logger.Info("redis cache enabled", slog.String("addr", cfg.RedisAddr))
	return cache, rediscache.NewRateLimiter(cfg.RedisAddr)
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
