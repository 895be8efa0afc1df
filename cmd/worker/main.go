package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/supplychain-tracker/internal/app/api"
	productobs "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/observability"
	productapp "github.com/Apurer/supplychain-tracker/internal/domains/products/application"
	productactivities "github.com/Apurer/supplychain-tracker/internal/durable/temporal/activities/products"
	productworkflows "github.com/Apurer/supplychain-tracker/internal/durable/temporal/workflows/products"
	"github.com/Apurer/supplychain-tracker/internal/platform/messaging/kafka"
	platformobservability "github.com/Apurer/supplychain-tracker/internal/platform/observability"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
)

func main() {
	ctx := context.Background()
	const serviceName = "supplychain-tracker-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, err := platformobservability.Setup(ctx, cfg.Telemetry(serviceName, "worker"))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := instruments.Shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos := api.OpenRepositories(ctx, cfg, logger)
	defer cleanupRepos()
	if !repos.Durable {
		logger.Warn("worker is using in-memory repositories; products registered here are not visible to the API")
	}

	// The registration service carries no publisher: AnnounceProduct emits
	// the created event once the workflow has stored the product.
	productService := productobs.New(
		productapp.NewService(repos.Products, productapp.WithClaimStore(repos.ProductClaims)),
		productobs.WithLogger(logger),
		productobs.WithTracer(instruments.Tracer("internal.products.application")),
		productobs.WithMeter(instruments.Meter("internal.products.application")),
	)
	var publisher events.Publisher = events.Discard
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		publisher = kafka.NewEventPublisher(producer, cfg.KafkaTopic)
	}
	activities := productactivities.NewActivities(productService, repos.Products, publisher)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, productworkflows.ProductRegistrationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(productworkflows.ProductRegistrationWorkflow, workflow.RegisterOptions{Name: productworkflows.ProductRegistrationWorkflowName})
	w.RegisterActivityWithOptions(activities.RegisterProduct, activity.RegisterOptions{Name: productactivities.RegisterProductActivityName})
	w.RegisterActivityWithOptions(activities.AnnounceProduct, activity.RegisterOptions{Name: productactivities.AnnounceProductActivityName})

	logger.Info("worker listening", slog.String("taskQueue", productworkflows.ProductRegistrationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
