package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/restaurant/backend/internal/application/notification"
	restaurantapp "github.com/restaurant/backend/internal/application/restaurant"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/messaging"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/restaurant/backend/internal/infrastructure/whatsapp"
	"go.uber.org/zap"
)

const consumerTag = "restaurant-notifier"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName + "-notifier",
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level)).Named("notifier")

	if !cfg.RabbitMQ.Enabled {
		log.Fatal("RabbitMQ is disabled; the API delivers notifications inline, the notifier has nothing to consume")
	}

	db, err := persistence.Open(ctx, &cfg.Database,
		logger.NewGormLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	client, err := messaging.Dial(cfg.RabbitMQ.URL, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error("Error closing RabbitMQ", zap.Error(err))
		}
	}()
	if err := client.DeclareTopology(messaging.TopologyFromConfig(&cfg.RabbitMQ)); err != nil {
		log.Fatal("Failed to declare RabbitMQ topology", zap.Error(err))
	}

	// Settings are read per message so toggling the integration takes
	// effect without a restart
	settings := restaurantapp.NewRestaurantService(
		persistence.NewGormRestaurantRepository(db.DB),
		persistence.NewGormWhatsAppSettingsRepository(db.DB),
		cfg.App.Location(),
		log,
	)
	dispatcher := notification.NewDispatcher(settings, whatsapp.NewWebhookSender(nil, log), log)
	consumer := messaging.NewConsumer(client, cfg.RabbitMQ.Queue, consumerTag, cfg.RabbitMQ.PrefetchCount, dispatcher, log)

	log.Info("Notifier started",
		zap.String("queue", cfg.RabbitMQ.Queue),
		zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount),
	)
	if err := consumer.Run(ctx); err != nil {
		log.Error("Notifier stopped", zap.Error(err))
		return
	}
	log.Info("Notifier exited gracefully")
}
