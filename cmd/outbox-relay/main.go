package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prohmpiriya/event-marketplace/internal/di"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/internal/worker"
	"github.com/prohmpiriya/event-marketplace/pkg/config"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := di.InitObservability(ctx, cfg, cfg.App.Name+"-outbox-relay"); err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()
	defer telemetry.Shutdown(context.Background())

	appLog := logger.Get()

	if !cfg.Kafka.Enabled {
		appLog.Fatal("Outbox relay requires KAFKA_ENABLED=true")
	}

	db, err := di.OpenPostgres(ctx, cfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	producer, err := di.OpenProducer(ctx, cfg)
	if err != nil {
		appLog.Fatal("Kafka connection failed", zap.Error(err))
	}
	defer producer.Close()
	appLog.Info("Kafka connected", zap.Strings("brokers", cfg.Kafka.Brokers))

	relay := worker.NewOutboxWorker(
		repository.NewPostgresTxManager(db.Pool()),
		repository.NewPostgresOutboxRepository(db.Pool()),
		producer,
		&worker.OutboxWorkerConfig{
			PollInterval:    cfg.Outbox.PollInterval,
			BatchSize:       cfg.Outbox.BatchSize,
			RetryInterval:   cfg.Outbox.RetryInterval,
			CleanupInterval: cfg.Outbox.CleanupInterval,
			RetentionDays:   cfg.Outbox.RetentionDays,
		},
	)
	if err := relay.Start(ctx); err != nil {
		appLog.Fatal("Failed to start outbox relay", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	relay.Stop()
	appLog.Info("Outbox relay exited")
}
