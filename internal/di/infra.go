package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/metrics"
	"github.com/prohmpiriya/event-marketplace/pkg/config"
	"github.com/prohmpiriya/event-marketplace/pkg/database"
	"github.com/prohmpiriya/event-marketplace/pkg/kafka"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/redis"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.uber.org/zap"
)

// InitObservability sets up the global logger, tracer and domain metrics.
// Telemetry failures are logged and the process continues untraced.
func InitObservability(ctx context.Context, cfg *config.Config, serviceName string) error {
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Get()

	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
	} else if telemetryCfg.Enabled {
		log.Info("Telemetry initialized", zap.String("collector", telemetryCfg.CollectorAddr))
	}

	if err := metrics.Init(); err != nil {
		log.Warn("Failed to register metrics", zap.Error(err))
	}
	return nil
}

// OpenPostgres connects the pgx pool described by cfg.Database
func OpenPostgres(ctx context.Context, cfg *config.Config) (*database.PostgresDB, error) {
	return database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
}

// OpenRedis connects Redis when enabled. A nil client with a nil error means disabled.
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	return redis.NewClient(ctx, &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
}

// OpenProducer connects the Kafka producer used by the outbox relay
func OpenProducer(ctx context.Context, cfg *config.Config) (*kafka.Producer, error) {
	return kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:        cfg.Kafka.Brokers,
		ClientID:       cfg.Kafka.ClientID,
		MaxRetries:     3,
		RetryInterval:  100 * time.Millisecond,
		ProduceTimeout: 10 * time.Second,
	})
}
