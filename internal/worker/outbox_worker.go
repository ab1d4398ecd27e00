package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/metrics"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/pkg/kafka"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"go.uber.org/zap"
)

var ErrWorkerRunning = errors.New("outbox worker already running")

// Publisher sends one record to the broker. *kafka.Producer satisfies it.
type Publisher interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polling for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages to fetch in each poll
	BatchSize int
	// RetryInterval is the interval between retrying failed messages
	RetryInterval time.Duration
	// CleanupInterval is the interval between cleanup of old published messages
	CleanupInterval time.Duration
	// RetentionDays is how long published messages are kept
	RetentionDays int
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:    100 * time.Millisecond,
		BatchSize:       100,
		RetryInterval:   5 * time.Second,
		CleanupInterval: time.Hour,
		RetentionDays:   7,
	}
}

// OutboxWorker relays committed outbox rows to Kafka. Rows are claimed with
// FOR UPDATE SKIP LOCKED inside a transaction, so several relays can run side by side.
type OutboxWorker struct {
	tx         repository.TxManager
	outboxRepo repository.OutboxRepository
	publisher  Publisher
	config     *OutboxWorkerConfig
	log        *logger.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(
	tx repository.TxManager,
	outboxRepo repository.OutboxRepository,
	publisher Publisher,
	config *OutboxWorkerConfig,
) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}

	return &OutboxWorker{
		tx:         tx,
		outboxRepo: outboxRepo,
		publisher:  publisher,
		config:     config,
		log:        logger.Get().With(zap.String("component", "outbox_worker")),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the outbox worker
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWorkerRunning
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting outbox worker",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(3)
	go w.every(ctx, w.config.PollInterval, w.ProcessPending)
	go w.every(ctx, w.config.RetryInterval, w.ProcessFailed)
	go w.every(ctx, w.config.CleanupInterval, func(ctx context.Context) { _, _ = w.Cleanup(ctx) })

	return nil
}

// Stop stops the outbox worker and waits for in-flight batches
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Outbox worker stopped")
}

// IsRunning reports whether Start has been called without a matching Stop
func (w *OutboxWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *OutboxWorker) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// ProcessPending publishes one batch of pending messages
func (w *OutboxWorker) ProcessPending(ctx context.Context) {
	w.relay(ctx, "pending", w.outboxRepo.GetPending)
}

// ProcessFailed republishes one batch of failed messages that still have attempts left
func (w *OutboxWorker) ProcessFailed(ctx context.Context) {
	w.relay(ctx, "failed", w.outboxRepo.GetRetryable)
}

func (w *OutboxWorker) relay(ctx context.Context, kind string, fetch func(context.Context, int) ([]*domain.OutboxMessage, error)) {
	err := w.tx.WithTx(ctx, func(ctx context.Context) error {
		messages, err := fetch(ctx, w.config.BatchSize)
		if err != nil {
			return err
		}

		for _, msg := range messages {
			if err := w.publish(ctx, msg); err != nil {
				w.log.Warn("Failed to publish outbox message",
					zap.String("kind", kind),
					zap.String("message_id", msg.ID),
					zap.String("event_type", string(msg.EventType)),
					zap.Int("attempt", msg.RetryCount+1),
					zap.Int("max_retries", msg.MaxRetries),
					zap.Error(err),
				)
				metrics.RecordOutboxFailed(ctx, msg.Topic)
				if markErr := w.outboxRepo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
					return markErr
				}
				continue
			}

			metrics.RecordOutboxPublished(ctx, msg.Topic)
			if markErr := w.outboxRepo.MarkPublished(ctx, msg.ID); markErr != nil {
				return markErr
			}
		}
		return nil
	})
	if err != nil {
		w.log.Error("Outbox relay batch failed", zap.String("kind", kind), zap.Error(err))
	}
}

// Cleanup deletes published messages older than the retention window
func (w *OutboxWorker) Cleanup(ctx context.Context) (int64, error) {
	retention := time.Duration(w.config.RetentionDays) * 24 * time.Hour
	deleted, err := w.outboxRepo.DeletePublished(ctx, retention)
	if err != nil {
		w.log.Error("Failed to cleanup old messages", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		w.log.Info("Cleaned up old published messages", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (w *OutboxWorker) publish(ctx context.Context, msg *domain.OutboxMessage) error {
	return w.publisher.Produce(ctx, &kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.PartitionKey),
		Value: msg.Payload,
		Headers: map[string]string{
			"event_type":     string(msg.EventType),
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
			"content_type":   "application/json",
			"source":         "outbox-relay",
		},
	})
}
