package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

// Create writes the message; inside WithTx it commits with the state change
func (r *PostgresOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	query := `
		INSERT INTO outbox (
			id, aggregate_type, aggregate_id, event_type,
			payload, topic, partition_key, status,
			retry_count, max_retries, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		msg.ID,
		msg.AggregateType,
		msg.AggregateID,
		string(msg.EventType),
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		string(msg.Status),
		msg.RetryCount,
		msg.MaxRetries,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

const outboxColumns = `id, aggregate_type, aggregate_id, event_type, payload, topic, partition_key,
	status, retry_count, max_retries, COALESCE(last_error, ''), created_at, published_at`

func (r *PostgresOutboxRepository) GetPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM outbox
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, outboxColumns)
	return r.query(ctx, query, limit)
}

func (r *PostgresOutboxRepository) GetRetryable(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM outbox
		WHERE status = 'failed' AND retry_count < max_retries
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, outboxColumns)
	return r.query(ctx, query, limit)
}

func (r *PostgresOutboxRepository) query(ctx context.Context, query string, limit int) ([]*domain.OutboxMessage, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()
	return scanOutboxMessages(rows)
}

func (r *PostgresOutboxRepository) MarkPublished(ctx context.Context, id string) error {
	now := time.Now()
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE outbox SET status = 'published', processed_at = $2, published_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		return fmt.Errorf("failed to mark message as published: %w", err)
	}
	return nil
}

func (r *PostgresOutboxRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE outbox SET
			status = 'failed',
			last_error = $2,
			retry_count = retry_count + 1,
			processed_at = $3
		WHERE id = $1
	`, id, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}
	return nil
}

func (r *PostgresOutboxRepository) DeletePublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM outbox WHERE status = 'published' AND published_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to delete published messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOutboxMessages(rows pgx.Rows) ([]*domain.OutboxMessage, error) {
	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var eventType, status string
		err := rows.Scan(
			&msg.ID,
			&msg.AggregateType,
			&msg.AggregateID,
			&eventType,
			&msg.Payload,
			&msg.Topic,
			&msg.PartitionKey,
			&status,
			&msg.RetryCount,
			&msg.MaxRetries,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.EventType = domain.OutboxEventType(eventType)
		msg.Status = domain.OutboxStatus(status)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

var _ OutboxRepository = (*PostgresOutboxRepository)(nil)
