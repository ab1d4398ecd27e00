package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/pkg/database"
)

const ticketNumberConstraint = "tickets_ticket_number_key"

// PostgresTicketRepository implements TicketRepository using PostgreSQL
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, event_id, user_id, status, price::float8, purchased_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var status string
	if err := row.Scan(&t.ID, &t.TicketNumber, &t.EventID, &t.UserID, &status, &t.Price, &t.PurchasedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	return t, nil
}

// CreateBatch inserts all tickets in one round trip
func (r *PostgresTicketRepository) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	query := `
		INSERT INTO tickets (id, ticket_number, event_id, user_id, status, price, purchased_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(query, t.ID, t.TicketNumber, t.EventID, t.UserID, string(t.Status), t.Price, t.PurchasedAt, t.UpdatedAt)
	}

	if err := conn(ctx, r.pool).SendBatch(ctx, batch).Close(); err != nil {
		if database.IsUniqueViolation(err) && database.ConstraintName(err) == ticketNumberConstraint {
			return domain.ErrTicketNumberConflict
		}
		return fmt.Errorf("failed to create tickets: %w", err)
	}
	return nil
}

func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id = $1", ticketColumns)
	return r.getOne(ctx, query, id)
}

func (r *PostgresTicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE ticket_number = $1", ticketColumns)
	return r.getOne(ctx, query, ticketNumber)
}

func (r *PostgresTicketRepository) getOne(ctx context.Context, query string, arg string) (*domain.Ticket, error) {
	ticket, err := scanTicket(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (r *PostgresTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE tickets SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *PostgresTicketRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}

// ListByUser returns a user's tickets, newest first
func (r *PostgresTicketRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Ticket, int, error) {
	return r.list(ctx, "user_id", userID, limit, offset)
}

// ListByEvent returns an event's tickets, newest first
func (r *PostgresTicketRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Ticket, int, error) {
	return r.list(ctx, "event_id", eventID, limit, offset)
}

func (r *PostgresTicketRepository) list(ctx context.Context, column, value string, limit, offset int) ([]*domain.Ticket, int, error) {
	id, ok := uuidArg(value)
	if !ok {
		return nil, 0, nil
	}
	q := conn(ctx, r.pool)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tickets WHERE %s = $1::uuid", column)
	if err := q.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tickets
		WHERE %s = $1::uuid
		ORDER BY purchased_at DESC, ticket_number ASC
		LIMIT $2 OFFSET $3
	`, ticketColumns, column)

	rows, err := q.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, total, nil
}

var _ TicketRepository = (*PostgresTicketRepository)(nil)
