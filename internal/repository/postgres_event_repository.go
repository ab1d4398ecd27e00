package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/pkg/database"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// eventColumns selects an event with its association id sets
const eventColumns = `e.id, e.name, COALESCE(e.description, ''), e.start_time, e.end_time,
	e.status, e.max_attendees, e.ticket_price::float8, e.venue_id,
	ARRAY(SELECT ea.artist_id::text FROM event_artists ea WHERE ea.event_id = e.id ORDER BY ea.artist_id),
	ARRAY(SELECT ec.category_id::text FROM event_categories ec WHERE ec.event_id = e.id ORDER BY ec.category_id),
	e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.StartTime,
		&e.EndTime,
		&status,
		&e.MaxAttendees,
		&e.TicketPrice,
		&e.VenueID,
		&e.ArtistIDs,
		&e.CategoryIDs,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}

// Create inserts the event and its associations
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	q := conn(ctx, r.pool)

	query := `
		INSERT INTO events (id, name, description, start_time, end_time, status,
			max_attendees, ticket_price, venue_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := q.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.StartTime,
		event.EndTime,
		string(event.Status),
		event.MaxAttendees,
		event.TicketPrice,
		event.VenueID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return r.replaceAssociations(ctx, q, event)
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate retrieves an event and locks its row
func (r *PostgresEventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	if txFromContext(ctx) == nil {
		return nil, errors.New("GetByIDForUpdate requires a transaction")
	}
	return r.get(ctx, id, true)
}

func (r *PostgresEventRepository) get(ctx context.Context, id string, forUpdate bool) (*domain.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events e WHERE e.id = $1", eventColumns)
	if forUpdate {
		query += " FOR UPDATE OF e"
	}

	event, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Update rewrites the event row and replaces its associations
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	q := conn(ctx, r.pool)

	query := `
		UPDATE events SET
			name = $2, description = $3, start_time = $4, end_time = $5, status = $6,
			max_attendees = $7, ticket_price = $8, venue_id = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.StartTime,
		event.EndTime,
		string(event.Status),
		event.MaxAttendees,
		event.TicketPrice,
		event.VenueID,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return r.replaceAssociations(ctx, q, event)
}

func (r *PostgresEventRepository) replaceAssociations(ctx context.Context, q querier, event *domain.Event) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM event_artists WHERE event_id = $1`, event.ID)
	batch.Queue(`DELETE FROM event_categories WHERE event_id = $1`, event.ID)
	if len(event.ArtistIDs) > 0 {
		batch.Queue(`INSERT INTO event_artists (event_id, artist_id)
			SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`, event.ID, event.ArtistIDs)
	}
	if len(event.CategoryIDs) > 0 {
		batch.Queue(`INSERT INTO event_categories (event_id, category_id)
			SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`, event.ID, event.CategoryIDs)
	}

	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save event associations: %w", err)
	}
	return nil
}

// Delete removes the event; association rows cascade
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// List lists events with filters and pagination, earliest start first
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter != nil {
		if filter.Name != "" {
			conditions = append(conditions, fmt.Sprintf("e.name ILIKE $%d", argIndex))
			args = append(args, "%"+filter.Name+"%")
			argIndex++
		}
		if filter.Status != "" {
			conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIndex))
			args = append(args, filter.Status)
			argIndex++
		}
		if filter.VenueID != "" {
			venueID, ok := uuidArg(filter.VenueID)
			if !ok {
				return nil, 0, nil
			}
			conditions = append(conditions, fmt.Sprintf("e.venue_id = $%d::uuid", argIndex))
			args = append(args, venueID)
			argIndex++
		}
		if filter.City != "" {
			conditions = append(conditions, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM venues v WHERE v.id = e.venue_id AND v.city ILIKE $%d)", argIndex))
			args = append(args, filter.City)
			argIndex++
		}
		if filter.CategoryID != "" {
			categoryID, ok := uuidArg(filter.CategoryID)
			if !ok {
				return nil, 0, nil
			}
			conditions = append(conditions, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM event_categories ec WHERE ec.event_id = e.id AND ec.category_id = $%d::uuid)", argIndex))
			args = append(args, categoryID)
			argIndex++
		}
		if filter.StartFrom != nil {
			conditions = append(conditions, fmt.Sprintf("e.start_time >= $%d", argIndex))
			args = append(args, *filter.StartFrom)
			argIndex++
		}
		if filter.StartTo != nil {
			conditions = append(conditions, fmt.Sprintf("e.start_time <= $%d", argIndex))
			args = append(args, *filter.StartTo)
			argIndex++
		}
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	q := conn(ctx, r.pool)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events e WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM events e
		WHERE %s
		ORDER BY e.start_time ASC, e.id ASC
		LIMIT $%d OFFSET $%d
	`, eventColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating events: %w", err)
	}
	return events, total, nil
}

// CountByVenues returns the number of events per venue id
func (r *PostgresEventRepository) CountByVenues(ctx context.Context, venueIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(venueIDs))
	venueIDs = uuidArgs(venueIDs)
	if len(venueIDs) == 0 {
		return counts, nil
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT venue_id::text, COUNT(*) FROM events WHERE venue_id = ANY($1::uuid[]) GROUP BY venue_id`, venueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count venue events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan venue event count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

var _ EventRepository = (*PostgresEventRepository)(nil)
