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

// PostgresVenueRepository implements VenueRepository using PostgreSQL
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

const venueColumns = `id, name, address, city, COALESCE(state, ''), COALESCE(zip_code, ''),
	COALESCE(country, ''), capacity, created_at, updated_at`

func scanVenue(row pgx.Row) (*domain.Venue, error) {
	v := &domain.Venue{}
	err := row.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.State, &v.ZipCode, &v.Country, &v.Capacity, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *PostgresVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	query := `
		INSERT INTO venues (id, name, address, city, state, zip_code, country, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		venue.ID, venue.Name, venue.Address, venue.City, venue.State,
		venue.ZipCode, venue.Country, venue.Capacity, venue.CreatedAt, venue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}
	return nil
}

func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := fmt.Sprintf("SELECT %s FROM venues WHERE id = $1", venueColumns)
	venue, err := scanVenue(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return venue, nil
}

func (r *PostgresVenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	query := `
		UPDATE venues SET
			name = $2, address = $3, city = $4, state = $5, zip_code = $6,
			country = $7, capacity = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		venue.ID, venue.Name, venue.Address, venue.City, venue.State,
		venue.ZipCode, venue.Country, venue.Capacity, venue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

func (r *PostgresVenueRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.ErrVenueInUse
		}
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

func (r *PostgresVenueRepository) List(ctx context.Context, filter *VenueFilter, limit, offset int) ([]*domain.Venue, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter != nil {
		if filter.Name != "" {
			conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
			args = append(args, "%"+filter.Name+"%")
			argIndex++
		}
		if filter.City != "" {
			conditions = append(conditions, fmt.Sprintf("city ILIKE $%d", argIndex))
			args = append(args, filter.City)
			argIndex++
		}
		if filter.MinCapacity > 0 {
			conditions = append(conditions, fmt.Sprintf("capacity >= $%d", argIndex))
			args = append(args, filter.MinCapacity)
			argIndex++
		}
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM venues WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count venues: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM venues WHERE %s ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d`,
		venueColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	var venues []*domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, total, rows.Err()
}

var _ VenueRepository = (*PostgresVenueRepository)(nil)
