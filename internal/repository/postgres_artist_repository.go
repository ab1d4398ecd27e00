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

// PostgresArtistRepository implements ArtistRepository using PostgreSQL
type PostgresArtistRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresArtistRepository(pool *pgxpool.Pool) *PostgresArtistRepository {
	return &PostgresArtistRepository{pool: pool}
}

const artistColumns = `id, name, COALESCE(bio, ''), COALESCE(genre, ''), COALESCE(contact_email, ''),
	COALESCE(contact_phone, ''), COALESCE(image_url, ''), created_at, updated_at`

func scanArtist(row pgx.Row) (*domain.Artist, error) {
	a := &domain.Artist{}
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.Genre, &a.ContactEmail, &a.ContactPhone, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanArtists(rows pgx.Rows) ([]*domain.Artist, error) {
	defer rows.Close()
	var artists []*domain.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

func (r *PostgresArtistRepository) Create(ctx context.Context, artist *domain.Artist) error {
	query := `
		INSERT INTO artists (id, name, bio, genre, contact_email, contact_phone, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		artist.ID, artist.Name, artist.Bio, artist.Genre, artist.ContactEmail,
		artist.ContactPhone, artist.ImageURL, artist.CreatedAt, artist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create artist: %w", err)
	}
	return nil
}

func (r *PostgresArtistRepository) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	query := fmt.Sprintf("SELECT %s FROM artists WHERE id = $1", artistColumns)
	artist, err := scanArtist(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return artist, nil
}

func (r *PostgresArtistRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Artist, error) {
	ids = uuidArgs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM artists WHERE id = ANY($1::uuid[])", artistColumns)
	rows, err := conn(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get artists: %w", err)
	}
	return scanArtists(rows)
}

func (r *PostgresArtistRepository) Update(ctx context.Context, artist *domain.Artist) error {
	query := `
		UPDATE artists SET
			name = $2, bio = $3, genre = $4, contact_email = $5,
			contact_phone = $6, image_url = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		artist.ID, artist.Name, artist.Bio, artist.Genre, artist.ContactEmail,
		artist.ContactPhone, artist.ImageURL, artist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArtistNotFound
	}
	return nil
}

// Delete removes the artist; event associations cascade
func (r *PostgresArtistRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArtistNotFound
	}
	return nil
}

func (r *PostgresArtistRepository) List(ctx context.Context, filter *ArtistFilter, limit, offset int) ([]*domain.Artist, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter != nil {
		if filter.Name != "" {
			conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
			args = append(args, "%"+filter.Name+"%")
			argIndex++
		}
		if filter.Genre != "" {
			conditions = append(conditions, fmt.Sprintf("genre ILIKE $%d", argIndex))
			args = append(args, filter.Genre)
			argIndex++
		}
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM artists WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count artists: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM artists WHERE %s ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d`,
		artistColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list artists: %w", err)
	}
	artists, err := scanArtists(rows)
	if err != nil {
		return nil, 0, err
	}
	return artists, total, nil
}

var _ ArtistRepository = (*PostgresArtistRepository)(nil)
