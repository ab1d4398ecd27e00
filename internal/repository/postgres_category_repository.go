package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/pkg/database"
)

// PostgresCategoryRepository implements CategoryRepository using PostgreSQL
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

const categoryColumns = `id, name, COALESCE(description, ''), created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	c := &domain.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanCategories(rows pgx.Rows) ([]*domain.Category, error) {
	defer rows.Close()
	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO categories (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		category.ID, category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrCategoryNameConflict
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := fmt.Sprintf("SELECT %s FROM categories WHERE id = $1", categoryColumns)
	category, err := scanCategory(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidInput(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (r *PostgresCategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Category, error) {
	ids = uuidArgs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM categories WHERE id = ANY($1::uuid[])", categoryColumns)
	rows, err := conn(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return scanCategories(rows)
}

func (r *PostgresCategoryRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`
	args := []interface{}{name}
	if id, ok := uuidArg(excludeID); ok {
		query = `SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1 AND id <> $2::uuid)`
		args = append(args, id)
	}

	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return exists, nil
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE categories SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		category.ID, category.Name, category.Description, category.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrCategoryNameConflict
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete removes the category; event_categories rows cascade
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context, filter *CategoryFilter, limit, offset int) ([]*domain.Category, int, error) {
	whereClause := "TRUE"
	var args []interface{}
	if filter != nil && filter.Name != "" {
		whereClause = "name ILIKE $1"
		args = append(args, "%"+filter.Name+"%")
	}

	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM categories WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM categories WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		categoryColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	categories, err := scanCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

var _ CategoryRepository = (*PostgresCategoryRepository)(nil)
