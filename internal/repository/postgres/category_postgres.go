package postgres

import (
	"context"
	"database/sql"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

func scanCategory(s rowScanner) (*model.Category, error) {
	var c model.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryPostgres) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *CategoryPostgres) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	const q = `SELECT id, name, description, slug, created_at FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

func (r *CategoryPostgres) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	const q = `SELECT id, name, description, slug, created_at FROM categories WHERE slug = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, slug))
}

// Create inserts a category. Duplicate names or slugs surface as a unique violation.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO categories (name, description, slug)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, slug, created_at
	`
	return scanCategory(r.db.QueryRowContext(ctx, q, c.Name, c.Description, c.Slug))
}

func (r *CategoryPostgres) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
