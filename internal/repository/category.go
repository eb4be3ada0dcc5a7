package repository

import (
	"context"

	"paperapi/internal/model"
)

// CategoryRepository persists paper categories.
type CategoryRepository interface {
	// List returns every category ordered by name.
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	Count(ctx context.Context) (int, error)
}
