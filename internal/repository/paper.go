package repository

import (
	"context"

	"paperapi/internal/model"
)

// PaperFilter narrows a paper listing. Empty fields do not filter.
type PaperFilter struct {
	Status     string
	CategoryID *int64
	// Query is matched case-insensitively as a substring of title, description, author and ai_summary.
	Query string
	PageQuery
}

// PaperRepository persists white papers and their view log.
type PaperRepository interface {
	// Create inserts a paper and returns the stored row.
	Create(ctx context.Context, p *model.WhitePaper) (*model.WhitePaper, error)

	FindByID(ctx context.Context, id int64) (*model.WhitePaper, error)

	// List returns one page of papers, newest first, plus the total matching the filter.
	List(ctx context.Context, f PaperFilter) (*PageResult[model.WhitePaper], error)

	// Update applies the non-nil fields of u and refreshes updated_at.
	Update(ctx context.Context, id int64, u model.PaperUpdate) (*model.WhitePaper, error)

	// Delete removes a paper. It returns sql.ErrNoRows when nothing was deleted.
	Delete(ctx context.Context, id int64) error

	// RecordView increments the view counter and logs the view in one transaction.
	RecordView(ctx context.Context, v model.PaperView) (int64, error)

	// Count returns the number of papers with the given status, or all papers when status is empty.
	Count(ctx context.Context, status string) (int, error)
}
