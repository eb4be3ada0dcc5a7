package repository

import (
	"context"

	"paperapi/internal/model"
)

// SubmissionRepository persists papers awaiting review.
type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) (*model.Submission, error)
	FindByID(ctx context.Context, id int64) (*model.Submission, error)

	// List returns submissions newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Submission], error)

	// Delete removes a submission. It returns sql.ErrNoRows when nothing was deleted.
	Delete(ctx context.Context, id int64) error

	// Approve copies the submission into white_papers as published and deletes it, atomically.
	Approve(ctx context.Context, id int64) (*model.WhitePaper, error)

	Count(ctx context.Context, status string) (int, error)
}
