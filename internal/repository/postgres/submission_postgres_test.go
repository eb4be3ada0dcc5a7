package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

var submissionCols = []string{"id", "title", "description", "author", "category_id", "pdf_url", "presentation_url",
	"audio_url", "ai_summary", "ai_sections", "status", "submitted_by", "reviewed_by", "review_notes",
	"created_at", "updated_at"}

func addSubmission(rows *sqlmock.Rows, id int64) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "Draft paper", "", "Unknown", nil, "https://cdn/papers/b.pdf",
		"https://cdn/presentations/b.pptx", nil, "s", "[]", "pending", "u-2", nil, nil, now, now)
}

func TestSubmissionPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubmissionPostgres(db)

	mock.ExpectQuery("INSERT INTO submissions").
		WithArgs("Draft paper", "", "Unknown", nil, "https://cdn/papers/b.pdf", "https://cdn/presentations/b.pptx",
			nil, "s", "[]", "pending", "u-2").
		WillReturnRows(addSubmission(sqlmock.NewRows(submissionCols), 3))

	got, err := repo.Create(context.Background(), &model.Submission{
		Title:           "Draft paper",
		Author:          "Unknown",
		PDFURL:          "https://cdn/papers/b.pdf",
		PresentationURL: ptr("https://cdn/presentations/b.pptx"),
		AISummary:       "s",
		Status:          model.SubmissionStatusPending,
		SubmittedBy:     ptr("u-2"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "https://cdn/presentations/b.pptx", *got.PresentationURL)
	assert.Nil(t, got.ReviewedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubmissionPostgres(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`FROM submissions ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(addSubmission(addSubmission(sqlmock.NewRows(submissionCols), 2), 1))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 50})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionPostgres_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubmissionPostgres(db)
	ctx := context.Background()

	t.Run("copies then deletes in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO white_papers (.+) SELECT (.+) 'published', submitted_by\s+FROM submissions\s+WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(addPaper(paperRows(), 11, "Draft paper"))
		mock.ExpectExec(`DELETE FROM submissions WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		p, err := repo.Approve(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, int64(11), p.ID)
		assert.Equal(t, model.PaperStatusPublished, p.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing submission rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO white_papers`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		p, err := repo.Approve(ctx, 404)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO white_papers`).
			WithArgs(int64(5)).
			WillReturnRows(addPaper(paperRows(), 12, "x"))
		mock.ExpectExec(`DELETE FROM submissions`).
			WithArgs(int64(5)).
			WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, 5)

		assert.EqualError(t, err, "lock timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubmissionPostgres_DeleteAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubmissionPostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM submissions WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, 9), sql.ErrNoRows)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions WHERE status = \$1`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	n, err := repo.Count(ctx, model.SubmissionStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
