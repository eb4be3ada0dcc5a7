package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

const submissionColumns = `id, title, description, author, category_id, pdf_url, presentation_url, audio_url,
		ai_summary, ai_sections, status, submitted_by, reviewed_by, review_notes, created_at, updated_at`

// SubmissionPostgres is a PostgreSQL implementation of repository.SubmissionRepository.
type SubmissionPostgres struct {
	db *sql.DB
}

// NewSubmissionPostgres creates a new SubmissionPostgres repository.
func NewSubmissionPostgres(db *sql.DB) *SubmissionPostgres {
	return &SubmissionPostgres{db: db}
}

var _ repository.SubmissionRepository = (*SubmissionPostgres)(nil)

func scanSubmission(s rowScanner) (*model.Submission, error) {
	var (
		sub      model.Submission
		sections []byte
	)
	if err := s.Scan(
		&sub.ID,
		&sub.Title,
		&sub.Description,
		&sub.Author,
		&sub.CategoryID,
		&sub.PDFURL,
		&sub.PresentationURL,
		&sub.AudioURL,
		&sub.AISummary,
		&sections,
		&sub.Status,
		&sub.SubmittedBy,
		&sub.ReviewedBy,
		&sub.ReviewNotes,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	decoded, err := decodeSections(sections)
	if err != nil {
		return nil, fmt.Errorf("decode ai_sections: %w", err)
	}
	sub.AISections = decoded
	return &sub, nil
}

// Create inserts a new submission row.
func (r *SubmissionPostgres) Create(ctx context.Context, s *model.Submission) (*model.Submission, error) {
	sections, err := encodeSections(s.AISections)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO submissions (title, description, author, category_id, pdf_url, presentation_url,
			audio_url, ai_summary, ai_sections, status, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11)
		RETURNING ` + submissionColumns
	row := r.db.QueryRowContext(ctx, q,
		s.Title,
		s.Description,
		s.Author,
		s.CategoryID,
		s.PDFURL,
		s.PresentationURL,
		s.AudioURL,
		s.AISummary,
		sections,
		s.Status,
		s.SubmittedBy,
	)
	return scanSubmission(row)
}

func (r *SubmissionPostgres) FindByID(ctx context.Context, id int64) (*model.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return scanSubmission(r.db.QueryRowContext(ctx, q, id))
}

// List returns submissions newest first with a total count.
func (r *SubmissionPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Submission], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Submission]{Items: items, Total: total}, nil
}

func (r *SubmissionPostgres) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Approve publishes the submission as a white paper and removes it from the review queue.
func (r *SubmissionPostgres) Approve(ctx context.Context, id int64) (*model.WhitePaper, error) {
	var paper *model.WhitePaper
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		qCopy := `
			INSERT INTO white_papers (title, description, author, category_id, pdf_url, presentation_url,
				audio_url, ai_summary, ai_sections, status, uploaded_by)
			SELECT title, description, author, category_id, pdf_url, presentation_url,
				audio_url, ai_summary, ai_sections, 'published', submitted_by
			FROM submissions
			WHERE id = $1
			RETURNING ` + paperColumns
		p, err := scanPaper(tx.QueryRowContext(ctx, qCopy, id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id); err != nil {
			return err
		}
		paper = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paper, nil
}

// Count returns the number of submissions, optionally restricted to one status.
func (r *SubmissionPostgres) Count(ctx context.Context, status string) (int, error) {
	var total int
	var err error
	if status == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE status = $1`, status).Scan(&total)
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}
