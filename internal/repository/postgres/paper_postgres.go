package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

const paperColumns = `id, title, description, author, category_id, pdf_url, presentation_url, audio_url,
		ai_summary, ai_sections, status, views, uploaded_by, created_at, updated_at`

// PaperPostgres is a PostgreSQL implementation of repository.PaperRepository.
type PaperPostgres struct {
	db *sql.DB
}

// NewPaperPostgres creates a new PaperPostgres repository.
func NewPaperPostgres(db *sql.DB) *PaperPostgres {
	return &PaperPostgres{db: db}
}

var _ repository.PaperRepository = (*PaperPostgres)(nil)

func scanPaper(s rowScanner) (*model.WhitePaper, error) {
	var (
		p        model.WhitePaper
		sections []byte
	)
	if err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Author,
		&p.CategoryID,
		&p.PDFURL,
		&p.PresentationURL,
		&p.AudioURL,
		&p.AISummary,
		&sections,
		&p.Status,
		&p.Views,
		&p.UploadedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	decoded, err := decodeSections(sections)
	if err != nil {
		return nil, fmt.Errorf("decode ai_sections: %w", err)
	}
	p.AISections = decoded
	return &p, nil
}

// Create inserts a new paper row and returns the stored record.
func (r *PaperPostgres) Create(ctx context.Context, p *model.WhitePaper) (*model.WhitePaper, error) {
	sections, err := encodeSections(p.AISections)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO white_papers (title, description, author, category_id, pdf_url, presentation_url,
			audio_url, ai_summary, ai_sections, status, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11)
		RETURNING ` + paperColumns
	row := r.db.QueryRowContext(ctx, q,
		p.Title,
		p.Description,
		p.Author,
		p.CategoryID,
		p.PDFURL,
		p.PresentationURL,
		p.AudioURL,
		p.AISummary,
		sections,
		p.Status,
		p.UploadedBy,
	)
	return scanPaper(row)
}

// FindByID fetches a single paper regardless of status.
func (r *PaperPostgres) FindByID(ctx context.Context, id int64) (*model.WhitePaper, error) {
	q := `SELECT ` + paperColumns + ` FROM white_papers WHERE id = $1`
	return scanPaper(r.db.QueryRowContext(ctx, q, id))
}

func paperWhere(f repository.PaperFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, containsPattern(q))
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description ILIKE $%[1]d OR author ILIKE $%[1]d OR ai_summary ILIKE $%[1]d)", n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns papers using LIMIT/OFFSET pagination and a total count.
func (r *PaperPostgres) List(ctx context.Context, f repository.PaperFilter) (*repository.PageResult[model.WhitePaper], error) {
	where, args := paperWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM white_papers`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	qList := fmt.Sprintf(`SELECT %s FROM white_papers%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		paperColumns, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.WhitePaper, 0)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.WhitePaper]{Items: items, Total: total}, nil
}

// Update applies a partial update and returns the updated row.
func (r *PaperPostgres) Update(ctx context.Context, id int64, u model.PaperUpdate) (*model.WhitePaper, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Author != nil {
		set("author", *u.Author)
	}
	if u.CategoryID != nil {
		set("category_id", *u.CategoryID)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.AISummary != nil {
		set("ai_summary", *u.AISummary)
	}
	if u.AISections != nil {
		sections, err := encodeSections(*u.AISections)
		if err != nil {
			return nil, err
		}
		args = append(args, sections)
		sets = append(sets, fmt.Sprintf("ai_sections = $%d::jsonb", len(args)))
	}
	if u.PresentationURL != nil {
		set("presentation_url", *u.PresentationURL)
	}
	if u.AudioURL != nil {
		set("audio_url", *u.AudioURL)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE white_papers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), paperColumns)
	return scanPaper(r.db.QueryRowContext(ctx, q, args...))
}

// Delete removes a paper by ID.
func (r *PaperPostgres) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM white_papers WHERE id = $1`, id)
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

// RecordView bumps the counter of a published paper and appends a paper_views row.
func (r *PaperPostgres) RecordView(ctx context.Context, v model.PaperView) (int64, error) {
	var views int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		const qInc = `UPDATE white_papers SET views = views + 1 WHERE id = $1 AND status = 'published' RETURNING views`
		if err := tx.QueryRowContext(ctx, qInc, v.PaperID).Scan(&views); err != nil {
			return err
		}
		const qLog = `INSERT INTO paper_views (paper_id, user_id, ip_address) VALUES ($1, $2, $3)`
		_, err := tx.ExecContext(ctx, qLog, v.PaperID, v.UserID, v.IPAddress)
		return err
	})
	if err != nil {
		return 0, err
	}
	return views, nil
}

// Count returns the number of papers, optionally restricted to one status.
func (r *PaperPostgres) Count(ctx context.Context, status string) (int, error) {
	where, args := paperWhere(repository.PaperFilter{Status: status})
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM white_papers`+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
