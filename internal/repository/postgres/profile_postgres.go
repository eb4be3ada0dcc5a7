package postgres

import (
	"context"
	"database/sql"

	"paperapi/internal/model"
	"paperapi/internal/repository"
)

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

func scanProfile(s rowScanner) (*model.Profile, error) {
	var p model.Profile
	if err := s.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfilePostgres) Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	const q = `
		INSERT INTO profiles (id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email      = EXCLUDED.email,
			full_name  = EXCLUDED.full_name,
			role       = CASE WHEN profiles.role = 'admin' THEN 'admin' ELSE EXCLUDED.role END,
			updated_at = now()
		RETURNING id, email, full_name, role, created_at, updated_at
	`
	return scanProfile(r.db.QueryRowContext(ctx, q, p.ID, p.Email, p.FullName, p.Role))
}

func (r *ProfilePostgres) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	const q = `SELECT id, email, full_name, role, created_at, updated_at FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, id))
}

func (r *ProfilePostgres) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
