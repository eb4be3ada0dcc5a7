package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable marks an already migrated schema.
const sentinelTable = "public.white_papers"

var steps = []migrationStep{
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  id         UUID        PRIMARY KEY,
  email      TEXT        NOT NULL UNIQUE,
  full_name  TEXT        NOT NULL DEFAULT '',
  role       TEXT        NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id          BIGSERIAL   PRIMARY KEY,
  name        TEXT        NOT NULL UNIQUE,
  description TEXT        NOT NULL DEFAULT '',
  slug        TEXT        NOT NULL UNIQUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_white_papers",
		SQL: `CREATE TABLE IF NOT EXISTS white_papers (
  id               BIGSERIAL   PRIMARY KEY,
  title            TEXT        NOT NULL,
  description      TEXT        NOT NULL DEFAULT '',
  author           TEXT        NOT NULL DEFAULT 'Unknown',
  category_id      BIGINT      REFERENCES categories (id) ON DELETE SET NULL,
  pdf_url          TEXT        NOT NULL,
  presentation_url TEXT,
  audio_url        TEXT,
  ai_summary       TEXT        NOT NULL DEFAULT '',
  ai_sections      JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status           TEXT        NOT NULL DEFAULT 'published' CHECK (status IN ('published', 'draft')),
  views            BIGINT      NOT NULL DEFAULT 0 CHECK (views >= 0),
  uploaded_by      UUID        REFERENCES profiles (id) ON DELETE SET NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_submissions",
		SQL: `CREATE TABLE IF NOT EXISTS submissions (
  id               BIGSERIAL   PRIMARY KEY,
  title            TEXT        NOT NULL,
  description      TEXT        NOT NULL DEFAULT '',
  author           TEXT        NOT NULL DEFAULT 'Unknown',
  category_id      BIGINT      REFERENCES categories (id) ON DELETE SET NULL,
  pdf_url          TEXT        NOT NULL,
  presentation_url TEXT,
  audio_url        TEXT,
  ai_summary       TEXT        NOT NULL DEFAULT '',
  ai_sections      JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status           TEXT        NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
  submitted_by     UUID        REFERENCES profiles (id) ON DELETE SET NULL,
  reviewed_by      UUID        REFERENCES profiles (id) ON DELETE SET NULL,
  review_notes     TEXT,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_paper_views",
		SQL: `CREATE TABLE IF NOT EXISTS paper_views (
  id         BIGSERIAL   PRIMARY KEY,
  paper_id   BIGINT      NOT NULL REFERENCES white_papers (id) ON DELETE CASCADE,
  user_id    UUID,
  ip_address TEXT,
  viewed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_white_papers_status_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_white_papers_status_created_at ON white_papers (status, created_at DESC);`,
	},
	{
		Name: "create_index_white_papers_category_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_white_papers_category_id ON white_papers (category_id);`,
	},
	{
		Name: "create_index_submissions_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions (created_at DESC);`,
	},
	{
		Name: "create_index_paper_views_paper_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_paper_views_paper_id ON paper_views (paper_id);`,
	},
	{
		Name: "seed_categories",
		SQL: `INSERT INTO categories (name, description, slug) VALUES
  ('Machine Learning', 'Learning algorithms, optimization and model training.', 'machine-learning'),
  ('Computer Vision', 'Image and video understanding.', 'computer-vision'),
  ('Natural Language Processing', 'Language models, parsing and text understanding.', 'natural-language-processing'),
  ('Robotics', 'Embodied agents, control and perception.', 'robotics'),
  ('AI Ethics', 'Fairness, safety and governance of AI systems.', 'ai-ethics')
ON CONFLICT (slug) DO NOTHING;`,
	},
}

// EnsureMigrated runs every step unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger zerolog.Logger, dbHost string) error {
	start := time.Now()
	logger = logger.With().Str("component", "database").Str("db_host", dbHost).Logger()

	logger.Info().Str("event", "db_migration_check").Str("status", "starting").Msg("checking schema")

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('%s') IS NOT NULL", sentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error().
			Err(err).
			Str("event", "db_migration_failed").
			Str("status", "error").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	logger.Info().Str("event", "db_migration_start").Str("status", "in_progress").Int("steps", len(steps)).Msg("migrating")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error().
				Err(err).
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	logger.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("migration complete")

	return nil
}
