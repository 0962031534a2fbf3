package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("starting database migrations")

	migrations := []Migration{
		{Name: "create_resumes", Up: createResumes},
		{Name: "index_resumes_by_user", Up: indexResumesByUser},
		{Name: "add_customizations_to_resumes", Up: addCustomizationsToResumes},
	}

	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			log.Error().Err(err).Str("name", m.Name).Msg("migration failed")
			return err
		}
		log.Info().Str("name", m.Name).Msg("migration completed")
	}

	log.Info().Msg("all migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

func createResumes(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS resumes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content JSONB NOT NULL DEFAULT '{}'::jsonb,
			template_id TEXT NOT NULL DEFAULT 'classic',
			sections TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func indexResumesByUser(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS resumes_user_updated ON resumes (user_id, updated_at DESC);`)
	return err
}

// addCustomizationsToResumes adds the customizations JSONB column if it doesn't exist
func addCustomizationsToResumes(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		ALTER TABLE resumes
		ADD COLUMN IF NOT EXISTS customizations JSONB NOT NULL DEFAULT '{}'::jsonb;
	`
	if _, err := pool.Exec(ctx, query); err != nil {
		// the column may already exist on databases created by older versions
		log.Warn().Err(err).Msg("error adding customizations column (may already exist)")
		return nil
	}
	return nil
}
