package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/domain"
)

// SQLiteRepo stores resumes in an embedded SQLite database. JSON columns are
// plain TEXT.
type SQLiteRepo struct {
	db *sql.DB
}

// NewSQLiteRepo creates the schema if needed.
func NewSQLiteRepo(ctx context.Context, db *sql.DB) (*SQLiteRepo, error) {
	r := &SQLiteRepo{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepo) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS resumes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '{}',
			template_id TEXT NOT NULL DEFAULT 'classic',
			sections TEXT NOT NULL DEFAULT '[]',
			customizations TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS resumes_user_updated ON resumes (user_id, updated_at DESC)`,
	}
	for _, m := range migrations {
		if _, err := r.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// timeLayout has a fixed-width fraction so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func (r *SQLiteRepo) Create(ctx context.Context, res *domain.Resume) error {
	content, custom, err := encodeDocument(res)
	if err != nil {
		return err
	}
	sections, err := json.Marshal(res.Sections)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO resumes (`+resumeColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		res.ID, res.UserID, res.Title, string(content), res.TemplateID, string(sections), string(custom),
		formatTime(res.CreatedAt), formatTime(res.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (*domain.Resume, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = ?`, id)
	res, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return res, err
}

func (r *SQLiteRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Resume, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	out := []*domain.Resume{}
	for rows.Next() {
		res, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Update(ctx context.Context, res *domain.Resume) error {
	content, custom, err := encodeDocument(res)
	if err != nil {
		return err
	}
	sections, err := json.Marshal(res.Sections)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE resumes
		SET title = ?, content = ?, template_id = ?, sections = ?, customizations = ?, updated_at = ?
		WHERE id = ?`,
		res.Title, string(content), res.TemplateID, string(sections), string(custom), formatTime(res.UpdatedAt), res.ID)
	if err != nil {
		return fmt.Errorf("update resume: %w", err)
	}
	return requireRow(result)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	return requireRow(result)
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*domain.Resume, error) {
	var (
		res                       domain.Resume
		content, sections, custom string
		createdAt, updatedAt      string
	)
	if err := row.Scan(&res.ID, &res.UserID, &res.Title, &content, &res.TemplateID, &sections, &custom, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sections), &res.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	if err := decodeDocument(&res, []byte(content), []byte(custom)); err != nil {
		return nil, err
	}
	var err error
	if res.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if res.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &res, nil
}
