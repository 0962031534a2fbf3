package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

const resumeColumns = `id, user_id, title, content, template_id, sections, customizations, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, res *domain.Resume) error {
	content, custom, err := encodeDocument(res)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO resumes (`+resumeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		res.ID, res.UserID, res.Title, content, res.TemplateID, res.Sections, custom, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*domain.Resume, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	res, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return res, err
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Resume, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	out := []*domain.Resume{}
	for rows.Next() {
		res, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, res *domain.Resume) error {
	content, custom, err := encodeDocument(res)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE resumes
		SET title = $2, content = $3, template_id = $4, sections = $5, customizations = $6, updated_at = $7
		WHERE id = $1`,
		res.ID, res.Title, content, res.TemplateID, res.Sections, custom, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPostgres(row pgx.Row) (*domain.Resume, error) {
	var (
		res             domain.Resume
		content, custom []byte
	)
	if err := row.Scan(&res.ID, &res.UserID, &res.Title, &content, &res.TemplateID, &res.Sections, &custom, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeDocument(&res, content, custom); err != nil {
		return nil, err
	}
	return &res, nil
}

func encodeDocument(res *domain.Resume) (content, custom []byte, err error) {
	content, err = json.Marshal(res.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("encode content: %w", err)
	}
	custom, err = json.Marshal(res.Customizations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode customizations: %w", err)
	}
	return content, custom, nil
}

func decodeDocument(res *domain.Resume, content, custom []byte) error {
	res.Content = model.Content{}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &res.Content); err != nil {
			return fmt.Errorf("decode content: %w", err)
		}
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &res.Customizations); err != nil {
			return fmt.Errorf("decode customizations: %w", err)
		}
	}
	if res.Sections == nil {
		res.Sections = []string{}
	}
	return nil
}
