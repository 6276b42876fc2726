package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "idea2app/internal/project"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  idea TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects (user_id);
`)
	})
	return s.schemaErr
}

const projectColumns = `id, user_id, name, idea, description, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Idea, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return domain.Project{}, err
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return domain.Project{}, fmt.Errorf("project id is required")
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	row := s.db.QueryRowContext(ctx, `
INSERT INTO projects (`+projectColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING `+projectColumns,
		p.ID, p.UserID, p.Name, p.Idea, p.Description, p.CreatedAt, p.UpdatedAt)
	return scanProject(row)
}

func (s *PostgresStore) Get(ctx context.Context, projectID string) (domain.Project, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return domain.Project{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, strings.TrimSpace(projectID))
	return scanProject(row)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+`
FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateDescription(ctx context.Context, projectID, description string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE projects SET description = $2, updated_at = NOW() WHERE id = $1`,
		strings.TrimSpace(projectID), description)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
