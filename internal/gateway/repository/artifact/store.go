package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "idea2app/internal/artifact"
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
CREATE TABLE IF NOT EXISTS analysis_artifacts (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    type TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analysis_artifacts_project_type
    ON analysis_artifacts(project_id, type, created_at DESC);
`)
	})
	return s.schemaErr
}

const artifactColumns = `id, project_id, type, content, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (domain.Artifact, error) {
	var (
		a    domain.Artifact
		typ  string
		meta []byte
	)
	if err := row.Scan(&a.ID, &a.ProjectID, &typ, &a.Content, &meta, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Artifact{}, ErrNotFound
		}
		return domain.Artifact{}, err
	}
	a.Type = domain.Type(typ)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &a.Metadata); err != nil {
			return domain.Artifact{}, fmt.Errorf("decode metadata of %s: %w", a.ID, err)
		}
	}
	return a, nil
}

func (s *PostgresStore) Create(ctx context.Context, a domain.Artifact) (domain.Artifact, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return domain.Artifact{}, err
	}
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		return domain.Artifact{}, fmt.Errorf("id is required")
	}
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return domain.Artifact{}, err
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO analysis_artifacts (`+artifactColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING `+artifactColumns,
		a.ID, a.ProjectID, string(a.Type), a.Content, string(meta), a.CreatedAt, a.UpdatedAt)
	return scanArtifact(row)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Artifact, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return domain.Artifact{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM analysis_artifacts WHERE id = $1`, strings.TrimSpace(id))
	return scanArtifact(row)
}

func (s *PostgresStore) ListByProject(ctx context.Context, projectID string, typ domain.Type) ([]domain.Artifact, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var (
		rows *sql.Rows
		err  error
	)
	if typ == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+artifactColumns+`
FROM analysis_artifacts WHERE project_id = $1
ORDER BY created_at DESC, id DESC`, projectID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+artifactColumns+`
FROM analysis_artifacts WHERE project_id = $1 AND type = $2
ORDER BY created_at DESC, id DESC`, projectID, string(typ))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Artifact, 0, 8)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id, content string) (domain.Artifact, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return domain.Artifact{}, err
	}
	row := s.db.QueryRowContext(ctx, `
UPDATE analysis_artifacts SET content = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+artifactColumns, strings.TrimSpace(id), content)
	return scanArtifact(row)
}
