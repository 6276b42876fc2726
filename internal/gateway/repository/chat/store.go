package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "idea2app/internal/chat"
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
CREATE TABLE IF NOT EXISTS chat_messages (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_project ON chat_messages(project_id, created_at);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return domain.Message{}, err
	}
	msg.ID = strings.TrimSpace(msg.ID)
	if msg.ID == "" {
		return domain.Message{}, fmt.Errorf("id is required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(msg.Metadata)
	if err != nil {
		return domain.Message{}, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO chat_messages (id, project_id, role, content, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		msg.ID, msg.ProjectID, string(msg.Role), msg.Content, string(meta), msg.CreatedAt)
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// ListByProject returns the newest limit messages before the cutoff,
// oldest first.
func (s *PostgresStore) ListByProject(ctx context.Context, projectID string, before time.Time, limit int) ([]domain.Message, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if before.IsZero() {
		before = time.Now().Add(time.Hour)
	}
	if limit <= 0 {
		limit = 10000
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, project_id, role, content, metadata, created_at FROM (
    SELECT id, project_id, role, content, metadata, created_at
    FROM chat_messages
    WHERE project_id = $1 AND created_at < $2
    ORDER BY created_at DESC
    LIMIT $3
) recent ORDER BY created_at ASC`, projectID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Message, 0, 32)
	for rows.Next() {
		var (
			m    domain.Message
			role string
			meta []byte
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &role, &m.Content, &meta, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of %s: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
