package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// PostgresLedger keeps balances in credit_balances and an append-only
// credit_transactions log.
type PostgresLedger struct {
	db         *sql.DB
	initial    int
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresLedger(db *sql.DB, initial int) *PostgresLedger {
	return &PostgresLedger{db: db, initial: initial}
}

func (l *PostgresLedger) ensureSchema(ctx context.Context) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("db is nil")
	}
	l.schemaOnce.Do(func() {
		_, l.schemaErr = l.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS credit_balances (
  user_id TEXT PRIMARY KEY,
  balance INTEGER NOT NULL CHECK (balance >= 0),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS credit_transactions (
  id BIGSERIAL PRIMARY KEY,
  user_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  action TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_credit_transactions_user ON credit_transactions (user_id, created_at);
`)
	})
	return l.schemaErr
}

func (l *PostgresLedger) seed(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO credit_balances (user_id, balance) VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING`, userID, l.initial)
	return err
}

func (l *PostgresLedger) TryConsume(ctx context.Context, userID string, amount int, action, description string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("user_id is required")
	}
	if amount < 0 {
		return false, fmt.Errorf("amount must not be negative")
	}
	if err := l.ensureSchema(ctx); err != nil {
		return false, err
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := l.seed(ctx, tx, userID); err != nil {
		return false, err
	}
	var remaining int
	err = tx.QueryRowContext(ctx, `
UPDATE credit_balances SET balance = balance - $2, updated_at = NOW()
WHERE user_id = $1 AND balance >= $2
RETURNING balance`, userID, amount).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO credit_transactions (user_id, amount, action, description)
VALUES ($1, $2, $3, $4)`, userID, -amount, action, description); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (l *PostgresLedger) Balance(ctx context.Context, userID string) (int, error) {
	if err := l.ensureSchema(ctx); err != nil {
		return 0, err
	}
	var balance int
	err := l.db.QueryRowContext(ctx, `SELECT balance FROM credit_balances WHERE user_id = $1`, strings.TrimSpace(userID)).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return l.initial, nil
	}
	return balance, err
}

func (l *PostgresLedger) Grant(ctx context.Context, userID string, amount int, description string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}
	if err := l.ensureSchema(ctx); err != nil {
		return 0, err
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := l.seed(ctx, tx, userID); err != nil {
		return 0, err
	}
	var balance int
	if err := tx.QueryRowContext(ctx, `
UPDATE credit_balances SET balance = balance + $2, updated_at = NOW()
WHERE user_id = $1 RETURNING balance`, userID, amount).Scan(&balance); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO credit_transactions (user_id, amount, action, description)
VALUES ($1, $2, 'grant', $3)`, userID, amount, description); err != nil {
		return 0, err
	}
	return balance, tx.Commit()
}
