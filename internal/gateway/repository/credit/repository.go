package credit

import (
	"context"
	"time"
)

// Ledger holds an integer credit balance per user. TryConsume is atomic:
// it either debits the full amount and returns true, or changes nothing
// and returns false.
type Ledger interface {
	TryConsume(ctx context.Context, userID string, amount int, action, description string) (bool, error)
	Balance(ctx context.Context, userID string) (int, error)
	Grant(ctx context.Context, userID string, amount int, description string) (int, error)
}

// Transaction is one ledger movement. Debits have negative amounts.
type Transaction struct {
	UserID      string    `json:"userId"`
	Amount      int       `json:"amount"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
