package credit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryLedger grants initial credits to each user on first sight.
type MemoryLedger struct {
	initial int

	mu       sync.Mutex
	balances map[string]int
	history  []Transaction
}

func NewMemoryLedger(initial int) *MemoryLedger {
	return &MemoryLedger{initial: initial, balances: make(map[string]int)}
}

func (l *MemoryLedger) balanceLocked(userID string) int {
	b, ok := l.balances[userID]
	if !ok {
		b = l.initial
		l.balances[userID] = b
	}
	return b
}

func (l *MemoryLedger) TryConsume(_ context.Context, userID string, amount int, action, description string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("user_id is required")
	}
	if amount < 0 {
		return false, fmt.Errorf("amount must not be negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balanceLocked(userID) < amount {
		return false, nil
	}
	l.balances[userID] -= amount
	l.history = append(l.history, Transaction{UserID: userID, Amount: -amount, Action: action, Description: description, CreatedAt: time.Now()})
	return true, nil
}

func (l *MemoryLedger) Balance(_ context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(strings.TrimSpace(userID)), nil
}

func (l *MemoryLedger) Grant(_ context.Context, userID string, amount int, description string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = l.balanceLocked(userID) + amount
	l.history = append(l.history, Transaction{UserID: userID, Amount: amount, Action: "grant", Description: description, CreatedAt: time.Now()})
	return l.balances[userID], nil
}

// Transactions returns a copy of the movement history.
func (l *MemoryLedger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transaction(nil), l.history...)
}
