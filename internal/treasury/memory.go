// Package treasury provides the in-process implementation of the value
// transfer service. In production the transfer primitive belongs to the host
// platform; this implementation backs development and tests.
package treasury

import (
	"context"
	"fmt"
	"sync"

	id "carepool/pkg/domain"
	"carepool/pkg/platform/sentinel"
)

// Memory is an in-memory bank of account balances. Transfers are atomic:
// both sides move under one lock or neither does.
type Memory struct {
	mu       sync.Mutex
	balances map[id.AccountID]uint64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[id.AccountID]uint64)}
}

// Deposit seeds an account balance. Test and bootstrap helper.
func (m *Memory) Deposit(account id.AccountID, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] += amount
}

// Balance reports an account's current balance.
func (m *Memory) Balance(account id.AccountID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account]
}

// Transfer moves amount from one account to another, all or nothing.
func (m *Memory) Transfer(_ context.Context, from, to id.AccountID, amount uint64) error {
	if from == to {
		return fmt.Errorf("transfer to self: %w", sentinel.ErrInvalidState)
	}
	if amount == 0 {
		return fmt.Errorf("zero transfer: %w", sentinel.ErrInvalidState)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.balances[from] < amount {
		return fmt.Errorf("account %s short %d: %w", from, amount-m.balances[from], sentinel.ErrInsufficientFunds)
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}
