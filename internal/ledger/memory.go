package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/game"
)

type account struct {
	balance     game.Money
	session     Counters
	lifetime    Counters
	openedAt    time.Time
	lastRoundAt time.Time
}

// Memory is an in-process Ledger. Accounts open on first use with the
// starting balance.
type Memory struct {
	mu       sync.Mutex
	clock    quartz.Clock
	starting game.Money
	accounts map[string]*account
}

var _ Ledger = (*Memory)(nil)

// NewMemory creates an empty ledger. A nil clock uses the real clock.
func NewMemory(startingBalance game.Money, clock quartz.Clock) *Memory {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Memory{
		clock:    clock,
		starting: startingBalance,
		accounts: make(map[string]*account),
	}
}

// account returns the named account, creating it. Callers hold mu.
func (m *Memory) account(id string) *account {
	a, ok := m.accounts[id]
	if !ok {
		a = &account{balance: m.starting, openedAt: m.clock.Now()}
		m.accounts[id] = a
	}
	return a
}

// Balance returns the account's balance, opening it if needed.
func (m *Memory) Balance(id string) (game.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account(id).balance, nil
}

// Debit takes amount from the account. It fails without a change when the
// balance is short.
func (m *Memory) Debit(id string, amount game.Money) error {
	if amount < 0 {
		return fmt.Errorf("%w: debit %d", ErrInvalidAmount, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(id)
	if a.balance < amount {
		return fmt.Errorf("%w: debit %d from balance %d", ErrInsufficientFunds, amount, a.balance)
	}
	a.balance -= amount
	return nil
}

// Credit adds amount to the account
func (m *Memory) Credit(id string, amount game.Money) error {
	if amount < 0 {
		return fmt.Errorf("%w: credit %d", ErrInvalidAmount, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account(id).balance += amount
	return nil
}

// RecordRoundOutcome adds a settled round to the session and lifetime
// counters.
func (m *Memory) RecordRoundOutcome(id string, o RoundOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(id)
	a.session.add(o)
	a.lifetime.add(o)
	a.lastRoundAt = m.clock.Now()
	return nil
}

// Stats returns a snapshot of the account.
func (m *Memory) Stats(id string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(id)
	return Stats{
		Balance:     a.balance,
		Session:     a.session,
		Lifetime:    a.lifetime,
		OpenedAt:    a.openedAt,
		LastRoundAt: a.lastRoundAt,
	}, nil
}

// ResetSession zeroes the session counters; balance and lifetime counters
// are kept.
func (m *Memory) ResetSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account(id).session = Counters{}
	return nil
}
