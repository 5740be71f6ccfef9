package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsOpenWithStartingBalance(t *testing.T) {
	t.Parallel()
	l := NewMemory(1000, quartz.NewMock(t))

	balance, err := l.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, game.Money(1000), balance)
}

func TestDebitAndCredit(t *testing.T) {
	t.Parallel()
	l := NewMemory(1000, quartz.NewMock(t))

	require.NoError(t, l.Debit("s1", 100))
	require.NoError(t, l.Credit("s1", 200))
	balance, _ := l.Balance("s1")
	assert.Equal(t, game.Money(1100), balance)

	err := l.Debit("s1", 5000)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.True(t, errors.Is(err, game.ErrInsufficientFunds))
	balance, _ = l.Balance("s1")
	assert.Equal(t, game.Money(1100), balance, "failed debit leaves balance unchanged")

	assert.True(t, errors.Is(l.Debit("s1", -1), ErrInvalidAmount))
	assert.True(t, errors.Is(l.Credit("s1", -1), ErrInvalidAmount))
}

func TestRecordRoundOutcome(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(start)
	l := NewMemory(1000, clock)

	clock.Advance(time.Minute)
	require.NoError(t, l.RecordRoundOutcome("s1", RoundOutcome{TotalBet: 100, TotalWon: 200, Net: 100, Outcome: game.RoundWon}))
	require.NoError(t, l.RecordRoundOutcome("s1", RoundOutcome{TotalBet: 100, TotalWon: 50, TotalLost: 50, Net: -50, Outcome: game.RoundLost}))
	require.NoError(t, l.RecordRoundOutcome("s1", RoundOutcome{TotalBet: 100, TotalWon: 100, Net: 0, Outcome: game.RoundPush}))

	stats, err := l.Stats("s1")
	require.NoError(t, err)
	want := Counters{
		GamesPlayed:  3,
		GamesWon:     1,
		GamesPushed:  1,
		GamesLost:    1,
		TotalWagered: 300,
		TotalWon:     100,
		TotalLost:    50,
		LastNet:      0,
	}
	assert.Equal(t, want, stats.Session)
	assert.Equal(t, want, stats.Lifetime)
	assert.Equal(t, start, stats.OpenedAt)
	assert.Equal(t, start.Add(time.Minute), stats.LastRoundAt)
	assert.InDelta(t, 33.33, stats.Session.WinRate(), 0.01)
}

func TestResetSessionKeepsLifetime(t *testing.T) {
	t.Parallel()
	l := NewMemory(1000, quartz.NewMock(t))
	require.NoError(t, l.Debit("s1", 100))
	require.NoError(t, l.RecordRoundOutcome("s1", RoundOutcome{TotalBet: 100, Net: -100, TotalLost: 100, Outcome: game.RoundLost}))

	require.NoError(t, l.ResetSession("s1"))
	stats, err := l.Stats("s1")
	require.NoError(t, err)
	assert.Zero(t, stats.Session.GamesPlayed)
	assert.Equal(t, 1, stats.Lifetime.GamesPlayed)
	assert.Equal(t, game.Money(900), stats.Balance)
}

func TestOutcomeFromSettlement(t *testing.T) {
	t.Parallel()
	st := game.Settlement{TotalBet: 100, TotalWon: 50, TotalLost: 50, Net: -50, Outcome: game.RoundLost}
	o := OutcomeFromSettlement("r1", st)
	assert.Equal(t, RoundOutcome{RoundID: "r1", TotalBet: 100, TotalWon: 50, TotalLost: 50, Net: -50, Outcome: game.RoundLost}, o)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	t.Parallel()
	l := NewMemory(1000, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Debit("shared", 30) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	balance, _ := l.Balance("shared")
	assert.Equal(t, 33, succeeded)
	assert.Equal(t, game.Money(10), balance)
}
