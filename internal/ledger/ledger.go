// Package ledger tracks player balances and round statistics.
package ledger

import (
	"errors"
	"time"

	"github.com/lox/blackjack/internal/game"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the balance
	ErrInsufficientFunds = game.ErrInsufficientFunds
	// ErrInvalidAmount is returned for negative debits and credits
	ErrInvalidAmount = errors.New("invalid amount")
)

// RoundOutcome is what the ledger needs to know about a settled round.
type RoundOutcome struct {
	RoundID   string            `json:"round_id"`
	TotalBet  game.Money        `json:"total_bet"`
	TotalWon  game.Money        `json:"total_won"`
	TotalLost game.Money        `json:"total_lost"`
	Net       game.Money        `json:"net_result"`
	Outcome   game.RoundOutcome `json:"game_outcome"`
}

// OutcomeFromSettlement builds the ledger record for a settled round.
func OutcomeFromSettlement(roundID string, st game.Settlement) RoundOutcome {
	return RoundOutcome{
		RoundID:   roundID,
		TotalBet:  st.TotalBet,
		TotalWon:  st.TotalWon,
		TotalLost: st.TotalLost,
		Net:       st.Net,
		Outcome:   st.Outcome,
	}
}

// Counters accumulate round results over a span of play. Won and Lost are
// the positive and negative parts of each round's net result.
type Counters struct {
	GamesPlayed  int        `json:"games_played"`
	GamesWon     int        `json:"games_won"`
	GamesPushed  int        `json:"games_pushed"`
	GamesLost    int        `json:"games_lost"`
	TotalWagered game.Money `json:"total_wagered"`
	TotalWon     game.Money `json:"total_won"`
	TotalLost    game.Money `json:"total_lost"`
	LastNet      game.Money `json:"last_net_result"`
}

func (c *Counters) add(o RoundOutcome) {
	c.GamesPlayed++
	switch o.Outcome {
	case game.RoundWon:
		c.GamesWon++
	case game.RoundPush:
		c.GamesPushed++
	default:
		c.GamesLost++
	}
	c.TotalWagered += o.TotalBet
	if o.Net > 0 {
		c.TotalWon += o.Net
	} else {
		c.TotalLost -= o.Net
	}
	c.LastNet = o.Net
}

// WinRate returns the percentage of rounds won
func (c Counters) WinRate() float64 {
	if c.GamesPlayed == 0 {
		return 0
	}
	return float64(c.GamesWon) / float64(c.GamesPlayed) * 100
}

// Stats is a snapshot of one account.
type Stats struct {
	Balance     game.Money `json:"balance"`
	Session     Counters   `json:"session"`
	Lifetime    Counters   `json:"lifetime"`
	OpenedAt    time.Time  `json:"opened_at"`
	LastRoundAt time.Time  `json:"last_round_at,omitzero"`
}

// Ledger is the money store behind the table service. Implementations must
// make each call atomic; the caller serializes calls for one account.
type Ledger interface {
	// Balance returns the account's available funds, opening the account
	// with the starting balance if it does not exist yet.
	Balance(account string) (game.Money, error)
	// Debit takes amount from the balance or fails with ErrInsufficientFunds
	// leaving it unchanged.
	Debit(account string, amount game.Money) error
	// Credit adds amount to the balance.
	Credit(account string, amount game.Money) error
	// RecordRoundOutcome updates the session and lifetime counters.
	RecordRoundOutcome(account string, outcome RoundOutcome) error
	// Stats returns the account's balance and counters.
	Stats(account string) (Stats, error)
	// ResetSession zeroes the session counters, keeping balance and lifetime.
	ResetSession(account string) error
}
