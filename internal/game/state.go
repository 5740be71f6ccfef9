package game

import (
	"github.com/lox/blackjack/internal/deck"
)

// Phase is a step of the round state machine
type Phase uint8

const (
	Betting Phase = iota
	Dealing
	PlayerTurn
	DealerTurn
	GameOver
)

var phaseNames = []string{"betting", "dealing", "player_turn", "dealer_turn", "game_over"}

func (p Phase) String() string               { return enumName(phaseNames, p) }
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *Phase) UnmarshalText(b []byte) error {
	return parseEnumInto(phaseNames, "phase", string(b), p)
}

// RoundState is everything needed to resume a round: phase, hands, turn
// position and the shoe. It serializes to JSON for the state store.
type RoundState struct {
	ID      string      `json:"id,omitempty"`
	Phase   Phase       `json:"phase"`
	Rules   Rules       `json:"rules"`
	Dealer  Hand        `json:"dealer"`
	Hands   []Hand      `json:"hands"`
	Current int         `json:"current"`
	Shoe    *deck.Shoe  `json:"shoe,omitempty"`
	Result  *Settlement `json:"result,omitempty"`
}

// NewRoundState returns an empty state waiting for a bet
func NewRoundState() *RoundState {
	return &RoundState{Phase: Betting}
}

// ActiveHand returns the hand the player is acting on, or nil outside the player turn.
func (s *RoundState) ActiveHand() *Hand {
	if s.Phase != PlayerTurn || s.Current < 0 || s.Current >= len(s.Hands) {
		return nil
	}
	return &s.Hands[s.Current]
}

// TotalBet returns the sum of wagers across player hands
func (s *RoundState) TotalBet() Money {
	var total Money
	for _, h := range s.Hands {
		total += h.Bet
	}
	return total
}

// Clone returns a deep copy. Apply works on a clone so a failed action leaves
// the caller's state untouched.
func (s *RoundState) Clone() *RoundState {
	if s == nil {
		return nil
	}
	c := *s
	c.Dealer = s.Dealer.Clone()
	if s.Hands != nil {
		c.Hands = make([]Hand, len(s.Hands))
		for i, h := range s.Hands {
			c.Hands[i] = h.Clone()
		}
	}
	c.Shoe = s.Shoe.Clone()
	if s.Result != nil {
		r := *s.Result
		r.Hands = append([]HandResult(nil), s.Result.Hands...)
		c.Result = &r
	}
	return &c
}
