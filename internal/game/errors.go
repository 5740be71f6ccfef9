package game

import (
	"errors"

	"github.com/lox/blackjack/internal/deck"
)

var (
	// ErrInvalidState is returned for actions that do not apply to the current phase.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientFunds is returned when a bet, double or split exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidBet is returned for bets outside the table limits or increment.
	ErrInvalidBet = errors.New("invalid bet")
	// ErrIneligibleAction is returned when a double, split or surrender is not allowed.
	ErrIneligibleAction = errors.New("ineligible action")
	// ErrConfigInvalid is returned for out-of-range table rules.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrEmptyShoe means the shoe ran dry mid-round. The shuffle policy should
	// prevent this, so it indicates a defect rather than caller misuse.
	ErrEmptyShoe = deck.ErrEmptyShoe
)

// ErrorCode maps an error to the stable code reported by the action API.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidBet):
		return "invalid_bet"
	case errors.Is(err, ErrIneligibleAction):
		return "ineligible_action"
	case errors.Is(err, ErrConfigInvalid):
		return "config_invalid"
	case errors.Is(err, ErrEmptyShoe):
		return "empty_shoe"
	default:
		return "internal"
	}
}
