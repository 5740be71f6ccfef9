package table

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/ledger"
)

// Service-level actions that do not touch the round state machine.
const (
	ActionGetState   = "get_state"
	ActionGetStats   = "get_stats"
	ActionEndSession = "end_session"
)

// Request is one call to the action API.
type Request struct {
	Action string     `json:"action"`
	Bet    game.Money `json:"bet_amount,omitempty"`
	// Table picks a configured rule set for start_game; empty uses the default.
	Table string `json:"table,omitempty"`
}

// Response is the action API's reply. On failure the round and the balance
// are exactly as they were before the request.
type Response struct {
	Success   bool          `json:"success"`
	GameState *game.View    `json:"game_state,omitempty"`
	Balance   game.Money    `json:"balance"`
	Stats     *ledger.Stats `json:"stats,omitempty"`
	Error     string        `json:"error,omitempty"`
	Code      string        `json:"code,omitempty"`
}

func failure(err error, balance game.Money) Response {
	return Response{Error: err.Error(), Code: game.ErrorCode(err), Balance: balance}
}

// ValidActions lists every action name the API accepts
func ValidActions() []string {
	return []string{
		game.ActionStartGame.String(),
		game.ActionHit.String(),
		game.ActionStand.String(),
		game.ActionDouble.String(),
		game.ActionSplit.String(),
		game.ActionSurrender.String(),
		game.ActionNewGame.String(),
		ActionGetState,
		ActionGetStats,
		ActionEndSession,
	}
}

func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}

func unknownAction(action string) error {
	return fmt.Errorf("%w: unknown action %q (want one of %s)", game.ErrInvalidState, action, strings.Join(ValidActions(), ", "))
}
