// Package store persists in-progress rounds so a session can resume between
// requests.
package store

import (
	"errors"
	"regexp"

	"github.com/lox/blackjack/internal/game"
)

// ErrNotFound is returned by LoadRound when the session has no stored round.
var ErrNotFound = errors.New("round not found")

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSession reports whether id is usable as a session key: 1-64 letters,
// digits, '-' or '_'.
func ValidSession(id string) bool {
	return sessionPattern.MatchString(id)
}

// Store saves one round state per session. Stored states are copies:
// mutating a loaded state does not change what is stored.
type Store interface {
	LoadRound(session string) (*game.RoundState, error)
	SaveRound(session string, state *game.RoundState) error
	ClearRound(session string) error
}
