package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// ActionKind names an action on the wire
type ActionKind uint8

const (
	ActionStartGame ActionKind = iota
	ActionHit
	ActionStand
	ActionDouble
	ActionSplit
	ActionSurrender
	ActionNewGame
)

var actionNames = []string{"start_game", "hit", "stand", "double", "split", "surrender", "new_game"}

func (k ActionKind) String() string { return enumName(actionNames, k) }

// ParseActionKind parses a wire action name such as "hit" or "start_game".
func ParseActionKind(s string) (ActionKind, error) {
	for i, name := range actionNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidState, s)
}

// Action is one of StartGame, Hit, Stand, DoubleDown, Split, Surrender or NewGame.
type Action interface {
	Kind() ActionKind
}

// StartGame places the opening wager and deals. Rules is the table snapshot
// for the round. Shoe is optional; when nil the engine resolves one from the
// previous round's shoe.
type StartGame struct {
	Bet   Money
	Rules Rules
	Shoe  *deck.Shoe
}

type (
	Hit        struct{}
	Stand      struct{}
	DoubleDown struct{}
	Split      struct{}
	Surrender  struct{}
	NewGame    struct{}
)

func (StartGame) Kind() ActionKind  { return ActionStartGame }
func (Hit) Kind() ActionKind        { return ActionHit }
func (Stand) Kind() ActionKind      { return ActionStand }
func (DoubleDown) Kind() ActionKind { return ActionDouble }
func (Split) Kind() ActionKind      { return ActionSplit }
func (Surrender) Kind() ActionKind  { return ActionSurrender }
func (NewGame) Kind() ActionKind    { return ActionNewGame }

// ActionFor builds the action for a kind. StartGame takes the bet and rules.
func ActionFor(kind ActionKind, bet Money, rules Rules) (Action, error) {
	switch kind {
	case ActionStartGame:
		return StartGame{Bet: bet, Rules: rules}, nil
	case ActionHit:
		return Hit{}, nil
	case ActionStand:
		return Stand{}, nil
	case ActionDouble:
		return DoubleDown{}, nil
	case ActionSplit:
		return Split{}, nil
	case ActionSurrender:
		return Surrender{}, nil
	case ActionNewGame:
		return NewGame{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %d", ErrInvalidState, kind)
	}
}
