package game

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/require"
)

// testRules is a six-deck American table with a wide betting range.
func testRules() Rules {
	return Rules{
		Decks:            6,
		Shuffle:          ShuffleAuto,
		Penetration:      75,
		DealStyle:        American,
		DealerDrawTo:     DrawHard17,
		BlackjackPayout:  Payout3to2,
		Surrender:        SurrenderLate,
		DoubleAfterSplit: true,
		DoubleOn:         DoubleAny,
		MaxSplits:        3,
		MinBet:           10,
		MaxBet:           1000,
		BetIncrement:     1,
	}
}

func newTestEngine() *Engine {
	return NewEngine(randutil.New(42))
}

// stacked returns a shoe that deals the listed cards in order.
func stacked(cards string) *deck.Shoe {
	return deck.NewStackedShoe(deck.MustParseCards(cards)...)
}

func hand(cards string) Hand {
	return NewHand(0, deck.MustParseCards(cards)...)
}

func betHand(bet Money, cards string) Hand {
	return NewHand(bet, deck.MustParseCards(cards)...)
}

func splitHand(bet Money, cards string) Hand {
	h := betHand(bet, cards)
	h.Split = true
	return h
}

// startRound deals a round from a stacked shoe and fails the test on error.
func startRound(t *testing.T, e *Engine, rules Rules, bet, funds Money, cards string) Transition {
	t.Helper()
	tr, err := e.Apply(nil, StartGame{Bet: bet, Rules: rules, Shoe: stacked(cards)}, funds)
	require.NoError(t, err)
	return tr
}

// apply runs an action and fails the test on error.
func apply(t *testing.T, e *Engine, s *RoundState, a Action, funds Money) Transition {
	t.Helper()
	tr, err := e.Apply(s, a, funds)
	require.NoError(t, err, "action %s", a.Kind())
	return tr
}
