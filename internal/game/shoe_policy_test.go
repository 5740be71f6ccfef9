package game

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dealN(t *testing.T, s *deck.Shoe, n int) {
	t.Helper()
	for range n {
		_, err := s.Deal()
		require.NoError(t, err)
	}
}

func TestResolveShoe(t *testing.T) {
	t.Parallel()
	rng := randutil.New(7)

	rules := testRules()
	rules.Decks = 8
	rules.Penetration = 75

	t.Run("no previous shoe", func(t *testing.T) {
		shoe, decision := ResolveShoe(nil, rules, rng)
		assert.Equal(t, ShoeNew, decision)
		assert.Equal(t, 416, shoe.CardsRemaining())
	})

	t.Run("deck count changed", func(t *testing.T) {
		prev := deck.NewShoe(rng, 6)
		shoe, decision := ResolveShoe(prev, rules, rng)
		assert.Equal(t, ShoeNew, decision)
		assert.Equal(t, 416, shoe.OriginalSize())
	})

	t.Run("penetration reached", func(t *testing.T) {
		prev := deck.NewShoe(rng, 8)
		dealN(t, prev, 313)
		shoe, decision := ResolveShoe(prev, rules, rng)
		assert.Equal(t, ShoeRecompose, decision)
		assert.Equal(t, 416, shoe.CardsRemaining())
		assert.Equal(t, 103, prev.CardsRemaining(), "previous shoe untouched")
	})

	t.Run("shoe mode continues", func(t *testing.T) {
		r := rules
		r.Shuffle = ShuffleShoe
		prev := deck.NewShoe(rng, 8)
		dealN(t, prev, 300)
		next, err := prev.Clone().Deal()
		require.NoError(t, err)

		shoe, decision := ResolveShoe(prev, r, rng)
		assert.Equal(t, ShoeContinue, decision)
		assert.Equal(t, 116, shoe.CardsRemaining())
		top, err := shoe.Deal()
		require.NoError(t, err)
		assert.Equal(t, next, top)
		assert.Equal(t, 116, prev.CardsRemaining())
	})

	t.Run("auto mode reshuffles remaining", func(t *testing.T) {
		r := rules
		r.Shuffle = ShuffleAuto
		prev := deck.NewShoe(rng, 8)
		dealN(t, prev, 100)

		shoe, decision := ResolveShoe(prev, r, rng)
		assert.Equal(t, ShoeReshuffle, decision)
		assert.Equal(t, 316, shoe.CardsRemaining())
		assert.Equal(t, 416, shoe.OriginalSize())
	})

	t.Run("below reserve at full penetration", func(t *testing.T) {
		r := rules
		r.Decks = 1
		r.Penetration = 100
		prev := deck.NewShoe(rng, 1)
		dealN(t, prev, 40)

		shoe, decision := ResolveShoe(prev, r, rng)
		assert.Equal(t, ShoeRecompose, decision)
		assert.Equal(t, 52, shoe.CardsRemaining())
	})
}
