package deck

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShoeComposition(t *testing.T) {
	t.Parallel()
	for decks := MinDecks; decks <= MaxDecks; decks++ {
		shoe := NewShoe(randutil.New(int64(decks)), decks)
		require.Equal(t, decks*CardsPerDeck, shoe.CardsRemaining())
		require.Equal(t, decks*CardsPerDeck, shoe.OriginalSize())
		require.Equal(t, decks, shoe.Decks())
	}
}

func TestDealIsExhaustiveWithoutRepetition(t *testing.T) {
	t.Parallel()
	const decks = 2
	shoe := NewShoe(randutil.New(7), decks)

	counts := make(map[Card]int)
	for range shoe.OriginalSize() {
		card, err := shoe.Deal()
		require.NoError(t, err)
		counts[card]++
	}

	require.Len(t, counts, CardsPerDeck)
	for card, n := range counts {
		assert.Equal(t, decks, n, "card %s", card)
	}

	_, err := shoe.Deal()
	assert.True(t, errors.Is(err, ErrEmptyShoe))
}

func TestShufflesDiffer(t *testing.T) {
	t.Parallel()
	rng := randutil.New(99)
	a := NewShoe(rng, 1)
	b := NewShoe(rng, 1)
	assert.False(t, slices.Equal(a.cards, b.cards), "two shuffles from one source should not match")
}

func TestShuffleIsUniform(t *testing.T) {
	t.Parallel()
	// Position of one specific card across many 1-deck shuffles should be spread
	// over every slot; a biased shuffle clusters it.
	const trials = 20000
	rng := randutil.New(1)
	target := NewCard(Spades, Ace)
	positions := make([]int, CardsPerDeck)
	for range trials {
		shoe := NewShoe(rng, 1)
		positions[slices.Index(shoe.cards, target)]++
	}
	expected := float64(trials) / CardsPerDeck
	for i, n := range positions {
		assert.InDelta(t, expected, float64(n), expected*0.35, "slot %d", i)
	}
}

func TestNeedsReshuffle(t *testing.T) {
	t.Parallel()
	assert.False(t, NeedsReshuffle(416, 416-300, 75), "300 of 416 dealt is ~72.1%")
	assert.True(t, NeedsReshuffle(416, 416-313, 75), "313 of 416 dealt is ~75.2%")
	assert.True(t, NeedsReshuffle(100, 50, 50), "boundary is inclusive")
	assert.False(t, NeedsReshuffle(100, 51, 50))
	assert.True(t, NeedsReshuffle(0, 0, 75), "empty composition always reshuffles")

	shoe := NewShoe(randutil.New(3), 8)
	for range 300 {
		_, err := shoe.Deal()
		require.NoError(t, err)
	}
	assert.False(t, shoe.NeedsReshuffle(75))
	for range 13 {
		_, err := shoe.Deal()
		require.NoError(t, err)
	}
	assert.True(t, shoe.NeedsReshuffle(75))
	assert.InDelta(t, 75.24, shoe.Penetration(), 0.01)
}

func TestResetRestoresComposition(t *testing.T) {
	t.Parallel()
	rng := randutil.New(11)
	shoe := NewShoe(rng, 1)
	for range 40 {
		_, _ = shoe.Deal()
	}
	shoe.Reset(rng, 3)
	assert.Equal(t, 3*CardsPerDeck, shoe.CardsRemaining())
	assert.Equal(t, 3*CardsPerDeck, shoe.OriginalSize())
	assert.Zero(t, shoe.Penetration())
}

func TestStackedShoeDealsInOrder(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("Ah Kd 9c")
	shoe := NewStackedShoe(cards...)
	for _, want := range cards {
		got, err := shoe.Deal()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Zero(t, shoe.CardsRemaining())
}

func TestShoeJSONRoundTrip(t *testing.T) {
	t.Parallel()
	shoe := NewShoe(randutil.New(5), 2)
	for range 10 {
		_, _ = shoe.Deal()
	}

	data, err := json.Marshal(shoe)
	require.NoError(t, err)

	var restored Shoe
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, shoe.CardsRemaining(), restored.CardsRemaining())
	assert.Equal(t, shoe.OriginalSize(), restored.OriginalSize())
	assert.Equal(t, shoe.Decks(), restored.Decks())

	for shoe.CardsRemaining() > 0 {
		want, _ := shoe.Deal()
		got, err := restored.Deal()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestShoeJSONRejectsOverfull(t *testing.T) {
	t.Parallel()
	var s Shoe
	err := json.Unmarshal([]byte(`{"decks":1,"original_size":1,"cards":["Ah","Kd"]}`), &s)
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	shoe := NewStackedShoe(MustParseCards("Ah Kd")...)
	clone := shoe.Clone()
	_, _ = clone.Deal()
	assert.Equal(t, 2, shoe.CardsRemaining())
	assert.Equal(t, 1, clone.CardsRemaining())
}
