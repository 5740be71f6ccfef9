package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, DefaultRules().Validate())
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"no decks", func(r *Rules) { r.Decks = 0 }},
		{"nine decks", func(r *Rules) { r.Decks = 9 }},
		{"penetration too low", func(r *Rules) { r.Penetration = 49 }},
		{"penetration too high", func(r *Rules) { r.Penetration = 101 }},
		{"no splits", func(r *Rules) { r.MaxSplits = 0 }},
		{"too many splits", func(r *Rules) { r.MaxSplits = 5 }},
		{"zero minimum", func(r *Rules) { r.MinBet = 0 }},
		{"max below min", func(r *Rules) { r.MaxBet = 5 }},
		{"zero increment", func(r *Rules) { r.BetIncrement = 0 }},
		{"unknown deal style", func(r *Rules) { r.DealStyle = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRules()
			tt.mutate(&r)
			err := r.Validate()
			assert.True(t, errors.Is(err, ErrConfigInvalid), "got %v", err)
		})
	}
}

func TestRulesValidateBet(t *testing.T) {
	t.Parallel()
	r := testRules()
	r.BetIncrement = 5

	assert.NoError(t, r.ValidateBet(10))
	assert.NoError(t, r.ValidateBet(1000))
	for _, bet := range []Money{0, 5, 1005, 12} {
		err := r.ValidateBet(bet)
		assert.True(t, errors.Is(err, ErrInvalidBet), "bet %d: %v", bet, err)
	}
}

func TestPayoutBonus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Money(150), Payout3to2.Bonus(100))
	assert.Equal(t, Money(100), Payout1to1.Bonus(100))
	assert.Equal(t, Money(22), Payout3to2.Bonus(15), "fractions floor")
}

func TestDoubleRestriction(t *testing.T) {
	t.Parallel()
	for score := 4; score <= 21; score++ {
		assert.True(t, DoubleAny.Allows(score))
		assert.Equal(t, score >= 9 && score <= 11, DoubleNineToEleven.Allows(score), "score %d", score)
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()
	style, err := ParseDealStyle("Macau")
	require.NoError(t, err)
	assert.Equal(t, Macau, style)

	payout, err := ParsePayout("1:1")
	require.NoError(t, err)
	assert.Equal(t, Payout1to1, payout)

	restriction, err := ParseDoubleRestriction("9-10-11")
	require.NoError(t, err)
	assert.Equal(t, DoubleNineToEleven, restriction)

	draw, err := ParseDealerDraw("any17")
	require.NoError(t, err)
	assert.Equal(t, DrawAny17, draw)

	_, err = ParseShuffleMethod("riffle")
	assert.True(t, errors.Is(err, ErrConfigInvalid))
	_, err = ParseSurrenderRule("sometimes")
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestRulesJSONRoundTrip(t *testing.T) {
	t.Parallel()
	r := testRules()
	r.DealStyle = European
	r.DoubleOn = DoubleNineToEleven
	r.Surrender = SurrenderEarly

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deal_style":"european"`)
	assert.Contains(t, string(data), `"double_on":"9-10-11"`)

	var decoded Rules
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, decoded)
}
