package simulator

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()
	rules := game.DefaultRules()

	_, err := New(Config{Rounds: 0, Rules: rules})
	assert.Error(t, err)

	_, err = New(Config{Rounds: 10, Rules: rules, Policy: "counting"})
	assert.ErrorContains(t, err, "unknown policy")

	bad := rules
	bad.Penetration = 10
	_, err = New(Config{Rounds: 10, Rules: bad})
	assert.ErrorIs(t, err, game.ErrConfigInvalid)

	_, err = New(Config{Rounds: 10, Rules: rules, Bet: 3})
	assert.ErrorIs(t, err, game.ErrInvalidBet)

	sim, err := New(Config{Rounds: 3, Workers: 8, Rules: rules})
	require.NoError(t, err)
	assert.Equal(t, 3, sim.config.Workers, "never more workers than rounds")
	assert.Equal(t, rules.MinBet, sim.config.Bet)
	assert.Equal(t, "mimic", sim.config.Policy)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()
	cfg := Config{Rounds: 2000, Workers: 4, Seed: 99, Rules: game.DefaultRules()}

	run := func() (mean float64, rounds int) {
		sim, err := New(cfg)
		require.NoError(t, err)
		stats, err := sim.Run(context.Background())
		require.NoError(t, err)
		return stats.Mean(), stats.Rounds
	}

	m1, n1 := run()
	m2, n2 := run()
	assert.Equal(t, 2000, n1)
	assert.Equal(t, n1, n2)
	assert.Equal(t, m1, m2)
}

func TestMimicPolicyLosesOverTime(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	sim, err := New(Config{
		Rounds:   20000,
		Workers:  4,
		Seed:     7,
		Rules:    game.DefaultRules(),
		Progress: func(int) { calls.Add(1) },
	})
	require.NoError(t, err)

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	// mimicking the dealer gives the house roughly a 5% edge
	assert.Negative(t, stats.Mean())
	assert.Greater(t, stats.Mean(), -0.2)
	assert.Positive(t, stats.Blackjacks)
	assert.Positive(t, stats.PlayerBusts)
	assert.Positive(t, stats.DealerBusts)
	assert.Zero(t, stats.Doubles)
	assert.Zero(t, stats.SplitRounds)
	assert.Equal(t, int64(20000), calls.Load())
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	sim, err := New(Config{Rounds: 100000, Workers: 2, Rules: game.DefaultRules()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicies(t *testing.T) {
	t.Parallel()
	state := &game.RoundState{
		Phase: game.PlayerTurn,
		Hands: []game.Hand{game.NewHand(10, deck.MustParseCards("Th 6d")...)},
	}
	assert.Equal(t, game.Hit{}, MimicDealer(state))
	assert.Equal(t, game.Stand{}, AlwaysStand(state))

	state.Hands[0] = game.NewHand(10, deck.MustParseCards("Th 7d")...)
	assert.Equal(t, game.Stand{}, MimicDealer(state))
}
