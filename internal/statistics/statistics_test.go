package statistics

import (
	"math"
	"testing"

	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	t.Parallel()
	s := &Statistics{}
	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Percentile(0.9))
	assert.Zero(t, s.Rate(3))
	assert.Error(t, s.Validate())
}

func TestAddAndSummaries(t *testing.T) {
	t.Parallel()
	s := &Statistics{}
	results := []RoundResult{
		{Net: 1, Outcome: game.RoundWon, Hands: 1, DealerBusted: true},
		{Net: -1, Outcome: game.RoundLost, Hands: 1, PlayerBusted: true},
		{Net: 1.5, Outcome: game.RoundWon, Hands: 1, Blackjack: true},
		{Net: 0, Outcome: game.RoundPush, Hands: 2},
		{Net: -0.5, Outcome: game.RoundLost, Hands: 1, Surrendered: true},
		{Net: 2, Outcome: game.RoundWon, Hands: 1, Doubled: true},
	}
	for _, r := range results {
		s.Add(r)
	}

	require.NoError(t, s.Validate())
	assert.Equal(t, 6, s.Rounds)
	assert.Equal(t, 3, s.Wins)
	assert.Equal(t, 1, s.Pushes)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 1, s.Blackjacks)
	assert.Equal(t, 1, s.SplitRounds)
	assert.Equal(t, 1, s.Doubles)
	assert.Equal(t, 1, s.Surrenders)
	assert.Equal(t, 1, s.PlayerBusts)
	assert.Equal(t, 1, s.DealerBusts)
	assert.Equal(t, 2.0, s.MaxWin)
	assert.Equal(t, -1.0, s.MaxLoss)

	assert.InDelta(t, 3.0/6, s.Mean(), 1e-9)
	assert.InDelta(t, -50.0, s.HouseEdge(), 1e-9)
	assert.InDelta(t, 50.0, s.Rate(s.Wins), 1e-9)
	assert.InDelta(t, 0.5, s.Median(), 1e-9)

	// sample variance by definition
	mean := s.Mean()
	var ss float64
	for _, r := range results {
		ss += (r.Net - mean) * (r.Net - mean)
	}
	assert.InDelta(t, ss/5, s.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(ss/5)/math.Sqrt(6), s.StdError(), 1e-9)

	low, high := s.ConfidenceInterval95()
	assert.InDelta(t, mean-1.96*s.StdError(), low, 1e-9)
	assert.InDelta(t, mean+1.96*s.StdError(), high, 1e-9)
}

func TestPercentile(t *testing.T) {
	t.Parallel()
	s := &Statistics{}
	for i := 1; i <= 5; i++ {
		s.Add(RoundResult{Net: float64(i), Outcome: game.RoundWon})
	}
	assert.Equal(t, 1.0, s.Percentile(0))
	assert.Equal(t, 3.0, s.Percentile(0.5))
	assert.Equal(t, 5.0, s.Percentile(1))
	assert.InDelta(t, 2.0, s.Percentile(0.25), 1e-9)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	a, b, all := &Statistics{}, &Statistics{}, &Statistics{}
	for i := range 40 {
		r := RoundResult{Net: float64(i%5) - 2, Hands: 1 + i%2}
		switch {
		case r.Net > 0:
			r.Outcome = game.RoundWon
		case r.Net == 0:
			r.Outcome = game.RoundPush
		default:
			r.Outcome = game.RoundLost
		}
		if i%3 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
		all.Add(r)
	}

	a.Merge(b)
	require.NoError(t, a.Validate())
	assert.Equal(t, all.Rounds, a.Rounds)
	assert.Equal(t, all.Wins, a.Wins)
	assert.Equal(t, all.SplitRounds, a.SplitRounds)
	assert.InDelta(t, all.Mean(), a.Mean(), 1e-9)
	assert.InDelta(t, all.Variance(), a.Variance(), 1e-9)
	assert.InDelta(t, all.Median(), a.Median(), 1e-9)
}

func TestResultFromSettlement(t *testing.T) {
	t.Parallel()
	st := game.Settlement{
		Hands: []game.HandResult{
			{Outcome: game.OutcomeWin, Bet: 200, Won: 400},
			{Outcome: game.OutcomeBust, Bet: 100, Lost: 100},
		},
		DealerBusted: true,
		TotalBet:     300,
		TotalWon:     400,
		Net:          100,
		Outcome:      game.RoundWon,
	}
	r := ResultFromSettlement(st, 100)
	assert.Equal(t, 1.0, r.Net)
	assert.Equal(t, 2, r.Hands)
	assert.True(t, r.Doubled)
	assert.True(t, r.PlayerBusted)
	assert.True(t, r.DealerBusted)
	assert.False(t, r.Blackjack)
	assert.Equal(t, game.RoundWon, r.Outcome)
}

func TestValidateDetectsMismatch(t *testing.T) {
	t.Parallel()
	s := &Statistics{}
	s.Add(RoundResult{Net: 1, Outcome: game.RoundWon})
	s.WonNet = 5
	assert.ErrorContains(t, s.Validate(), "net mismatch")
}
