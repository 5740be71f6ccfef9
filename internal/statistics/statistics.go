// Package statistics accumulates per-round results from simulations.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult is the outcome of one simulated round. Net is measured in
// opening bets, so +1.5 is a paid blackjack and -2 a lost double.
type RoundResult struct {
	Net          float64
	Outcome      game.RoundOutcome
	Hands        int // player hands after splits
	Blackjack    bool
	Doubled      bool
	Surrendered  bool
	PlayerBusted bool
	DealerBusted bool
}

// ResultFromSettlement converts a settlement into a RoundResult measured in
// units of the opening bet.
func ResultFromSettlement(st game.Settlement, openingBet game.Money) RoundResult {
	r := RoundResult{
		Net:          float64(st.Net) / float64(openingBet),
		Outcome:      st.Outcome,
		Hands:        len(st.Hands),
		DealerBusted: st.DealerBusted,
	}
	for _, h := range st.Hands {
		switch h.Outcome {
		case game.OutcomeBlackjack:
			r.Blackjack = true
		case game.OutcomeSurrender:
			r.Surrendered = true
		case game.OutcomeBust:
			r.PlayerBusted = true
		}
		if h.Bet > openingBet {
			r.Doubled = true
		}
	}
	return r
}

// Statistics tracks the distribution of round results
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // All results for median/percentile

	Wins   int
	Pushes int
	Losses int

	// Net split by round outcome; the three always sum to SumNet
	WonNet  float64
	PushNet float64
	LostNet float64

	Blackjacks  int
	SplitRounds int
	Doubles     int
	Surrenders  int
	PlayerBusts int
	DealerBusts int
	MaxWin      float64
	MaxLoss     float64
}

// Add incorporates a round result
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.SumNet += r.Net
	s.SumNet2 += r.Net * r.Net
	s.Values = append(s.Values, r.Net)

	switch r.Outcome {
	case game.RoundWon:
		s.Wins++
		s.WonNet += r.Net
	case game.RoundPush:
		s.Pushes++
		s.PushNet += r.Net
	default:
		s.Losses++
		s.LostNet += r.Net
	}

	if r.Blackjack {
		s.Blackjacks++
	}
	if r.Hands > 1 {
		s.SplitRounds++
	}
	if r.Doubled {
		s.Doubles++
	}
	if r.Surrendered {
		s.Surrenders++
	}
	if r.PlayerBusted {
		s.PlayerBusts++
	}
	if r.DealerBusted {
		s.DealerBusts++
	}
	s.MaxWin = max(s.MaxWin, r.Net)
	s.MaxLoss = min(s.MaxLoss, r.Net)
}

// Merge folds another set of results into s, as when combining workers.
func (s *Statistics) Merge(o *Statistics) {
	s.Rounds += o.Rounds
	s.SumNet += o.SumNet
	s.SumNet2 += o.SumNet2
	s.Values = append(s.Values, o.Values...)
	s.Wins += o.Wins
	s.Pushes += o.Pushes
	s.Losses += o.Losses
	s.WonNet += o.WonNet
	s.PushNet += o.PushNet
	s.LostNet += o.LostNet
	s.Blackjacks += o.Blackjacks
	s.SplitRounds += o.SplitRounds
	s.Doubles += o.Doubles
	s.Surrenders += o.Surrenders
	s.PlayerBusts += o.PlayerBusts
	s.DealerBusts += o.DealerBusts
	s.MaxWin = max(s.MaxWin, o.MaxWin)
	s.MaxLoss = min(s.MaxLoss, o.MaxLoss)
}

// Mean returns the average net result per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(0, s.Variance()))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// HouseEdge is the negated mean as a percentage of the opening bet.
func (s *Statistics) HouseEdge() float64 {
	return -s.Mean() * 100
}

// Rate returns count as a percentage of rounds
func (s *Statistics) Rate(count int) float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(count) / float64(s.Rounds) * 100
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds (%d)", len(s.Values), s.Rounds)
	}
	if s.Wins+s.Pushes+s.Losses != s.Rounds {
		return fmt.Errorf("outcomes (%d+%d+%d) do not match rounds (%d)", s.Wins, s.Pushes, s.Losses, s.Rounds)
	}
	if math.Abs(s.SumNet-s.WonNet-s.PushNet-s.LostNet) > 1e-6 {
		return fmt.Errorf("net mismatch: sum=%.6f won=%.6f push=%.6f lost=%.6f", s.SumNet, s.WonNet, s.PushNet, s.LostNet)
	}
	return nil
}
