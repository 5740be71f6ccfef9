// Package simulator plays many rounds with a fixed policy to measure how a
// rule set pays out.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Policy picks the player's action for the active hand.
type Policy func(state *game.RoundState) game.Action

// Policies are the built-in fixed strategies by name.
var Policies = map[string]Policy{
	"mimic": MimicDealer,
	"stand": AlwaysStand,
}

// MimicDealer plays the dealer's rule: hit below 17, otherwise stand.
func MimicDealer(state *game.RoundState) game.Action {
	if h := state.ActiveHand(); h != nil && h.Score() < 17 {
		return game.Hit{}
	}
	return game.Stand{}
}

// AlwaysStand never draws.
func AlwaysStand(*game.RoundState) game.Action {
	return game.Stand{}
}

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Workers int
	Seed    int64
	Bet     game.Money
	Rules   game.Rules
	Policy  string
	Logger  *log.Logger
	// Progress, if set, is called with the running total of rounds played.
	Progress func(done int)
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
	policy Policy
	logger *log.Logger
}

// New validates the configuration and creates a simulator.
func New(config Config) (*Simulator, error) {
	if config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", config.Rounds)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	config.Workers = min(config.Workers, config.Rounds)
	if config.Bet == 0 {
		config.Bet = config.Rules.MinBet
	}
	if err := config.Rules.Validate(); err != nil {
		return nil, err
	}
	if err := config.Rules.ValidateBet(config.Bet); err != nil {
		return nil, err
	}
	if config.Policy == "" {
		config.Policy = "mimic"
	}
	policy, ok := Policies[config.Policy]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q", config.Policy)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, policy: policy, logger: logger.WithPrefix("simulator")}, nil
}

// Run plays every round and returns the merged statistics. Rounds are split
// across workers, each with its own engine, shoe and RNG derived from the
// seed, so a given seed and worker count always produce the same results.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	workers := s.config.Workers
	rngs := randutil.Split(s.config.Seed, workers)
	results := make([]*statistics.Statistics, workers)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		rounds := s.config.Rounds / workers
		if w < s.config.Rounds%workers {
			rounds++
		}
		g.Go(func() error {
			stats, err := s.runWorker(ctx, game.NewEngine(rngs[w]), rounds, &done)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &statistics.Statistics{}
	for _, r := range results {
		merged.Merge(r)
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Debug("Simulation complete",
		"rounds", merged.Rounds,
		"workers", workers,
		"mean", merged.Mean(),
		"stddev", merged.StdDev())
	return merged, nil
}

func (s *Simulator) runWorker(ctx context.Context, engine *game.Engine, rounds int, done *atomic.Int64) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}
	var state *game.RoundState
	// every hand split and doubled
	funds := s.config.Bet * game.Money(s.config.Rules.MaxHands()) * 2

	for i := range rounds {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		st, next, err := s.playRound(engine, state, funds)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		state = next
		stats.Add(statistics.ResultFromSettlement(st, s.config.Bet))

		n := done.Add(1)
		if s.config.Progress != nil {
			s.config.Progress(int(n))
		}
	}
	return stats, nil
}

// playRound plays one round from the previous state. funds is a balance
// large enough that no double or split is ever refused.
func (s *Simulator) playRound(engine *game.Engine, prev *game.RoundState, funds game.Money) (game.Settlement, *game.RoundState, error) {
	tr, err := engine.Apply(prev, game.StartGame{Bet: s.config.Bet, Rules: s.config.Rules}, funds)
	if err != nil {
		return game.Settlement{}, nil, err
	}
	state := tr.State

	for state.Phase == game.PlayerTurn {
		action := s.policy(state)
		tr, err = engine.Apply(state, action, funds)
		if err != nil {
			return game.Settlement{}, nil, fmt.Errorf("%s: %w", action.Kind(), err)
		}
		state = tr.State
	}
	if state.Result == nil {
		return game.Settlement{}, nil, errors.New("round ended without a settlement")
	}
	return *state.Result, state, nil
}
