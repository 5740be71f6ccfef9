package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/lox/blackjack/internal/statistics"
)

// SimulateCmd plays many rounds with a fixed policy to sanity check a rule set
type SimulateCmd struct {
	Rounds   int    `default:"100000" help:"Number of rounds to simulate"`
	Workers  int    `short:"w" default:"4" help:"Parallel workers"`
	Table    string `short:"t" help:"Table whose rules to use (defaults to the server table)"`
	Policy   string `default:"mimic" enum:"mimic,stand" help:"Player policy: mimic (hit below 17) or stand"`
	Bet      int64  `help:"Opening bet (defaults to the table minimum)"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
	Progress bool   `help:"Show a progress bar"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	name := c.Table
	if name == "" {
		name = cfg.Server.Table
	}
	tbl, ok := cfg.Table(name)
	if !ok {
		return fmt.Errorf("unknown table %q", name)
	}
	rules, err := tbl.Rules()
	if err != nil {
		return err
	}

	seed := randutil.Seed(c.Seed)
	simConfig := simulator.Config{
		Rounds:  c.Rounds,
		Workers: c.Workers,
		Seed:    seed,
		Bet:     game.Money(c.Bet),
		Rules:   rules,
		Policy:  c.Policy,
		Logger:  logger,
	}

	out := g.Stdout
	fmt.Fprintf(out, "Starting simulation: %d rounds at table %s, %s policy (seed: %d)\n\n", c.Rounds, name, c.Policy, seed)

	var progress *progressMonitor
	if c.Progress {
		progress = newProgressMonitor(out, c.Rounds)
		simConfig.Progress = progress.OnRounds
	}

	sim, err := simulator.New(simConfig)
	if err != nil {
		return err
	}
	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	if progress != nil {
		progress.Finish(stats.Rounds)
	}

	printResults(out, name, rules, stats)
	return nil
}

func printResults(out io.Writer, name string, rules game.Rules, s *statistics.Statistics) {
	low, high := s.ConfidenceInterval95()

	fmt.Fprintf(out, "\n=== RESULTS: %s ===\n", name)
	fmt.Fprintf(out, "Rules: %s\n", describeRules(rules))
	fmt.Fprintf(out, "Rounds: %d\n", s.Rounds)
	fmt.Fprintf(out, "Mean: %+.4f bets/round ± %.4f SE\n", s.Mean(), s.StdError())
	fmt.Fprintf(out, "95%% CI: [%+.4f, %+.4f] bets/round\n", low, high)
	fmt.Fprintf(out, "Std dev: %.4f  Median: %+.2f\n", s.StdDev(), s.Median())
	fmt.Fprintf(out, "House edge: %.2f%%\n", s.HouseEdge())

	fmt.Fprintf(out, "\nOutcomes:\n")
	fmt.Fprintf(out, "  Won    %6.2f%%  %+.1f bets\n", s.Rate(s.Wins), s.WonNet)
	fmt.Fprintf(out, "  Pushed %6.2f%%  %+.1f bets\n", s.Rate(s.Pushes), s.PushNet)
	fmt.Fprintf(out, "  Lost   %6.2f%%  %+.1f bets\n", s.Rate(s.Losses), s.LostNet)

	fmt.Fprintf(out, "\nEvents:\n")
	fmt.Fprintf(out, "  Blackjacks    %6.2f%%\n", s.Rate(s.Blackjacks))
	fmt.Fprintf(out, "  Splits        %6.2f%%\n", s.Rate(s.SplitRounds))
	fmt.Fprintf(out, "  Doubles       %6.2f%%\n", s.Rate(s.Doubles))
	fmt.Fprintf(out, "  Surrenders    %6.2f%%\n", s.Rate(s.Surrenders))
	fmt.Fprintf(out, "  Player busts  %6.2f%%\n", s.Rate(s.PlayerBusts))
	fmt.Fprintf(out, "  Dealer busts  %6.2f%%\n", s.Rate(s.DealerBusts))
	fmt.Fprintf(out, "  Biggest win %+.1f, biggest loss %+.1f bets\n", s.MaxWin, s.MaxLoss)
}

func describeRules(r game.Rules) string {
	parts := []string{
		fmt.Sprintf("%d deck", r.Decks),
		r.Shuffle.String(),
		r.DealStyle.String(),
		"dealer " + r.DealerDrawTo.String(),
		"blackjack pays " + r.BlackjackPayout.String(),
		"surrender " + r.Surrender.String(),
		"double " + r.DoubleOn.String(),
		fmt.Sprintf("max splits %d", r.MaxSplits),
	}
	if r.DoubleAfterSplit {
		parts = append(parts, "DAS")
	}
	if r.Shuffle == game.ShuffleShoe {
		parts = slices.Insert(parts, 2, fmt.Sprintf("%d%% penetration", r.Penetration))
	}
	return strings.Join(parts, ", ")
}
