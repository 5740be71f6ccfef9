package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd plays against an in-process table service
type PlayCmd struct {
	Session string `short:"s" default:"local" help:"Session ID; with data_dir set, an unfinished round resumes"`
	Table   string `short:"t" help:"Table to play at (defaults to the server table)"`
	Seed    *int64 `help:"Deterministic RNG seed for shuffles (optional)"`
	NoColor bool   `help:"Disable colour output"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	if !store.ValidSession(c.Session) {
		return fmt.Errorf("invalid session ID %q", c.Session)
	}

	// The alternate screen owns the terminal, so only errors are logged.
	level := log.ErrorLevel
	if g.Debug {
		level = log.DebugLevel
	}
	logger := shared.SetupLogger(level)

	svc, err := newService(cfg, randutil.Seed(c.Seed), quartz.NewReal(), logger)
	if err != nil {
		return err
	}

	if _, ok := svc.Rules(c.Table); !ok {
		return fmt.Errorf("unknown table %q", c.Table)
	}

	tui.SetColor(!c.NoColor)
	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()
	return tui.Run(ctx, svc, c.Session, c.Table, logger)
}
