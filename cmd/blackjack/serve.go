package main

import (
	"github.com/coder/quartz"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd runs the action API
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
	Seed *int64 `help:"Deterministic RNG seed for shuffles (optional)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	idle, err := cfg.IdleTimeout()
	if err != nil {
		return err
	}

	seed := randutil.Seed(c.Seed)
	clock := quartz.NewReal()
	svc, err := newService(cfg, seed, clock, logger)
	if err != nil {
		return err
	}

	storage := "memory"
	if cfg.Server.DataDir != "" {
		storage = cfg.Server.DataDir
	}
	logger.Info("Starting blackjack server",
		"address", cfg.Server.Address,
		"tables", len(cfg.Tables),
		"default_table", cfg.Server.Table,
		"starting_balance", cfg.Server.StartingBalance,
		"storage", storage,
		"idle_timeout", idle,
		"seed", seed)

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	srv := server.New(server.Config{
		Address:     cfg.Server.Address,
		IdleTimeout: idle,
		Clock:       clock,
	}, svc, logger)
	return srv.Run(ctx)
}
