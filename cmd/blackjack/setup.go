package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/gameid"
	"github.com/lox/blackjack/internal/ledger"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/table"
)

// load reads the configuration file and builds the logger from it
func (g *Globals) load() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", g.Config, err)
	}
	level := cfg.Level()
	if g.Debug {
		level = log.DebugLevel
	}
	return cfg, shared.SetupLogger(level), nil
}

// newService wires the engine, ledger and state store behind a table service
func newService(cfg *config.Config, seed int64, clock quartz.Clock, logger *log.Logger) (*table.Service, error) {
	tables, err := cfg.TableRules()
	if err != nil {
		return nil, err
	}

	var st store.Store = store.NewMemory()
	if cfg.Server.DataDir != "" {
		fs, err := store.NewFile(cfg.Server.DataDir, logger)
		if err != nil {
			return nil, err
		}
		st = fs
	}

	engine := game.NewEngine(randutil.New(seed),
		game.WithLogger(logger),
		game.WithIDGenerator(gameid.NewGenerator(clock, nil)))

	return table.NewService(engine,
		ledger.NewMemory(game.Money(cfg.Server.StartingBalance), clock),
		st, tables, cfg.Server.Table,
		table.WithLogger(logger),
		table.WithClock(clock))
}
