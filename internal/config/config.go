// Package config loads the HCL file that configures the server and its
// tables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/game"
)

const (
	DefaultAddress         = ":8080"
	DefaultLogLevel        = "info"
	DefaultStartingBalance = 1000
	DefaultTable           = "default"
)

// Config is the complete configuration file
type Config struct {
	Server Server  `hcl:"server,block"`
	Tables []Table `hcl:"table,block"`
}

// Server holds process-level settings
type Server struct {
	Address         string `hcl:"address,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	DataDir         string `hcl:"data_dir,optional"`
	StartingBalance int64  `hcl:"starting_balance,optional"`
	Table           string `hcl:"table,optional"`
	IdleTimeout     string `hcl:"idle_timeout,optional"`
}

// Table is one named rule set. Unset attributes take the house defaults.
type Table struct {
	Name             string `hcl:"name,label"`
	Decks            int    `hcl:"decks,optional"`
	Shuffle          string `hcl:"shuffle,optional"`
	Penetration      int    `hcl:"penetration,optional"`
	DealStyle        string `hcl:"deal_style,optional"`
	DealerDrawTo     string `hcl:"dealer_draw_to,optional"`
	BlackjackPayout  string `hcl:"blackjack_payout,optional"`
	Surrender        string `hcl:"surrender,optional"`
	DoubleAfterSplit *bool  `hcl:"double_after_split,optional"`
	DoubleOn         string `hcl:"double_on,optional"`
	MaxSplits        int    `hcl:"max_splits,optional"`
	MinBet           int64  `hcl:"min_bet,optional"`
	MaxBet           int64  `hcl:"max_bet,optional"`
	BetIncrement     int64  `hcl:"bet_increment,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{Tables: []Table{{Name: DefaultTable}}}
	c.applyDefaults()
	return c
}

// Load reads filename. A missing file yields Default().
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source, applies defaults and validates the result.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	if diags := gohcl.DecodeBody(file.Body, nil, &c); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", formatDiags(diags))
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func formatDiags(diags hcl.Diagnostics) string {
	if len(diags) == 1 {
		return diags[0].Error()
	}
	return diags.Error()
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.Server.StartingBalance == 0 {
		c.Server.StartingBalance = DefaultStartingBalance
	}
	if c.Server.IdleTimeout == "" {
		c.Server.IdleTimeout = "30m"
	}
	if len(c.Tables) == 0 {
		c.Tables = []Table{{Name: DefaultTable}}
	}
	if c.Server.Table == "" {
		c.Server.Table = c.Tables[0].Name
	}

	def := game.DefaultRules()
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Decks == 0 {
			t.Decks = def.Decks
		}
		if t.Shuffle == "" {
			t.Shuffle = def.Shuffle.String()
		}
		if t.Penetration == 0 {
			t.Penetration = def.Penetration
		}
		if t.DealStyle == "" {
			t.DealStyle = def.DealStyle.String()
		}
		if t.DealerDrawTo == "" {
			t.DealerDrawTo = def.DealerDrawTo.String()
		}
		if t.BlackjackPayout == "" {
			t.BlackjackPayout = def.BlackjackPayout.String()
		}
		if t.Surrender == "" {
			t.Surrender = def.Surrender.String()
		}
		if t.DoubleAfterSplit == nil {
			das := def.DoubleAfterSplit
			t.DoubleAfterSplit = &das
		}
		if t.DoubleOn == "" {
			t.DoubleOn = def.DoubleOn.String()
		}
		if t.MaxSplits == 0 {
			t.MaxSplits = def.MaxSplits
		}
		if t.MinBet == 0 {
			t.MinBet = int64(def.MinBet)
		}
		if t.MaxBet == 0 {
			t.MaxBet = max(int64(def.MaxBet), t.MinBet)
		}
		if t.BetIncrement == 0 {
			t.BetIncrement = int64(def.BetIncrement)
		}
	}
}

// Validate checks server settings and every table's rules.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", game.ErrConfigInvalid, c.Server.LogLevel)
	}
	if c.Server.StartingBalance <= 0 {
		return fmt.Errorf("%w: starting_balance must be positive", game.ErrConfigInvalid)
	}
	if _, err := c.IdleTimeout(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate table %q", game.ErrConfigInvalid, t.Name)
		}
		seen[t.Name] = true
		if _, err := t.Rules(); err != nil {
			return err
		}
	}
	if !seen[c.Server.Table] {
		return fmt.Errorf("%w: server table %q is not defined", game.ErrConfigInvalid, c.Server.Table)
	}
	return nil
}

// Rules converts the block to validated game rules.
func (t Table) Rules() (game.Rules, error) {
	r := game.Rules{
		Decks:        t.Decks,
		Penetration:  t.Penetration,
		MaxSplits:    t.MaxSplits,
		MinBet:       game.Money(t.MinBet),
		MaxBet:       game.Money(t.MaxBet),
		BetIncrement: game.Money(t.BetIncrement),
	}
	if t.DoubleAfterSplit != nil {
		r.DoubleAfterSplit = *t.DoubleAfterSplit
	}

	var err error
	if r.Shuffle, err = game.ParseShuffleMethod(t.Shuffle); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	if r.DealStyle, err = game.ParseDealStyle(t.DealStyle); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	if r.DealerDrawTo, err = game.ParseDealerDraw(t.DealerDrawTo); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	if r.BlackjackPayout, err = game.ParsePayout(t.BlackjackPayout); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	if r.Surrender, err = game.ParseSurrenderRule(t.Surrender); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	if r.DoubleOn, err = game.ParseDoubleRestriction(t.DoubleOn); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	if err := r.Validate(); err != nil {
		return game.Rules{}, t.wrap(err)
	}
	return r, nil
}

func (t Table) wrap(err error) error {
	if !errors.Is(err, game.ErrConfigInvalid) {
		err = fmt.Errorf("%w: %w", game.ErrConfigInvalid, err)
	}
	return fmt.Errorf("table %s: %w", t.Name, err)
}

// Table returns the named table block
func (c *Config) Table(name string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableRules returns the validated rules of every table keyed by name
func (c *Config) TableRules() (map[string]game.Rules, error) {
	rules := make(map[string]game.Rules, len(c.Tables))
	for _, t := range c.Tables {
		r, err := t.Rules()
		if err != nil {
			return nil, err
		}
		rules[t.Name] = r
	}
	return rules, nil
}

// IdleTimeout is how long an untouched session is kept; zero disables reaping.
func (c *Config) IdleTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: idle_timeout %q", game.ErrConfigInvalid, c.Server.IdleTimeout)
	}
	return d, nil
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
