package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	Config string    `short:"c" default:"blackjack.hcl" help:"Path to HCL configuration file"`
	Debug  bool      `help:"Enable debug logging (overrides log_level)"`
	Stdout io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the HTTP and WebSocket action API"`
	Play     PlayCmd          `cmd:"" help:"Play at a table in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate rounds under a table's rules"`
	Rules    RulesCmd         `cmd:"" help:"Show the configured tables"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout}}
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Session-based casino blackjack engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
