package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/table"
)

// command is one parsed line of input
type command struct {
	quit    bool
	help    bool
	request table.Request
	// table switches the table used for the next deal
	table string
}

var aliases = map[string]string{
	"h":         game.ActionHit.String(),
	"hit":       game.ActionHit.String(),
	"s":         game.ActionStand.String(),
	"stand":     game.ActionStand.String(),
	"d":         game.ActionDouble.String(),
	"double":    game.ActionDouble.String(),
	"p":         game.ActionSplit.String(),
	"split":     game.ActionSplit.String(),
	"r":         game.ActionSurrender.String(),
	"surrender": game.ActionSurrender.String(),
	"n":         game.ActionNewGame.String(),
	"new":       game.ActionNewGame.String(),
	"state":     table.ActionGetState,
	"stats":     table.ActionGetStats,
	"end":       table.ActionEndSession,
}

// parseCommand turns a line such as "bet 50", "h" or "table high" into a
// command. An empty line repeats the previous bet.
func parseCommand(line string, lastBet game.Money) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		if lastBet <= 0 {
			return command{}, fmt.Errorf("place a bet first, e.g. 'bet 10'")
		}
		return command{request: table.Request{Action: game.ActionStartGame.String(), Bet: lastBet}}, nil
	}

	switch verb := fields[0]; verb {
	case "q", "quit", "exit":
		return command{quit: true}, nil
	case "?", "help":
		return command{help: true}, nil
	case "b", "bet", "deal", "start_game":
		bet := lastBet
		if len(fields) > 1 {
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil || n <= 0 {
				return command{}, fmt.Errorf("invalid bet %q", fields[1])
			}
			bet = game.Money(n)
		}
		if bet <= 0 {
			return command{}, fmt.Errorf("usage: bet <amount>")
		}
		return command{request: table.Request{Action: game.ActionStartGame.String(), Bet: bet}}, nil
	case "table":
		if len(fields) != 2 {
			return command{}, fmt.Errorf("usage: table <name>")
		}
		return command{table: fields[1]}, nil
	default:
		action, ok := aliases[verb]
		if !ok {
			action = verb
		}
		if len(fields) > 1 {
			return command{}, fmt.Errorf("%s takes no arguments", action)
		}
		return command{request: table.Request{Action: action}}, nil
	}
}

const helpText = "bet <n> | hit (h) | stand (s) | double (d) | split (p) | surrender (r) | new (n) | stats | table <name> | quit"
