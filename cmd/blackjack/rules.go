package main

import (
	"fmt"
	"text/tabwriter"
)

// RulesCmd prints every configured table
type RulesCmd struct{}

func (c *RulesCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	tables, err := cfg.TableRules()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tBETS\tRULES")
	for _, t := range cfg.Tables {
		r := tables[t.Name]
		name := t.Name
		if name == cfg.Server.Table {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%d-%d (x%d)\t%s\n", name, r.MinBet, r.MaxBet, r.BetIncrement, describeRules(r))
	}
	return w.Flush()
}
