package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/holdembet/internal/simulate"
)

// SimulateCmd runs random legal play on independent engines
type SimulateCmd struct {
	Table  string `help:"Table configuration to copy" default:"main"`
	Tables int    `help:"Number of tables to run concurrently" default:"4"`
	Hands  int    `help:"Hands to play per table" default:"1000"`
	Seed   int64  `help:"Random seed" default:"1"`
}

func (cmd SimulateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := g.newLogger(cfg)

	table, err := cfg.Table(cmd.Table)
	if err != nil {
		return err
	}
	engineCfg, err := table.EngineConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := simulate.Run(ctx, simulate.Config{
		Tables: cmd.Tables,
		Hands:  cmd.Hands,
		Seed:   cmd.Seed,
		Table:  engineCfg,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	for _, t := range res.Tables {
		status := "ok"
		if t.Busted {
			status = "busted"
		}
		fmt.Fprintf(g.Stdout, "table %d: %d hands, %d showdowns, %d actions, %d rejected, %d discarded, stacks %v (%s)\n",
			t.Table, t.Hands, t.Showdowns, t.Actions, t.Rejected, t.Discarded, t.FinalStacks, status)
	}
	fmt.Fprintf(g.Stdout, "total: %d hands, %d showdowns, %d actions across %d tables, chips conserved\n",
		res.Hands, res.Showdowns, res.Actions, len(res.Tables))
	return nil
}
