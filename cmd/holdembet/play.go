package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/history"
	"github.com/lox/holdembet/internal/render"
	"github.com/lox/holdembet/internal/snapshot"
)

// PlayCmd drives an engine from a script of actions
type PlayCmd struct {
	Table           string `help:"Table to play" default:"main"`
	Script          string `arg:"" optional:"" help:"Script file, or - for stdin" default:"-"`
	Snapshot        string `help:"Keep the latest state in this file (.json or .msgpack)" type:"path"`
	Resume          string `help:"Restore state from a snapshot file before playing" type:"path"`
	History         string `help:"Append finished hands to this PHH file" type:"path"`
	ContinueOnError bool   `help:"Log rejected actions and keep going"`
	LogLines        int    `help:"Action log entries to show under the table" default:"8"`
}

func (cmd PlayCmd) Run(g *Globals) error {
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

	e, err := engine.New(engineCfg, engine.WithLogger(logger.WithPrefix(table.Name)))
	if err != nil {
		return err
	}
	if cmd.Resume != "" {
		s, err := snapshot.Load(cmd.Resume)
		if err != nil {
			return err
		}
		if err := e.Restore(s); err != nil {
			return fmt.Errorf("failed to resume from %s: %w", cmd.Resume, err)
		}
		logger.Info("Resumed table", "path", cmd.Resume, "hand", s.HandNumber, "phase", s.Phase)
	}

	var saver *snapshot.Autosaver
	if cmd.Snapshot != "" {
		saver = snapshot.NewAutosaver(cmd.Snapshot, logger)
		e.EventBus().Subscribe(saver)
	}
	var recorder *history.Recorder
	if cmd.History != "" {
		recorder = history.NewRecorder(table.Name, logger)
		e.EventBus().Subscribe(recorder)
	}

	script, err := cmd.openScript()
	if err != nil {
		return err
	}
	defer script.Close()

	// A resumed snapshot brings its own seats
	var names []string
	for _, p := range e.Players() {
		names = append(names, p.Name)
	}
	steps, err := parseScript(script, names)
	if err != nil {
		return err
	}

	p := &player{
		engine:          e,
		renderer:        render.New(g.Stdout, render.WithLogLines(cmd.LogLines)),
		out:             g.Stdout,
		logger:          logger,
		continueOnError: cmd.ContinueOnError,
	}
	playErr := p.run(steps)

	if recorder != nil {
		if err := recorder.Flush(cmd.History); err != nil {
			return errors.Join(playErr, err)
		}
	}
	if saver != nil && saver.Err() != nil {
		return errors.Join(playErr, saver.Err())
	}
	return playErr
}

func (cmd PlayCmd) openScript() (io.ReadCloser, error) {
	if cmd.Script == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(cmd.Script)
}

// player applies script steps to an engine and prints the table at the end
// of every hand
type player struct {
	engine          *engine.Engine
	renderer        *render.Renderer
	out             io.Writer
	logger          *log.Logger
	continueOnError bool
	rejected        int
}

func (p *player) run(steps []step) error {
	e := p.engine
	if e.Phase() == engine.PhaseWaiting && (len(steps) == 0 || steps[0].kind != stepNext) {
		if err := e.StartHand(); err != nil {
			return err
		}
	}

	for _, s := range steps {
		before := e.Phase()
		if err := p.apply(s); err != nil {
			err = fmt.Errorf("line %d (%s): %w", s.line, s.text, err)
			if !p.continueOnError {
				p.print()
				return err
			}
			p.rejected++
			p.logger.Warn("Rejected", "error", err)
			continue
		}
		if before != engine.PhaseHandComplete && e.Phase() == engine.PhaseHandComplete {
			p.print()
		}
	}

	if e.Phase() != engine.PhaseHandComplete {
		p.print()
	}
	return e.CheckConservation()
}

func (p *player) apply(s step) error {
	e := p.engine
	switch s.kind {
	case stepNext:
		return e.StartHand()
	case stepWinners:
		award, err := e.ApplyWinners(s.pot, s.winners)
		if err != nil {
			return err
		}
		p.logger.Debug("Awarded pot", "pot", s.pot, "amount", award.Amount, "remainder", award.Remainder)
		return nil
	default:
		return e.Act(s.seat, s.action)
	}
}

func (p *player) print() {
	fmt.Fprintln(p.out, p.renderer.Render(p.engine.Snapshot()))
	fmt.Fprintln(p.out)
}
