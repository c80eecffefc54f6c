// Package simulate plays random legal hands on many independent tables and
// checks that no chips are created or lost along the way.
package simulate

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/ledger"
)

// maxActionsPerHand bounds a single hand so a stuck engine fails loudly
const maxActionsPerHand = 1000

var (
	// ErrStuck is returned when a hand never reaches completion
	ErrStuck = errors.New("hand did not complete")
	// ErrRejectedMutated is returned when a rejected action changed state
	ErrRejectedMutated = errors.New("rejected action changed engine state")
)

// Config holds configuration for a simulation
type Config struct {
	Tables int
	Hands  int
	Seed   int64
	Table  engine.Config
	Logger *log.Logger
}

// TableResult summarises one table's session
type TableResult struct {
	Table       int
	Hands       int
	Showdowns   int
	Actions     int
	Rejected    int
	Discarded   int
	Busted      bool // Stopped early with fewer than two funded seats
	FinalStacks []int
}

// Result aggregates every table
type Result struct {
	Tables    []TableResult
	Hands     int
	Showdowns int
	Actions   int
}

// Run plays cfg.Tables tables concurrently. The first failing table cancels
// the rest.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Tables <= 0 || cfg.Hands <= 0 {
		return nil, fmt.Errorf("tables and hands must be positive")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	results := make([]TableResult, cfg.Tables)
	g, ctx := errgroup.WithContext(ctx)
	for i := range cfg.Tables {
		g.Go(func() error {
			t := &table{
				index:  i,
				rng:    newRand(cfg.Seed, i),
				logger: cfg.Logger.With("table", i),
			}
			r, err := t.play(ctx, cfg.Table, cfg.Hands)
			results[i] = r
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Tables: results}
	for _, r := range results {
		res.Hands += r.Hands
		res.Showdowns += r.Showdowns
		res.Actions += r.Actions
	}
	cfg.Logger.Info("Simulation complete", "tables", cfg.Tables, "hands", res.Hands, "showdowns", res.Showdowns, "actions", res.Actions)
	return res, nil
}

type table struct {
	index  int
	rng    *rand.Rand
	logger *log.Logger
	e      *engine.Engine
	result TableResult
}

func (t *table) play(ctx context.Context, cfg engine.Config, hands int) (TableResult, error) {
	e, err := engine.New(cfg,
		engine.WithLogger(t.logger),
		engine.WithIDGenerator(t.handID),
	)
	if err != nil {
		return TableResult{}, err
	}
	t.e = e
	t.result.Table = t.index

	for t.result.Hands < hands {
		if err := ctx.Err(); err != nil {
			return t.result, err
		}

		if err := e.StartHand(); err != nil {
			if errors.Is(err, engine.ErrNotEnoughPlayers) {
				t.logger.Debug("Table busted", "hands", t.result.Hands)
				t.result.Busted = true
				break
			}
			return t.result, err
		}
		if err := t.playHand(); err != nil {
			return t.result, fmt.Errorf("hand %d: %w", e.Hand().Number, err)
		}
		t.result.Hands++
	}

	for _, p := range e.Players() {
		t.result.FinalStacks = append(t.result.FinalStacks, p.Chips)
	}
	t.result.Discarded = e.Snapshot().Discarded
	return t.result, e.CheckConservation()
}

func (t *table) playHand() error {
	e := t.e
	for range maxActionsPerHand {
		switch phase := e.Phase(); {
		case phase.Betting():
			if t.rng.IntN(8) == 0 {
				if err := t.probeRejection(); err != nil {
					return err
				}
			}
			seat := e.Hand().CurrentPlayer
			action := t.chooseAction(e.ValidActions(seat))
			if err := e.Act(seat, action); err != nil {
				return fmt.Errorf("legal action %s by seat %d rejected: %w", action, seat, err)
			}
			t.result.Actions++
		case phase == engine.PhaseShowdown:
			t.result.Showdowns++
			if err := t.settle(); err != nil {
				return err
			}
		case phase == engine.PhaseHandComplete:
			return e.CheckConservation()
		default:
			return fmt.Errorf("unexpected phase %s", phase)
		}
		if err := e.CheckConservation(); err != nil {
			return err
		}
	}
	return ErrStuck
}

// settle awards every pending pot to a random non-empty subset of its
// contenders
func (t *table) settle() error {
	pots := t.e.ComputePots()
	for _, idx := range t.e.PendingPots() {
		contenders := pots[idx].Contenders
		winners := []int{contenders[t.rng.IntN(len(contenders))]}
		for _, seat := range contenders {
			if seat != winners[0] && t.rng.IntN(4) == 0 {
				winners = append(winners, seat)
			}
		}
		award, err := t.e.ApplyWinners(idx, winners)
		if err != nil {
			return fmt.Errorf("pot %d: %w", idx, err)
		}
		t.logger.Debug("Awarded pot", "pot", idx, "amount", award.Amount, "winners", winners, "remainder", award.Remainder)
	}
	return nil
}

// chooseAction picks a legal action, favouring passive play so hands reach
// later rounds
func (t *table) chooseAction(valid []engine.ValidAction) engine.Action {
	weights := map[engine.ActionKind]int{
		engine.KindCheck: 6,
		engine.KindCall:  5,
		engine.KindRaise: 2,
		engine.KindFold:  1,
	}

	total := 0
	for _, v := range valid {
		total += weights[v.Kind]
	}
	pick := t.rng.IntN(total)
	for _, v := range valid {
		if pick -= weights[v.Kind]; pick >= 0 {
			continue
		}
		switch v.Kind {
		case engine.KindCheck:
			return engine.Check{}
		case engine.KindCall:
			return engine.Call{}
		case engine.KindRaise:
			return engine.Raise{Amount: t.raiseAmount(v)}
		default:
			return engine.Fold{}
		}
	}
	return engine.Fold{}
}

func (t *table) raiseAmount(v engine.ValidAction) int {
	// One in ten raises shoves
	if t.rng.IntN(10) == 0 {
		return v.MaxAmount
	}
	span := min(v.MaxAmount-v.MinAmount, 4*t.e.Config().BigBlind)
	return v.MinAmount + t.rng.IntN(span+1)
}

// handID draws hand identifiers from the table's stream so a seeded run is
// reproducible end to end
func (t *table) handID() string {
	id, err := uuid.NewRandomFromReader(rngReader{t.rng})
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type state struct {
	hand    engine.HandState
	players []ledger.Player
	pot     int
}

func captureState(e *engine.Engine) state {
	return state{hand: e.Hand(), players: e.Players(), pot: e.Pot()}
}

// probeRejection submits an illegal action and checks the engine is
// unchanged afterwards
func (t *table) probeRejection() error {
	e := t.e
	current := e.Hand().CurrentPlayer
	players := e.Players()

	var seat int
	var action engine.Action
	if t.rng.IntN(2) == 0 {
		seat = (current + 1 + t.rng.IntN(len(players)-1)) % len(players)
		action = engine.Check{}
	} else {
		seat = current
		action = engine.Raise{Amount: 0}
	}

	before := captureState(e)
	err := e.Act(seat, action)
	if err == nil {
		return fmt.Errorf("illegal %s by seat %d was accepted", action, seat)
	}
	t.result.Rejected++
	if !reflect.DeepEqual(before, captureState(e)) {
		return fmt.Errorf("%w: %s by seat %d", ErrRejectedMutated, action, seat)
	}
	return nil
}
