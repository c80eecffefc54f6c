// Package engine implements the betting state machine for one poker table.
//
// The main type is Engine, which seats players, posts blinds, validates and
// applies player actions, decides when a betting round or hand is over and
// pays pots once winners are known. It does not deal cards or rank hands:
// showdown winners are supplied by the caller.
//
// # Basic Usage
//
//	e, err := engine.New(engine.Config{
//	    Names:        []string{"Alice", "Bob", "Carol"},
//	    InitialChips: 1000,
//	    BigBlind:     20,
//	})
//	_ = e.StartHand()
//	_ = e.Act(e.Hand().CurrentPlayer, engine.Call{})
//
// When the hand reaches PhaseShowdown, PendingPots lists the pots waiting for
// a winner set and ApplyWinners pays them out.
//
// The engine is single-threaded. Callers that share an Engine between
// goroutines must serialise access to it.
package engine

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/pot"
	"github.com/lox/holdembet/internal/showdown"
)

// Config configures a table session
type Config struct {
	Names        []string
	InitialChips int
	Stacks       []int // Optional per-seat stacks, overrides InitialChips
	BigBlind     int
	Dealer       int // Seat holding the button for the first hand
	OddChips     showdown.OddChipPolicy
}

// SmallBlind is half the big blind, rounded down
func (c Config) SmallBlind() int {
	return c.BigBlind / 2
}

func (c Config) validate() error {
	if len(c.Names) < 2 {
		return fmt.Errorf("at least 2 seats required, got %d", len(c.Names))
	}
	if c.Stacks != nil && len(c.Stacks) != len(c.Names) {
		return fmt.Errorf("stacks must match number of seats")
	}
	if c.Stacks == nil && c.InitialChips <= 0 {
		return fmt.Errorf("initial chips must be positive")
	}
	for i, s := range c.Stacks {
		if s < 0 {
			return fmt.Errorf("seat %d stack must not be negative", i)
		}
	}
	if c.SmallBlind() <= 0 {
		return fmt.Errorf("big blind must be at least 2, got %d", c.BigBlind)
	}
	if c.Dealer < 0 || c.Dealer >= len(c.Names) {
		return fmt.Errorf("dealer seat %d out of range", c.Dealer)
	}
	return nil
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the clock used for log and event timestamps
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithEventBus publishes engine events on bus
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithIDGenerator sets the hand id generator
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// Engine drives hands for one table
type Engine struct {
	cfg      Config
	ledger   *ledger.Ledger
	resolver *showdown.Resolver
	hand     *HandState

	// pots are fixed when the hand reaches showdown
	pots    []pot.Pot
	awarded []bool

	initialTotal int
	log          []LogEntry

	logger *log.Logger
	clock  quartz.Clock
	bus    EventBus
	newID  func() string
}

// New seats the configured players
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	stacks := cfg.Stacks
	if stacks == nil {
		stacks = make([]int, len(cfg.Names))
		for i := range stacks {
			stacks[i] = cfg.InitialChips
		}
	}

	l := ledger.New(cfg.Names, stacks)
	e := &Engine{
		cfg:          cfg,
		ledger:       l,
		resolver:     showdown.NewResolver(l, cfg.OddChips),
		initialTotal: l.TotalChips(),
		logger:       log.New(io.Discard),
		clock:        quartz.NewReal(),
		bus:          NewEventBus(),
		newID:        uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Config returns the session configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Players returns copies of every seat in seat order
func (e *Engine) Players() []ledger.Player {
	return e.ledger.Players()
}

// Hand returns a copy of the current hand state. Before the first hand the
// phase is PhaseWaiting.
func (e *Engine) Hand() HandState {
	if e.hand == nil {
		return HandState{Phase: PhaseWaiting, CurrentPlayer: -1, LastAggressor: -1}
	}
	return *e.hand
}

// Phase returns the state machine phase
func (e *Engine) Phase() Phase {
	return e.Hand().Phase
}

// Pot returns the chips committed and not yet paid out
func (e *Engine) Pot() int {
	return e.ledger.Pot()
}

// Log returns a copy of the action log
func (e *Engine) Log() []LogEntry {
	out := make([]LogEntry, len(e.log))
	copy(out, e.log)
	return out
}

// EventBus returns the bus engine events are published on
func (e *Engine) EventBus() EventBus {
	return e.bus
}

// CheckConservation verifies that no chips have been created or destroyed
func (e *Engine) CheckConservation() error {
	return e.ledger.ValidateConservation(e.initialTotal)
}

// StartHand begins a new hand: the button moves, blinds are posted and the
// first player is put on turn.
func (e *Engine) StartHand() error {
	if e.hand != nil && e.hand.Phase != PhaseHandComplete {
		return ErrHandInProgress
	}
	if e.ledger.Pot() != 0 {
		return fmt.Errorf("%w: pot of %d has not been paid out", ErrHandInProgress, e.ledger.Pot())
	}

	funded := 0
	for _, p := range e.ledger.Players() {
		if p.Chips > 0 {
			funded++
		}
	}
	if funded < 2 {
		return ErrNotEnoughPlayers
	}

	number := 1
	dealer := e.cfg.Dealer
	if e.hand != nil {
		number = e.hand.Number + 1
		dealer = e.ledger.Dealer() + 1
	}

	e.ledger.ResetForHand()
	e.ledger.SetDealer(e.nextSeatInPlay(dealer))
	e.hand = newHandState(e.newID(), number)
	e.pots = nil
	e.awarded = nil

	e.logger.Info("Starting hand", "hand", number, "id", e.hand.ID, "dealer", e.ledger.Dealer())
	e.record(-1, fmt.Sprintf("Hand #%d, dealer %s", number, e.name(e.ledger.Dealer())))
	e.publish(HandStartEvent{
		HandID:     e.hand.ID,
		Number:     number,
		Dealer:     e.ledger.Dealer(),
		SmallBlind: e.cfg.SmallBlind(),
		BigBlind:   e.cfg.BigBlind,
		Players:    e.ledger.Players(),
		timestamp:  e.now(),
	})

	e.startRound()
	e.publishState()
	return nil
}

// Act applies a player action. Rejected actions return an *ActionError and
// leave the engine untouched.
func (e *Engine) Act(seat int, action Action) error {
	if err := e.validateAction(seat, action); err != nil {
		e.logger.Debug("Rejected action", "seat", seat, "action", action, "error", err)
		return &ActionError{Seat: seat, Action: action, Err: err}
	}

	p := e.ledger.Player(seat)
	committed := 0

	switch a := action.(type) {
	case Check:
	case Call:
		committed = min(e.hand.CurrentBet-p.Bet, p.Chips)
	case Raise:
		committed = min(a.Amount, p.Chips)
	case Fold:
		if err := e.ledger.MarkFolded(seat); err != nil {
			return &ActionError{Seat: seat, Action: action, Err: err}
		}
	}

	if committed > 0 {
		if err := e.commit(seat, committed); err != nil {
			return &ActionError{Seat: seat, Action: action, Err: err}
		}
	}

	// A clamped raise that fails to top the bet is an all-in call
	_, raise := action.(Raise)
	raised := raise && p.Bet > e.hand.CurrentBet
	if raised {
		e.hand.CurrentBet = p.Bet
		e.hand.LastAggressor = seat
	}

	if err := e.ledger.MarkActed(seat); err != nil {
		return &ActionError{Seat: seat, Action: action, Err: err}
	}
	e.hand.RoundStarted = true

	e.logger.Debug("Player action", "seat", seat, "action", action, "committed", committed, "pot", e.ledger.Pot())
	e.record(seat, e.describe(p, action, committed))
	e.publish(PlayerActionEvent{
		Seat:      seat,
		Name:      p.Name,
		Action:    action,
		Committed: committed,
		TotalBet:  p.Bet,
		Raised:    raised,
		AllIn:     p.AllIn,
		Round:     e.hand.Round,
		PotAfter:  e.ledger.Pot(),
		timestamp: e.now(),
	})

	e.nextPlayer(true)
	e.publishState()
	return nil
}

// ValidActions lists what seat may do. It is empty unless seat is on turn.
func (e *Engine) ValidActions(seat int) []ValidAction {
	if e.hand == nil || !e.hand.Phase.Betting() || seat != e.hand.CurrentPlayer {
		return nil
	}

	p := e.ledger.Player(seat)
	toCall := e.hand.CurrentBet - p.Bet

	actions := make([]ValidAction, 0, 3)
	if toCall == 0 {
		actions = append(actions, ValidAction{Kind: KindCheck})
	} else {
		actions = append(actions, ValidAction{Kind: KindCall, Amount: min(toCall, p.Chips)})
	}
	if p.Chips > toCall {
		actions = append(actions, ValidAction{Kind: KindRaise, MinAmount: toCall + 1, MaxAmount: p.Chips})
	}
	return append(actions, ValidAction{Kind: KindFold})
}

func (e *Engine) validateAction(seat int, action Action) error {
	if e.hand == nil {
		return ErrNoHandInProgress
	}
	if !e.hand.Phase.Betting() {
		return ErrHandAlreadyOver
	}
	if seat != e.hand.CurrentPlayer {
		return ErrOutOfTurn
	}

	p := e.ledger.Player(seat)
	switch a := action.(type) {
	case Check:
		if p.Bet != e.hand.CurrentBet {
			return fmt.Errorf("%w: must call %d", ErrIllegalCheck, e.hand.CurrentBet-p.Bet)
		}
	case Raise:
		if a.Amount <= 0 || p.Bet+a.Amount <= e.hand.CurrentBet {
			return fmt.Errorf("%w: total %d against %d", ErrIllegalRaise, p.Bet+a.Amount, e.hand.CurrentBet)
		}
	case Call, Fold:
	default:
		return ErrInvalidAction
	}
	return nil
}

// commit moves chips from seat into the pot, flagging the seat all-in once
// its stack is empty
func (e *Engine) commit(seat, amount int) error {
	if err := e.ledger.Commit(seat, amount); err != nil {
		return err
	}
	if e.ledger.Player(seat).Chips == 0 {
		return e.ledger.MarkAllIn(seat)
	}
	return nil
}

func (e *Engine) publish(event GameEvent) {
	if e.bus != nil {
		e.bus.Publish(event)
	}
}

func (e *Engine) publishState() {
	if e.bus == nil {
		return
	}
	e.bus.Publish(StateChangedEvent{Snapshot: e.Snapshot(), timestamp: e.now()})
}

func (e *Engine) name(seat int) string {
	if p := e.ledger.Player(seat); p != nil {
		return p.Name
	}
	return "nobody"
}
