package engine

import (
	"fmt"
	"slices"

	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/pot"
	"github.com/lox/holdembet/internal/showdown"
)

// SnapshotVersion is bumped whenever the snapshot shape changes
const SnapshotVersion = 1

// Snapshot is the complete serialisable state of an engine. Restoring it
// reproduces the engine exactly.
type Snapshot struct {
	Version            int                    `json:"version"`
	HandID             string                 `json:"handId"`
	HandNumber         int                    `json:"handNumber"`
	Phase              Phase                  `json:"phase"`
	Round              Round                  `json:"round"`
	Pot                int                    `json:"pot"`
	CurrentBet         int                    `json:"currentBet"`
	CurrentPlayerIndex int                    `json:"currentPlayerIndex"`
	LastAggressor      int                    `json:"lastAggressor"`
	RoundStarted       bool                   `json:"roundStarted"`
	Dealer             int                    `json:"dealer"`
	SmallBlind         int                    `json:"smallBlind"`
	BigBlind           int                    `json:"bigBlind"`
	OddChips           showdown.OddChipPolicy `json:"oddChips"`
	InitialTotal       int                    `json:"initialTotal"`
	Discarded          int                    `json:"discarded"`
	Players            []ledger.Player        `json:"players"`
	Pots               []pot.Pot              `json:"pots,omitempty"`
	Awarded            []bool                 `json:"awarded,omitempty"`
	Log                []LogEntry             `json:"log"`
}

// Snapshot captures the engine state. The result shares nothing with the
// engine.
func (e *Engine) Snapshot() Snapshot {
	hand := e.Hand()
	s := Snapshot{
		Version:            SnapshotVersion,
		HandID:             hand.ID,
		HandNumber:         hand.Number,
		Phase:              hand.Phase,
		Round:              hand.Round,
		Pot:                e.ledger.Pot(),
		CurrentBet:         hand.CurrentBet,
		CurrentPlayerIndex: hand.CurrentPlayer,
		LastAggressor:      hand.LastAggressor,
		RoundStarted:       hand.RoundStarted,
		Dealer:             e.ledger.Dealer(),
		SmallBlind:         e.cfg.SmallBlind(),
		BigBlind:           e.cfg.BigBlind,
		OddChips:           e.cfg.OddChips,
		InitialTotal:       e.initialTotal,
		Discarded:          e.ledger.Discarded(),
		Players:            e.ledger.Players(),
		Log:                e.Log(),
	}
	if e.pots != nil {
		s.Pots = e.ComputePots()
		s.Awarded = slices.Clone(e.awarded)
	}
	return s
}

// Restore replaces the whole engine state with s. The snapshot is validated
// first; on error the engine is unchanged.
func (e *Engine) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	players := slices.Clone(s.Players)
	l := ledger.FromPlayers(players, s.Pot, s.Discarded)

	var hand *HandState
	if s.Phase != PhaseWaiting {
		hand = &HandState{
			ID:            s.HandID,
			Number:        s.HandNumber,
			Phase:         s.Phase,
			Round:         s.Round,
			CurrentBet:    s.CurrentBet,
			CurrentPlayer: s.CurrentPlayerIndex,
			LastAggressor: s.LastAggressor,
			RoundStarted:  s.RoundStarted,
		}
	}

	var pots []pot.Pot
	if s.Pots != nil {
		pots = make([]pot.Pot, len(s.Pots))
		for i, p := range s.Pots {
			pots[i] = pot.Pot{
				Amount:     p.Amount,
				Eligible:   slices.Clone(p.Eligible),
				Contenders: slices.Clone(p.Contenders),
			}
		}
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	// Everything is validated; swap in the new state
	e.cfg.Names = names
	e.cfg.Stacks = nil
	e.cfg.BigBlind = s.BigBlind
	e.cfg.OddChips = s.OddChips
	e.ledger = l
	e.resolver = showdown.NewResolver(l, s.OddChips)
	e.hand = hand
	e.pots = pots
	e.awarded = slices.Clone(s.Awarded)
	e.initialTotal = s.InitialTotal
	e.log = slices.Clone(s.Log)

	e.logger.Info("Restored snapshot", "hand", s.HandNumber, "phase", s.Phase, "players", len(players))
	return nil
}

// Validate checks that s describes a reachable engine state
func (s Snapshot) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
	}

	if s.Version != SnapshotVersion {
		return invalid("unsupported version %d", s.Version)
	}
	if len(s.Players) < 2 {
		return invalid("at least 2 players required, got %d", len(s.Players))
	}
	if s.BigBlind < 2 || s.SmallBlind != s.BigBlind/2 {
		return invalid("blinds %d/%d", s.SmallBlind, s.BigBlind)
	}
	if s.Phase < PhaseWaiting || s.Phase > PhaseHandComplete {
		return invalid("unknown phase %d", s.Phase)
	}
	if s.Round < Preflop || s.Round > River {
		return invalid("unknown round %d", s.Round)
	}
	if s.OddChips != showdown.OddChipsLeftOfDealer && s.OddChips != showdown.OddChipsDrop {
		return invalid("unknown odd chip policy %d", s.OddChips)
	}
	if s.Pot < 0 || s.Discarded < 0 || s.CurrentBet < 0 {
		return invalid("negative pot, discard or bet")
	}

	total := s.Pot + s.Discarded
	dealers := 0
	for i, p := range s.Players {
		if p.ID != i {
			return invalid("player %d has id %d", i, p.ID)
		}
		if p.Chips < 0 || p.Bet < 0 || p.TotalBet < p.Bet {
			return invalid("player %d has negative chips or bets", i)
		}
		if p.IsDealer {
			dealers++
		}
		total += p.Chips
	}
	if total != s.InitialTotal {
		return invalid("chips total %d, expected %d", total, s.InitialTotal)
	}

	if s.Phase == PhaseWaiting {
		return nil
	}
	if dealers != 1 || s.Dealer < 0 || s.Dealer >= len(s.Players) || !s.Players[s.Dealer].IsDealer {
		return invalid("exactly one dealer required")
	}
	if s.Phase.Betting() {
		committed := 0
		for _, p := range s.Players {
			committed += p.TotalBet
		}
		if committed != s.Pot {
			return invalid("players committed %d, pot is %d", committed, s.Pot)
		}
		if s.Phase != phaseForRound(s.Round) {
			return invalid("phase %s does not match round %s", s.Phase, s.Round)
		}
		if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
			return invalid("current player %d out of range", s.CurrentPlayerIndex)
		}
		if !s.Players[s.CurrentPlayerIndex].CanAct() {
			return invalid("current player %d cannot act", s.CurrentPlayerIndex)
		}
	}
	if s.LastAggressor < -1 || s.LastAggressor >= len(s.Players) {
		return invalid("last aggressor %d out of range", s.LastAggressor)
	}
	if len(s.Pots) != len(s.Awarded) {
		return invalid("%d pots but %d award flags", len(s.Pots), len(s.Awarded))
	}
	if s.Phase == PhaseShowdown && len(s.Pots) == 0 {
		return invalid("showdown without pots")
	}
	if s.Phase == PhaseHandComplete && s.Pot != 0 {
		return invalid("completed hand with %d chips in the pot", s.Pot)
	}
	if s.Phase == PhaseShowdown {
		pending := 0
		for i, p := range s.Pots {
			if !s.Awarded[i] {
				pending += p.Amount
			}
		}
		if pending != s.Pot {
			return invalid("pending pots hold %d, pot is %d", pending, s.Pot)
		}
	}
	return nil
}
