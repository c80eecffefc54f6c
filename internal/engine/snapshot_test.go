package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCapturesState(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())
	act(t, e, 0, Raise{Amount: 40})

	s := e.Snapshot()
	assert.Equal(t, SnapshotVersion, s.Version)
	assert.Equal(t, "hand-1", s.HandID)
	assert.Equal(t, PhasePreflop, s.Phase)
	assert.Equal(t, Preflop, s.Round)
	assert.Equal(t, 70, s.Pot)
	assert.Equal(t, 40, s.CurrentBet)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, 0, s.LastAggressor)
	assert.True(t, s.RoundStarted)
	assert.Equal(t, 0, s.Dealer)
	assert.Equal(t, 3000, s.InitialTotal)
	assert.Len(t, s.Players, 3)
	assert.Nil(t, s.Pots)
	require.NotEmpty(t, s.Log)
	assert.Equal(t, "Alice raises to 40", s.Log[len(s.Log)-1].Message)

	// Snapshots are detached from the engine
	s.Players[0].Chips = 0
	assert.Equal(t, 960, e.Players()[0].Chips)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	source := playSidePotHand(t)
	data, err := json.Marshal(source.Snapshot())
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	e := newTestEngine(t, Config{Names: []string{"X", "Y"}})
	require.NoError(t, e.Restore(decoded))
	assert.Equal(t, source.Snapshot(), e.Snapshot())

	// The restored engine carries on from the same point
	_, err = e.ApplyWinners(0, []int{0})
	require.NoError(t, err)
	_, err = e.ApplyWinners(1, []int{2})
	require.NoError(t, err)
	assert.Equal(t, PhaseHandComplete, e.Phase())
	require.NoError(t, e.CheckConservation())

	require.NoError(t, e.StartHand())
	assert.Equal(t, 2, e.Hand().Number)
	assert.True(t, e.Players()[1].IsDealer)
}

func TestRestoreMidRound(t *testing.T) {
	t.Parallel()

	source := newTestEngine(t, Config{})
	require.NoError(t, source.StartHand())
	act(t, source, 0, Raise{Amount: 40})

	e := newTestEngine(t, Config{})
	require.NoError(t, e.Restore(source.Snapshot()))

	for _, engine := range []*Engine{source, e} {
		act(t, engine, 1, Call{})
		act(t, engine, 2, Call{})
	}
	assert.Equal(t, source.Snapshot(), e.Snapshot())
	assert.Equal(t, Flop, e.Hand().Round)
}

func TestRestoreWaiting(t *testing.T) {
	t.Parallel()

	source := newTestEngine(t, Config{Names: []string{"A", "B"}, InitialChips: 500})
	e := newTestEngine(t, Config{})
	require.NoError(t, e.Restore(source.Snapshot()))

	assert.Equal(t, PhaseWaiting, e.Phase())
	assert.Len(t, e.Players(), 2)
	require.NoError(t, e.StartHand())
	require.NoError(t, e.CheckConservation())
}

func TestRestoreRejectsInvalidSnapshots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"wrong version", func(s *Snapshot) { s.Version = 99 }},
		{"one player", func(s *Snapshot) { s.Players = s.Players[:1] }},
		{"created chips", func(s *Snapshot) { s.Players[0].Chips += 10 }},
		{"negative chips", func(s *Snapshot) { s.Players[0].Chips, s.Players[1].Chips = -10, s.Players[1].Chips+10 }},
		{"seat ids out of order", func(s *Snapshot) { s.Players[0].ID = 5 }},
		{"unknown phase", func(s *Snapshot) { s.Phase = Phase(42) }},
		{"phase does not match round", func(s *Snapshot) { s.Round = River }},
		{"current player out of range", func(s *Snapshot) { s.CurrentPlayerIndex = 7 }},
		{"current player folded", func(s *Snapshot) { s.Players[1].Folded = true }},
		{"two dealers", func(s *Snapshot) { s.Players[1].IsDealer = true }},
		{"bad blinds", func(s *Snapshot) { s.SmallBlind = 3 }},
		{"pot without contributions", func(s *Snapshot) { s.Players[1].Chips -= 40; s.Pot += 40 }},
		{"award flags without pots", func(s *Snapshot) { s.Awarded = []bool{true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := newTestEngine(t, Config{})
			require.NoError(t, source.StartHand())
			act(t, source, 0, Raise{Amount: 40})

			e := newTestEngine(t, Config{Names: []string{"X", "Y"}, InitialChips: 10})
			before := e.Snapshot()

			s := source.Snapshot()
			tt.mutate(&s)
			assert.ErrorIs(t, e.Restore(s), ErrInvalidSnapshot)
			assert.Equal(t, before, e.Snapshot(), "failed restore leaves the engine unchanged")
		})
	}
}

func TestRestoreDoesNotPublish(t *testing.T) {
	t.Parallel()

	source := newTestEngine(t, Config{})
	require.NoError(t, source.StartHand())

	var events []GameEvent
	e := newTestEngine(t, Config{})
	e.EventBus().Subscribe(SubscriberFunc(func(event GameEvent) {
		events = append(events, event)
	}))

	require.NoError(t, e.Restore(source.Snapshot()))
	assert.Empty(t, events)
}
