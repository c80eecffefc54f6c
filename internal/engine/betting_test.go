package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaiseCallCallEndsRoundAfterLastCall(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Raise{Amount: 40})
	assert.Equal(t, 40, e.Hand().CurrentBet)
	assert.Equal(t, 0, e.Hand().LastAggressor)

	act(t, e, 1, Call{})
	assert.Equal(t, Preflop, e.Hand().Round, "big blind has not acted yet")
	assert.Equal(t, 2, e.Hand().CurrentPlayer)

	act(t, e, 2, Call{})
	hand := e.Hand()
	assert.Equal(t, Flop, hand.Round)
	assert.Equal(t, PhaseFlop, hand.Phase)
	assert.Equal(t, 0, hand.CurrentBet)
	assert.Equal(t, -1, hand.LastAggressor)
	assert.False(t, hand.RoundStarted)
	assert.Equal(t, 1, hand.CurrentPlayer, "small blind opens the flop")
	assert.Equal(t, 120, e.Pot())

	for _, p := range e.Players() {
		assert.Equal(t, 0, p.Bet)
		assert.Equal(t, 40, p.TotalBet)
		assert.False(t, p.Acted)
	}
	require.NoError(t, e.CheckConservation())
}

func TestBigBlindOption(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Call{})
	act(t, e, 1, Call{})
	assert.Equal(t, Preflop, e.Hand().Round)
	assert.Equal(t, 2, e.Hand().CurrentPlayer)

	act(t, e, 2, Raise{Amount: 20})
	assert.Equal(t, 40, e.Hand().CurrentBet)
	assert.Equal(t, 0, e.Hand().CurrentPlayer, "raise reopens the action")

	act(t, e, 0, Call{})
	act(t, e, 1, Call{})
	assert.Equal(t, Flop, e.Hand().Round)
}

func TestMidRoundReraiseKeepsRoundOpen(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Names: []string{"A", "B", "C", "D"}})
	require.NoError(t, e.StartHand())

	// Dealer 0, blinds 1 and 2, seat 3 opens
	require.Equal(t, 3, e.Hand().CurrentPlayer)
	act(t, e, 3, Call{})
	act(t, e, 0, Call{})
	act(t, e, 1, Raise{Amount: 50})
	act(t, e, 2, Call{})
	act(t, e, 3, Call{})
	assert.Equal(t, Preflop, e.Hand().Round, "dealer still owes the raise")
	assert.Equal(t, 0, e.Hand().CurrentPlayer)

	act(t, e, 0, Raise{Amount: 100})
	for _, seat := range []int{1, 2, 3} {
		assert.Equal(t, seat, e.Hand().CurrentPlayer)
		act(t, e, seat, Call{})
	}
	assert.Equal(t, Flop, e.Hand().Round)
	assert.Equal(t, 4*120, e.Pot())
}

func TestEveryoneChecksThroughToShowdown(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Call{})
	act(t, e, 1, Call{})
	act(t, e, 2, Check{})

	for _, round := range []Round{Flop, Turn, River} {
		require.Equal(t, round, e.Hand().Round)
		act(t, e, 1, Check{})
		act(t, e, 2, Check{})
		act(t, e, 0, Check{})
	}

	assert.Equal(t, PhaseShowdown, e.Phase())
	assert.Equal(t, -1, e.Hand().CurrentPlayer)
	assert.Equal(t, []int{0}, e.PendingPots())
}

func TestCallWhenMatchedIsACheck(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())
	act(t, e, 0, Call{})
	act(t, e, 1, Call{})

	act(t, e, 2, Call{})
	assert.Equal(t, Flop, e.Hand().Round)
	assert.Equal(t, 980, e.Players()[2].Chips)
}

func TestFoldedSeatsAreSkipped(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Names: []string{"A", "B", "C", "D"}})
	require.NoError(t, e.StartHand())

	act(t, e, 3, Call{})
	act(t, e, 0, Fold{})
	act(t, e, 1, Call{})
	act(t, e, 2, Check{})

	require.Equal(t, Flop, e.Hand().Round)
	act(t, e, 1, Check{})
	act(t, e, 2, Check{})
	act(t, e, 3, Check{})
	assert.Equal(t, Turn, e.Hand().Round)
	assert.Equal(t, 1, e.Hand().CurrentPlayer)
}

func TestFoldedSmallBlindSkippedAtRoundStart(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Call{})
	act(t, e, 1, Fold{})
	act(t, e, 2, Check{})

	assert.Equal(t, Flop, e.Hand().Round)
	assert.Equal(t, 2, e.Hand().CurrentPlayer)
}

func TestSingleSurvivorTakesPot(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Raise{Amount: 60})
	act(t, e, 1, Fold{})
	act(t, e, 2, Fold{})

	hand := e.Hand()
	assert.Equal(t, PhaseHandComplete, hand.Phase)
	assert.Equal(t, Preflop, hand.Round, "remaining rounds are skipped")
	assert.Equal(t, -1, hand.CurrentPlayer)
	assert.Equal(t, 0, e.Pot())

	players := e.Players()
	assert.Equal(t, 1030, players[0].Chips)
	assert.Equal(t, 990, players[1].Chips)
	assert.Equal(t, 980, players[2].Chips)
	require.NoError(t, e.CheckConservation())

	pots := e.ComputePots()
	require.Len(t, pots, 1)
	assert.Equal(t, 90, pots[0].Amount)
	assert.Equal(t, []int{0}, pots[0].Contenders)
}

func TestSingleSurvivorOnLaterRound(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Names: []string{"Alice", "Bob"}})
	require.NoError(t, e.StartHand())
	act(t, e, 0, Call{})
	act(t, e, 1, Check{})

	act(t, e, 1, Raise{Amount: 40})
	act(t, e, 0, Fold{})

	assert.Equal(t, PhaseHandComplete, e.Phase())
	assert.Equal(t, Flop, e.Hand().Round)
	assert.Equal(t, 980, e.Players()[0].Chips)
	assert.Equal(t, 1020, e.Players()[1].Chips)
}

func TestRejectedActionsDoNotMutate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		seat   int
		action Action
		err    error
	}{
		{"check facing a bet", 0, Check{}, ErrIllegalCheck},
		{"out of turn", 1, Call{}, ErrOutOfTurn},
		{"out of turn fold", 2, Fold{}, ErrOutOfTurn},
		{"raise to the current bet", 0, Raise{Amount: 20}, ErrIllegalRaise},
		{"zero raise", 0, Raise{Amount: 0}, ErrIllegalRaise},
		{"negative raise", 0, Raise{Amount: -5}, ErrIllegalRaise},
		{"nil action", 0, nil, ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, Config{})
			require.NoError(t, e.StartHand())
			before, err := json.Marshal(e.Snapshot())
			require.NoError(t, err)

			err = e.Act(tt.seat, tt.action)
			require.ErrorIs(t, err, tt.err)

			after, err := json.Marshal(e.Snapshot())
			require.NoError(t, err)
			assert.JSONEq(t, string(before), string(after))

			// The engine stays usable
			act(t, e, 0, Call{})
		})
	}
}

func TestActWithoutHand(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	assert.ErrorIs(t, e.Act(0, Check{}), ErrNoHandInProgress)
}

func TestActAfterHandOver(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{})
	require.NoError(t, e.StartHand())
	act(t, e, 0, Fold{})
	act(t, e, 1, Fold{})

	// Checked before turn order: no seat is on turn once the hand is over
	assert.ErrorIs(t, e.Act(2, Check{}), ErrHandAlreadyOver)
	assert.ErrorIs(t, e.Act(0, Check{}), ErrHandAlreadyOver)
}

func TestRaiseIsClampedToStack(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Stacks: []int{100, 1000, 1000}})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Raise{Amount: 500})
	p := e.Players()[0]
	assert.Equal(t, 0, p.Chips)
	assert.Equal(t, 100, p.Bet)
	assert.True(t, p.AllIn)
	assert.Equal(t, 100, e.Hand().CurrentBet)
	assert.Equal(t, 0, e.Hand().LastAggressor)
}

func TestClampedRaiseBelowCurrentBetIsAllInCall(t *testing.T) {
	t.Parallel()

	recorder := &eventRecorder{}
	e := newTestEngine(t, Config{Stacks: []int{1000, 1000, 50}})
	e.EventBus().Subscribe(recorder)
	require.NoError(t, e.StartHand())

	act(t, e, 0, Raise{Amount: 100})
	act(t, e, 1, Call{})
	recorder.events = nil

	// Asks for 200 total but only has 30 behind the big blind
	act(t, e, 2, Raise{Amount: 180})
	action := recorder.events[0].(PlayerActionEvent)
	assert.False(t, action.Raised, "short all-in does not change the bet")
	assert.Equal(t, 50, action.TotalBet)

	// Seats 0 and 1 already matched 100, so the round closes
	p := e.Players()[2]
	assert.True(t, p.AllIn)
	assert.Equal(t, 50, p.TotalBet)
	assert.Equal(t, 250, e.Pot())
	assert.Equal(t, Flop, e.Hand().Round)
}

func TestShortCallGoesAllIn(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Stacks: []int{1000, 1000, 60}})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Raise{Amount: 200})
	act(t, e, 1, Fold{})
	act(t, e, 2, Call{})

	p := e.Players()[2]
	assert.True(t, p.AllIn)
	assert.Equal(t, 0, p.Chips)
	assert.Equal(t, 60, p.TotalBet)
	assert.Equal(t, PhaseShowdown, e.Phase(), "no further betting is possible")
}

func TestAllInRunsOutToShowdown(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Names: []string{"Alice", "Bob"}, Stacks: []int{100, 1000}})
	require.NoError(t, e.StartHand())

	act(t, e, 0, Raise{Amount: 90})
	assert.True(t, e.Players()[0].AllIn)
	act(t, e, 1, Call{})

	assert.Equal(t, PhaseShowdown, e.Phase())
	assert.Equal(t, River, e.Hand().Round)
	assert.Equal(t, 200, e.Pot())

	_, err := e.ApplyWinners(0, []int{1})
	require.NoError(t, err)
	assert.Equal(t, PhaseHandComplete, e.Phase())
	assert.Equal(t, 0, e.Players()[0].Chips)
	assert.Equal(t, 1100, e.Players()[1].Chips)

	assert.ErrorIs(t, e.StartHand(), ErrNotEnoughPlayers)
}

func TestAllInBlindRunsOut(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, Config{Names: []string{"Alice", "Bob"}, Stacks: []int{10, 1000}})
	require.NoError(t, e.StartHand())

	// The dealer is all-in posting the small blind and the big blind already covers it
	assert.Equal(t, PhaseShowdown, e.Phase())
	pots := e.ComputePots()
	require.Len(t, pots, 2)
	assert.Equal(t, 20, pots[0].Amount)
	assert.Equal(t, []int{0, 1}, pots[0].Contenders)
	assert.Equal(t, 10, pots[1].Amount)
	assert.Equal(t, []int{1}, pots[1].Contenders)
	assert.Equal(t, []int{0}, e.PendingPots(), "the uncalled big blind returns automatically")
	assert.Equal(t, 990, e.Players()[1].Chips)
}
