package simulate

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/showdown"
)

func quietConfig(tables, hands int, seed int64, table engine.Config) Config {
	return Config{
		Tables: tables,
		Hands:  hands,
		Seed:   seed,
		Table:  table,
		Logger: log.New(io.Discard),
	}
}

func sixMax(policy showdown.OddChipPolicy) engine.Config {
	return engine.Config{
		Names:        []string{"A", "B", "C", "D", "E", "F"},
		InitialChips: 500,
		BigBlind:     15,
		OddChips:     policy,
	}
}

func TestRunConservesChips(t *testing.T) {
	t.Parallel()

	for _, policy := range []showdown.OddChipPolicy{showdown.OddChipsLeftOfDealer, showdown.OddChipsDrop} {
		t.Run(policy.String(), func(t *testing.T) {
			t.Parallel()

			res, err := Run(context.Background(), quietConfig(4, 60, 7, sixMax(policy)))
			require.NoError(t, err)
			require.Len(t, res.Tables, 4)
			assert.Positive(t, res.Hands)
			assert.Positive(t, res.Actions)

			for _, table := range res.Tables {
				total := table.Discarded
				for _, chips := range table.FinalStacks {
					total += chips
				}
				assert.Equal(t, 6*500, total, "table %d", table.Table)
				if policy == showdown.OddChipsLeftOfDealer {
					assert.Zero(t, table.Discarded)
				}
				if !table.Busted {
					assert.Equal(t, 60, table.Hands)
				}
			}
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := quietConfig(3, 40, 42, sixMax(showdown.OddChipsLeftOfDealer))
	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first.Tables[0].FinalStacks, first.Tables[1].FinalStacks, "tables get independent streams")
}

func TestRunStopsWhenTableBusts(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), quietConfig(2, 10000, 3, engine.Config{
		Names:    []string{"A", "B"},
		Stacks:   []int{40, 40},
		BigBlind: 20,
	}))
	require.NoError(t, err)

	for _, table := range res.Tables {
		assert.True(t, table.Busted, "table %d", table.Table)
		assert.Less(t, table.Hands, 10000)
		assert.ElementsMatch(t, []int{0, 80}, table.FinalStacks)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), quietConfig(0, 10, 1, sixMax(showdown.OddChipsDrop)))
	assert.Error(t, err)

	_, err = Run(context.Background(), quietConfig(1, 10, 1, engine.Config{Names: []string{"A"}}))
	assert.Error(t, err)
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, quietConfig(2, 10, 1, sixMax(showdown.OddChipsDrop)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChooseActionOnlyPicksLegalKinds(t *testing.T) {
	t.Parallel()

	e, err := engine.New(engine.Config{Names: []string{"A", "B", "C"}, InitialChips: 100, BigBlind: 10})
	require.NoError(t, err)
	require.NoError(t, e.StartHand())

	tbl := &table{rng: newRand(9, 0), e: e, logger: log.New(io.Discard)}
	seat := e.Hand().CurrentPlayer
	valid := e.ValidActions(seat)

	for range 200 {
		action := tbl.chooseAction(valid)
		assert.NotEqual(t, engine.Check{}, action, "a check is illegal facing the big blind")
		if raise, ok := action.(engine.Raise); ok {
			assert.GreaterOrEqual(t, raise.Amount, 11)
			assert.LessOrEqual(t, raise.Amount, 100)
		}
	}
}

func TestNewRandStreamsDiffer(t *testing.T) {
	t.Parallel()

	a := newRand(5, 0)
	b := newRand(5, 1)
	c := newRand(5, 0)

	av, bv, cv := a.Uint64(), b.Uint64(), c.Uint64()
	assert.NotEqual(t, av, bv)
	assert.Equal(t, av, cv)
}

func TestHandIDsFollowSeed(t *testing.T) {
	t.Parallel()

	a := &table{rng: newRand(8, 2)}
	b := &table{rng: newRand(8, 2)}

	first := a.handID()
	assert.Len(t, first, 36)
	assert.Equal(t, first, b.handID())
	assert.NotEqual(t, first, a.handID())
}
