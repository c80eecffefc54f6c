package history

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/ledger"
)

func newRecordedEngine(t *testing.T, cfg engine.Config) (*engine.Engine, *Recorder) {
	t.Helper()

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2030, 6, 1, 18, 30, 15, 0, time.UTC))

	n := 0
	e, err := engine.New(cfg,
		engine.WithClock(clock),
		engine.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("hand-%d", n)
		}),
	)
	require.NoError(t, err)

	rec := NewRecorder("main", log.New(io.Discard))
	e.EventBus().Subscribe(rec)
	return e, rec
}

func threeHanded() engine.Config {
	return engine.Config{
		Names:        []string{"Alice", "Bob", "Charlie"},
		InitialChips: 1000,
		BigBlind:     20,
	}
}

// playUncontested: Alice folds, Bob bets the flop and Charlie folds
func playUncontested(t *testing.T, e *engine.Engine) {
	t.Helper()

	require.NoError(t, e.StartHand())
	require.NoError(t, e.Act(0, engine.Fold{}))
	require.NoError(t, e.Act(1, engine.Call{}))
	require.NoError(t, e.Act(2, engine.Check{}))
	require.NoError(t, e.Act(1, engine.Raise{Amount: 40}))
	require.NoError(t, e.Act(2, engine.Fold{}))
	require.Equal(t, engine.PhaseHandComplete, e.Phase())
}

func TestRecorderUncontestedHand(t *testing.T) {
	t.Parallel()

	e, rec := newRecordedEngine(t, threeHanded())
	playUncontested(t, e)

	hands := rec.Hands()
	require.Len(t, hands, 1)
	hand := hands[0]

	assert.Equal(t, Variant, hand.Variant)
	assert.Equal(t, "main", hand.Table)
	assert.Equal(t, "hand-1", hand.HandID)
	assert.Equal(t, 3, hand.SeatCount)
	assert.Equal(t, []int{2, 3, 1}, hand.Seats)
	assert.Equal(t, []string{"Bob", "Charlie", "Alice"}, hand.Players)
	assert.Equal(t, []int{10, 20, 0}, hand.BlindsOrStraddles)
	assert.Equal(t, []int{0, 0, 0}, hand.Antes)
	assert.Equal(t, 20, hand.MinBet)
	assert.Equal(t, []int{1000, 1000, 1000}, hand.StartingStacks)
	assert.Equal(t, []int{1020, 980, 1000}, hand.FinishingStacks)
	assert.Equal(t, []int{80, 0, 0}, hand.Winnings)
	assert.Equal(t, []string{
		"d dh p1 ????",
		"d dh p2 ????",
		"d dh p3 ????",
		"p3 f",
		"p1 cc",
		"p2 cc",
		"d db ??????",
		"p1 cbr 40",
		"p2 f",
	}, hand.Actions)

	assert.Equal(t, "18:30:15", hand.Time)
	assert.Equal(t, "UTC", hand.TimeZone)
	assert.Equal(t, 1, hand.Day)
	assert.Equal(t, 6, hand.Month)
	assert.Equal(t, 2030, hand.Year)
}

func TestRecorderShowdownWinnings(t *testing.T) {
	t.Parallel()

	e, rec := newRecordedEngine(t, engine.Config{
		Names:    []string{"Alice", "Bob"},
		Stacks:   []int{100, 300},
		BigBlind: 20,
	})

	// Heads-up: Alice deals and posts the small blind
	require.NoError(t, e.StartHand())
	require.NoError(t, e.Act(0, engine.Raise{Amount: 200}))
	require.NoError(t, e.Act(1, engine.Call{}))
	require.Equal(t, engine.PhaseShowdown, e.Phase())
	assert.Empty(t, rec.Hands(), "hand is not recorded until every pot is paid")

	_, err := e.ApplyWinners(0, []int{0})
	require.NoError(t, err)

	hands := rec.Hands()
	require.Len(t, hands, 1)
	hand := hands[0]
	assert.Equal(t, []string{"Alice", "Bob"}, hand.Players)
	assert.Equal(t, []int{10, 20}, hand.BlindsOrStraddles)
	assert.Equal(t, []int{200, 0}, hand.Winnings)
	assert.Equal(t, []int{200, 200}, hand.FinishingStacks)
	assert.Equal(t, []string{
		"d dh p1 ????",
		"d dh p2 ????",
		"p1 cbr 100",
		"p2 cc",
		"d db ??????",
		"d db ??",
		"d db ??",
	}, hand.Actions)
}

func TestFormatAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		idx      int
		action   engine.Action
		totalBet int
		raised   bool
		want     string
	}{
		{"fold", 0, engine.Fold{}, 0, false, "p1 f"},
		{"check", 1, engine.Check{}, 0, false, "p2 cc"},
		{"call", 3, engine.Call{}, 50, false, "p4 cc"},
		{"raise", 0, engine.Raise{Amount: 100}, 120, true, "p1 cbr 120"},
		{"short all-in", 2, engine.Raise{Amount: 30}, 30, false, "p3 cc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAction(tt.idx, tt.action, tt.totalBet, tt.raised))
		})
	}
}

func TestPositionOrder(t *testing.T) {
	t.Parallel()

	players := []ledger.Player{
		{ID: 0, Name: "Alice"},
		{ID: 1, Name: "Bob", SittingOut: true},
		{ID: 2, Name: "Charlie"},
		{ID: 3, Name: "Dana"},
	}

	names := func(ps []ledger.Player) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Charlie", "Dana", "Alice"}, names(positionOrder(players, 0)))
	assert.Equal(t, []string{"Alice", "Charlie", "Dana"}, names(positionOrder(players, 3)))
	assert.Equal(t, []string{"Dana", "Charlie"}, names(positionOrder(players[2:], 3)), "heads-up dealer posts the small blind")
}

func TestEncode(t *testing.T) {
	t.Parallel()

	e, rec := newRecordedEngine(t, threeHanded())
	playUncontested(t, e)

	data, err := EncodeToBytes(rec.Hands()[0])
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `variant = "NT"`)
	assert.Contains(t, out, `hand = "hand-1"`)
	assert.Contains(t, out, `"p1 cbr 40"`)
	assert.Contains(t, out, "finishing_stacks = [1020, 980, 1000]")

	assert.Error(t, Encode(&bytes.Buffer{}, nil))
}

func TestFlushAppendsSections(t *testing.T) {
	t.Parallel()

	e, rec := newRecordedEngine(t, threeHanded())
	playUncontested(t, e)

	path := filepath.Join(t.TempDir(), "hands.phhs")
	require.NoError(t, rec.Flush(path))
	assert.Empty(t, rec.Hands())

	// Hand 2: Bob deals, Charlie posts the small blind
	require.NoError(t, e.StartHand())
	require.NoError(t, e.Act(1, engine.Fold{}))
	require.NoError(t, e.Act(2, engine.Fold{}))
	require.Len(t, rec.Hands(), 1)
	require.NoError(t, rec.Flush(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "[1]\n"))
	assert.Equal(t, 1, strings.Count(string(data), "[2]\n"))

	hands, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, hands, 2)
	assert.Equal(t, "hand-1", hands[0].HandID)
	assert.Equal(t, "hand-2", hands[1].HandID)
	assert.Equal(t, []string{"Charlie", "Alice", "Bob"}, hands[1].Players)
	assert.Equal(t, []int{0, 30, 0}, hands[1].Winnings)
}

func TestFlushWithNothingBuffered(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hands.phhs")
	rec := NewRecorder("main", log.New(io.Discard))
	require.NoError(t, rec.Flush(path))

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
