package history

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/ledger"
)

// Recorder builds hand histories from engine events. Subscribe it to an
// engine's event bus; completed hands are buffered until Flush.
type Recorder struct {
	mu      sync.Mutex
	table   string
	logger  *log.Logger
	current *HandHistory
	buffer  []*HandHistory
}

// NewRecorder creates a recorder for the named table
func NewRecorder(table string, logger *log.Logger) *Recorder {
	return &Recorder{table: table, logger: logger.WithPrefix("history")}
}

// OnEvent implements engine.EventSubscriber
func (r *Recorder) OnEvent(event engine.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := event.(type) {
	case engine.HandStartEvent:
		r.current = r.newHand(e)
	case engine.BlindPostedEvent:
		if idx := r.index(e.Seat); idx >= 0 {
			r.current.BlindsOrStraddles[idx] = e.Amount
		}
	case engine.RoundChangeEvent:
		if r.current == nil {
			return
		}
		if action := boardAction(e.Round); action != "" {
			r.current.Actions = append(r.current.Actions, action)
		}
	case engine.PlayerActionEvent:
		if idx := r.index(e.Seat); idx >= 0 {
			r.current.Actions = append(r.current.Actions, FormatAction(idx, e.Action, e.TotalBet, e.Raised))
		}
	case engine.PotAwardedEvent:
		for _, payout := range e.Award.Payouts {
			if idx := r.index(payout.Seat); idx >= 0 {
				r.current.Winnings[idx] += payout.Amount
			}
		}
	case engine.HandEndEvent:
		if r.current == nil {
			return
		}
		for _, p := range e.Players {
			if idx := r.current.Index(p.ID); idx >= 0 {
				r.current.FinishingStacks[idx] = p.Chips
			}
		}
		r.current.populateTimeFields()
		r.buffer = append(r.buffer, r.current)
		r.logger.Debug("Recorded hand", "hand", e.Number, "id", e.HandID, "actions", len(r.current.Actions))
		r.current = nil
	}
}

func (r *Recorder) newHand(e engine.HandStartEvent) *HandHistory {
	order := positionOrder(e.Players, e.Dealer)
	n := len(order)
	hand := &HandHistory{
		Variant:           Variant,
		Table:             r.table,
		SeatCount:         len(e.Players),
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            e.BigBlind,
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Actions:           make([]string, 0, n+16),
		Players:           make([]string, n),
		HandID:            e.HandID,
		Timestamp:         e.Timestamp(),
	}

	for i, p := range order {
		hand.Seats[i] = p.ID + 1
		hand.StartingStacks[i] = p.Chips
		hand.FinishingStacks[i] = p.Chips
		hand.Players[i] = p.Name
		hand.Actions = append(hand.Actions, fmt.Sprintf("d dh p%d ????", i+1))
	}
	return hand
}

func (r *Recorder) index(seat int) int {
	if r.current == nil {
		return -1
	}
	return r.current.Index(seat)
}

// Hands returns the buffered hands
func (r *Recorder) Hands() []*HandHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*HandHistory(nil), r.buffer...)
}

// Flush appends buffered hands to the PHHS file at path and clears the buffer
func (r *Recorder) Flush(path string) error {
	r.mu.Lock()
	hands := append([]*HandHistory(nil), r.buffer...)
	r.mu.Unlock()

	if err := AppendFile(path, hands); err != nil {
		return fmt.Errorf("failed to write hand history: %w", err)
	}

	r.mu.Lock()
	r.buffer = r.buffer[len(hands):]
	r.mu.Unlock()

	r.logger.Info("Wrote hand history", "path", path, "hands", len(hands))
	return nil
}

// positionOrder lists the seats dealt into the hand starting from the small
// blind. Heads-up the dealer posts the small blind.
func positionOrder(players []ledger.Player, dealer int) []ledger.Player {
	var inPlay []ledger.Player
	start := 0
	for _, p := range players {
		if p.SittingOut {
			continue
		}
		if p.ID == dealer {
			start = len(inPlay)
		}
		inPlay = append(inPlay, p)
	}
	if len(inPlay) > 2 {
		start++
	}

	order := make([]ledger.Player, 0, len(inPlay))
	for i := range inPlay {
		order = append(order, inPlay[(start+i)%len(inPlay)])
	}
	return order
}
