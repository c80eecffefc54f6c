package engine

import (
	"fmt"
	"slices"

	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/pot"
)

// startRound opens the current round: bets reset, positions recomputed,
// blinds posted pre-flop, and the first actor put on turn.
func (e *Engine) startRound() {
	e.ledger.ResetForRound()
	e.hand.CurrentBet = 0
	e.hand.LastAggressor = -1
	e.hand.RoundStarted = false

	e.assignPositions()

	dealer := e.ledger.Dealer()
	var first int
	if e.hand.Round == Preflop {
		first = e.postBlinds()
	} else {
		first = e.nextSeatInPlay(dealer + 1)
	}

	e.logger.Debug("Starting round", "hand", e.hand.Number, "round", e.hand.Round, "pot", e.ledger.Pot())
	e.record(-1, fmt.Sprintf("%s, pot %d", e.hand.Round, e.ledger.Pot()))
	e.publish(RoundChangeEvent{Round: e.hand.Round, Pot: e.ledger.Pot(), timestamp: e.now()})

	e.hand.CurrentPlayer = first
	e.nextPlayer(false)
}

// assignPositions labels in-play seats clockwise from the button
func (e *Engine) assignPositions() {
	seats := e.seatsInPlay()
	dealer := e.ledger.Dealer()

	for _, p := range e.ledger.Players() {
		e.ledger.Player(p.ID).Position = ledger.Other
	}

	// Rotate so the dealer comes first
	start := 0
	for i, seat := range seats {
		if seat == dealer {
			start = i
			break
		}
	}
	ordered := slices.Concat(seats[start:], seats[:start])

	if len(ordered) == 2 {
		e.ledger.Player(ordered[0]).Position = ledger.Dealer
		e.ledger.Player(ordered[1]).Position = ledger.BigBlind
		return
	}

	labels := []ledger.Position{ledger.Dealer, ledger.SmallBlind, ledger.BigBlind}
	for i, seat := range ordered {
		if i < len(labels) {
			e.ledger.Player(seat).Position = labels[i]
		}
	}
}

// postBlinds commits the forced bets and returns the first seat to act
func (e *Engine) postBlinds() int {
	dealer := e.ledger.Dealer()

	var sb, bb, first int
	if len(e.seatsInPlay()) == 2 {
		// Heads-up: the button posts the small blind and acts first
		sb = dealer
		bb = e.nextSeatInPlay(dealer + 1)
		first = sb
	} else {
		sb = e.nextSeatInPlay(dealer + 1)
		bb = e.nextSeatInPlay(sb + 1)
		first = e.nextSeatInPlay(bb + 1)
	}

	e.postBlind(sb, e.cfg.SmallBlind(), false)
	e.postBlind(bb, e.cfg.BigBlind, true)
	e.hand.CurrentBet = e.cfg.BigBlind

	return first
}

func (e *Engine) postBlind(seat, amount int, big bool) {
	p := e.ledger.Player(seat)
	amount = min(amount, p.Chips)

	// The seat is funded and the amount clamped, so this cannot fail
	if err := e.commit(seat, amount); err != nil {
		e.logger.Error("Failed to post blind", "seat", seat, "amount", amount, "error", err)
		return
	}

	label := "small blind"
	if big {
		label = "big blind"
	}
	msg := fmt.Sprintf("%s posts %s %d", p.Name, label, amount)
	if p.AllIn {
		msg += " and is all-in"
	}

	e.logger.Debug("Posted blind", "seat", seat, "amount", amount, "big", big)
	e.record(seat, msg)
	e.publish(BlindPostedEvent{Seat: seat, Amount: amount, Big: big, AllIn: p.AllIn, timestamp: e.now()})
}

// nextPlayer ends the hand, ends the round, or moves the turn to the next
// seat that can act. advance is false when CurrentPlayer itself may act.
func (e *Engine) nextPlayer(advance bool) {
	if len(e.ledger.InHand()) <= 1 {
		e.finishUncontested()
		return
	}

	if e.roundComplete() {
		e.endRound()
		return
	}

	n := e.ledger.Len()
	start := e.hand.CurrentPlayer
	if advance {
		start++
	}
	for i := 0; i < n; i++ {
		seat := (start + i) % n
		if e.ledger.Player(seat).CanAct() {
			e.hand.CurrentPlayer = seat
			return
		}
	}

	e.endRound()
}

// roundComplete reports whether every player still in the hand is all-in or
// has acted and matched the current bet. A round with at most one player
// able to bet, who already matches, needs no more action.
func (e *Engine) roundComplete() bool {
	var canAct []*ledger.Player
	for seat := 0; seat < e.ledger.Len(); seat++ {
		if p := e.ledger.Player(seat); p.CanAct() {
			canAct = append(canAct, p)
		}
	}

	switch {
	case len(canAct) == 0:
		return true
	case len(canAct) == 1 && canAct[0].Bet >= e.hand.CurrentBet:
		return true
	case !e.hand.RoundStarted:
		return false
	}

	for _, p := range canAct {
		if !p.Acted || p.Bet != e.hand.CurrentBet {
			return false
		}
	}
	return true
}

func (e *Engine) endRound() {
	if e.hand.Round == River {
		e.enterShowdown()
		return
	}

	e.hand.Round++
	e.hand.Phase = phaseForRound(e.hand.Round)
	e.startRound()
}

// finishUncontested pays the whole pot to the last player standing
func (e *Engine) finishUncontested() {
	e.hand.CurrentPlayer = -1

	remaining := e.ledger.InHand()
	if len(remaining) == 0 {
		e.logger.Error("Hand ended with no players remaining", "hand", e.hand.Number, "pot", e.ledger.Pot())
		e.completeHand(false)
		return
	}

	winner := remaining[0]
	amount := e.ledger.Pot()
	e.pots = []pot.Pot{{Amount: amount, Eligible: []int{winner}, Contenders: []int{winner}}}
	e.awarded = []bool{false}

	if _, err := e.award(0, []int{winner}, true); err != nil {
		e.logger.Error("Failed to award uncontested pot", "seat", winner, "error", err)
	}
	e.completeHand(false)
}

// nextSeatInPlay returns the first seat at or clockwise of from that is
// playing this hand
func (e *Engine) nextSeatInPlay(from int) int {
	n := e.ledger.Len()
	for i := 0; i < n; i++ {
		seat := ((from+i)%n + n) % n
		if !e.ledger.Player(seat).SittingOut {
			return seat
		}
	}
	return -1
}

func (e *Engine) seatsInPlay() []int {
	seats := make([]int, 0, e.ledger.Len())
	for _, p := range e.ledger.Players() {
		if !p.SittingOut {
			seats = append(seats, p.ID)
		}
	}
	return seats
}
