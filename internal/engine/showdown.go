package engine

import (
	"fmt"
	"strings"

	"github.com/lox/holdembet/internal/pot"
	"github.com/lox/holdembet/internal/showdown"
)

// ComputePots returns the pots for the current hand without changing any
// state. Once the hand reaches showdown the pots are fixed and awarded pots
// are still listed.
func (e *Engine) ComputePots() []pot.Pot {
	if e.pots != nil {
		out := make([]pot.Pot, len(e.pots))
		for i, p := range e.pots {
			out[i] = pot.Pot{
				Amount:     p.Amount,
				Eligible:   append([]int(nil), p.Eligible...),
				Contenders: append([]int(nil), p.Contenders...),
			}
		}
		return out
	}
	if e.hand == nil {
		return nil
	}
	return pot.Consolidate(pot.Compute(e.contributions(), e.ledger.Pot()))
}

// PendingPots returns the indexes of showdown pots still waiting for winners
func (e *Engine) PendingPots() []int {
	if e.hand == nil || e.hand.Phase != PhaseShowdown {
		return nil
	}
	var pending []int
	for i, done := range e.awarded {
		if !done {
			pending = append(pending, i)
		}
	}
	return pending
}

// ApplyWinners pays pot potIndex to winners. Seats that cannot win the pot
// are ignored; if none can, ErrNoEligibleWinner is returned and the pot
// stays pending.
func (e *Engine) ApplyWinners(potIndex int, winners []int) (showdown.Award, error) {
	if e.hand == nil || e.hand.Phase != PhaseShowdown {
		return showdown.Award{}, ErrNotShowdown
	}
	if potIndex < 0 || potIndex >= len(e.pots) {
		return showdown.Award{}, fmt.Errorf("pot %d of %d: %w", potIndex, len(e.pots), ErrUnknownPot)
	}
	if e.awarded[potIndex] {
		return showdown.Award{}, fmt.Errorf("pot %d: %w", potIndex, ErrPotAlreadyAwarded)
	}

	award, err := e.award(potIndex, winners, false)
	if err != nil {
		e.logger.Debug("Rejected winners", "pot", potIndex, "winners", winners, "error", err)
		return showdown.Award{}, err
	}

	e.completeIfSettled()
	e.publishState()
	return award, nil
}

func (e *Engine) enterShowdown() {
	e.hand.Phase = PhaseShowdown
	e.hand.CurrentPlayer = -1
	e.pots = pot.Consolidate(pot.Compute(e.contributions(), e.ledger.Pot()))
	e.awarded = make([]bool, len(e.pots))

	e.logger.Info("Showdown", "hand", e.hand.Number, "pot", e.ledger.Pot(), "pots", len(e.pots))
	e.record(-1, fmt.Sprintf("Showdown, pot %d in %d pot(s)", e.ledger.Pot(), len(e.pots)))

	for i, p := range e.pots {
		seat, ok := e.resolver.Uncontested(p)
		if !ok {
			continue
		}
		if _, err := e.award(i, []int{seat}, true); err != nil {
			e.logger.Error("Failed to award uncontested pot", "pot", i, "seat", seat, "error", err)
		}
	}

	e.completeIfSettled()
}

func (e *Engine) award(index int, winners []int, uncontested bool) (showdown.Award, error) {
	p := e.pots[index]
	award, err := e.resolver.Award(p, winners)
	if err != nil {
		return showdown.Award{}, err
	}
	e.awarded[index] = true

	parts := make([]string, 0, len(award.Payouts))
	for _, payout := range award.Payouts {
		parts = append(parts, fmt.Sprintf("%s wins %d", e.name(payout.Seat), payout.Amount))
	}
	msg := strings.Join(parts, ", ")
	if award.Remainder > 0 {
		msg += fmt.Sprintf(" (%d odd chip(s) dropped)", award.Remainder)
	}

	e.logger.Info("Awarded pot", "hand", e.hand.Number, "pot", index, "amount", p.Amount, "winners", winners)
	e.record(-1, msg)
	e.publish(PotAwardedEvent{
		Index:       index,
		Pot:         p,
		Award:       award,
		Uncontested: uncontested,
		timestamp:   e.now(),
	})
	return award, nil
}

func (e *Engine) completeIfSettled() {
	for _, done := range e.awarded {
		if !done {
			return
		}
	}
	e.completeHand(true)
}

func (e *Engine) completeHand(wentToShowdown bool) {
	e.hand.Phase = PhaseHandComplete
	e.hand.CurrentPlayer = -1

	e.logger.Info("Hand complete", "hand", e.hand.Number, "showdown", wentToShowdown)
	e.record(-1, fmt.Sprintf("Hand #%d complete", e.hand.Number))
	e.publish(HandEndEvent{
		HandID:    e.hand.ID,
		Number:    e.hand.Number,
		Showdown:  wentToShowdown,
		Players:   e.ledger.Players(),
		Discarded: e.ledger.Discarded(),
		timestamp: e.now(),
	})
}

func (e *Engine) contributions() []pot.Contribution {
	contribs := make([]pot.Contribution, 0, e.ledger.Len())
	for _, p := range e.ledger.Players() {
		if p.TotalBet == 0 {
			continue
		}
		contribs = append(contribs, pot.Contribution{
			Seat:   p.ID,
			Amount: p.TotalBet,
			Folded: p.Folded,
			AllIn:  p.AllIn,
		})
	}
	return contribs
}
