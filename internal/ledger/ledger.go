// Package ledger owns the chip accounting for every seat at a table.
//
// The ledger never clamps: callers decide how many chips a player commits and
// the ledger refuses anything the player cannot cover. Chips only move between
// stacks and the pot, so the sum of all stacks plus the pot (plus anything
// explicitly discarded) is constant for the life of a table.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientChips is returned when a commit exceeds the player's stack
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrUnknownSeat is returned for a seat id that is not at the table
	ErrUnknownSeat = errors.New("unknown seat")

	// ErrNegativeAmount is returned when a negative amount is moved
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrPotUnderflow is returned when a payout exceeds the chips in the pot
	ErrPotUnderflow = errors.New("payout exceeds pot")
)

// Ledger tracks stacks, bets and the pot for one table
type Ledger struct {
	players   []*Player
	pot       int
	discarded int
}

// New seats players in order; seat ids are their index and are never reused.
func New(names []string, stacks []int) *Ledger {
	if len(names) != len(stacks) {
		panic("stacks must match number of players")
	}

	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = &Player{
			ID:    i,
			Name:  name,
			Chips: stacks[i],
		}
	}

	return &Ledger{players: players}
}

// FromPlayers rebuilds a ledger from copied player records and a pot amount.
func FromPlayers(players []Player, pot, discarded int) *Ledger {
	l := &Ledger{
		players:   make([]*Player, len(players)),
		pot:       pot,
		discarded: discarded,
	}
	for i := range players {
		p := players[i]
		l.players[i] = &p
	}
	return l
}

// Len returns the number of seats
func (l *Ledger) Len() int {
	return len(l.players)
}

// Player returns the live record for a seat, or nil
func (l *Ledger) Player(seat int) *Player {
	if seat < 0 || seat >= len(l.players) {
		return nil
	}
	return l.players[seat]
}

// Players returns copies of every player record in seat order
func (l *Ledger) Players() []Player {
	out := make([]Player, len(l.players))
	for i, p := range l.players {
		out[i] = *p
	}
	return out
}

// Pot returns the chips committed this hand and not yet paid out
func (l *Ledger) Pot() int {
	return l.pot
}

// Discarded returns chips removed from play by an odd-chip drop policy
func (l *Ledger) Discarded() int {
	return l.discarded
}

// Commit moves chips from a player's stack into the pot
func (l *Ledger) Commit(seat, amount int) error {
	p, err := l.lookup(seat, amount)
	if err != nil {
		return err
	}

	if amount > p.Chips {
		return fmt.Errorf("seat %d commit %d with %d behind: %w", seat, amount, p.Chips, ErrInsufficientChips)
	}

	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	l.pot += amount
	return nil
}

// Credit adds chips to a player's stack without touching the pot
func (l *Ledger) Credit(seat, amount int) error {
	p, err := l.lookup(seat, amount)
	if err != nil {
		return err
	}

	p.Chips += amount
	return nil
}

// Payout moves chips from the pot to a player's stack
func (l *Ledger) Payout(seat, amount int) error {
	if _, err := l.lookup(seat, amount); err != nil {
		return err
	}
	if amount > l.pot {
		return fmt.Errorf("seat %d payout %d from pot %d: %w", seat, amount, l.pot, ErrPotUnderflow)
	}

	l.pot -= amount
	return l.Credit(seat, amount)
}

// Discard removes chips from the pot without paying anyone
func (l *Ledger) Discard(amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > l.pot {
		return fmt.Errorf("discard %d from pot %d: %w", amount, l.pot, ErrPotUnderflow)
	}

	l.pot -= amount
	l.discarded += amount
	return nil
}

// MarkFolded folds a seat for the rest of the hand
func (l *Ledger) MarkFolded(seat int) error {
	p := l.Player(seat)
	if p == nil {
		return fmt.Errorf("seat %d: %w", seat, ErrUnknownSeat)
	}
	p.Folded = true
	return nil
}

// MarkAllIn flags a seat as all-in for the rest of the hand
func (l *Ledger) MarkAllIn(seat int) error {
	p := l.Player(seat)
	if p == nil {
		return fmt.Errorf("seat %d: %w", seat, ErrUnknownSeat)
	}
	p.AllIn = true
	return nil
}

// MarkActed records that a seat has acted in the current round
func (l *Ledger) MarkActed(seat int) error {
	p := l.Player(seat)
	if p == nil {
		return fmt.Errorf("seat %d: %w", seat, ErrUnknownSeat)
	}
	p.Acted = true
	return nil
}

// ResetForRound clears per-round betting state. TotalBet is left alone so
// side pots can be built from the whole hand's contributions.
func (l *Ledger) ResetForRound() {
	for _, p := range l.players {
		p.Bet = 0
		p.Acted = false
	}
}

// ResetForHand clears all per-hand state and zeroes the pot. Seats without
// chips sit the hand out and are folded from the start.
func (l *Ledger) ResetForHand() {
	for _, p := range l.players {
		p.Bet = 0
		p.TotalBet = 0
		p.AllIn = false
		p.Acted = false
		p.SittingOut = p.Chips == 0
		p.Folded = p.SittingOut
	}
	l.pot = 0
}

// SetDealer moves the dealer button to seat
func (l *Ledger) SetDealer(seat int) {
	for _, p := range l.players {
		p.IsDealer = p.ID == seat
	}
}

// Dealer returns the dealer seat, or -1 before the first hand
func (l *Ledger) Dealer() int {
	for _, p := range l.players {
		if p.IsDealer {
			return p.ID
		}
	}
	return -1
}

// InHand returns the seats that have not folded, in seat order
func (l *Ledger) InHand() []int {
	seats := make([]int, 0, len(l.players))
	for _, p := range l.players {
		if p.InHand() {
			seats = append(seats, p.ID)
		}
	}
	return seats
}

// TotalChips returns the chips held by all players plus the pot
func (l *Ledger) TotalChips() int {
	total := l.pot
	for _, p := range l.players {
		total += p.Chips
	}
	return total
}

// ValidateConservation checks that no chips were created or destroyed
func (l *Ledger) ValidateConservation(expectedTotal int) error {
	actual := l.TotalChips() + l.discarded
	if actual != expectedTotal {
		return fmt.Errorf("chip conservation violation: expected %d total chips, but found %d (difference: %d)",
			expectedTotal, actual, actual-expectedTotal)
	}
	return nil
}

func (l *Ledger) lookup(seat, amount int) (*Player, error) {
	p := l.Player(seat)
	if p == nil {
		return nil, fmt.Errorf("seat %d: %w", seat, ErrUnknownSeat)
	}
	if amount < 0 {
		return nil, fmt.Errorf("seat %d amount %d: %w", seat, amount, ErrNegativeAmount)
	}
	return p, nil
}
