// Package showdown pays out computed pots to externally chosen winners.
//
// Winner selection is not made here. A caller computes the pots, collects a
// winner set for each contested pot from whatever collaborator decides hands,
// and hands it back to Award. Pots with a single contender need no input.
package showdown

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/pot"
)

// ErrNoEligibleWinner is returned when a winner set has no contender for the pot
var ErrNoEligibleWinner = errors.New("no eligible winner")

// OddChipPolicy decides what happens to chips that do not divide evenly
type OddChipPolicy int

const (
	// OddChipsLeftOfDealer hands the remainder out one chip at a time,
	// clockwise from the seat left of the dealer
	OddChipsLeftOfDealer OddChipPolicy = iota
	// OddChipsDrop discards the remainder
	OddChipsDrop
)

func (p OddChipPolicy) String() string {
	switch p {
	case OddChipsDrop:
		return "drop"
	default:
		return "left_of_dealer"
	}
}

// ParseOddChipPolicy converts a configuration name to a policy
func ParseOddChipPolicy(s string) (OddChipPolicy, error) {
	switch s {
	case "", "left_of_dealer":
		return OddChipsLeftOfDealer, nil
	case "drop":
		return OddChipsDrop, nil
	default:
		return 0, fmt.Errorf("unknown odd chip policy %q", s)
	}
}

// Payout is the chips credited to one seat from one pot
type Payout struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

// Award describes how a single pot was paid
type Award struct {
	Amount    int      `json:"amount"`
	Payouts   []Payout `json:"payouts"`
	Remainder int      `json:"remainder"` // chips discarded by OddChipsDrop
}

// Resolver credits pot winners through the ledger
type Resolver struct {
	ledger *ledger.Ledger
	policy OddChipPolicy
}

// NewResolver creates a resolver for a table's ledger
func NewResolver(l *ledger.Ledger, policy OddChipPolicy) *Resolver {
	return &Resolver{ledger: l, policy: policy}
}

// Contenders returns the seats that can win p: eligible and not folded
func (r *Resolver) Contenders(p pot.Pot) []int {
	contenders := make([]int, 0, len(p.Eligible))
	for _, seat := range p.Eligible {
		if pl := r.ledger.Player(seat); pl != nil && !pl.Folded {
			contenders = append(contenders, seat)
		}
	}
	return contenders
}

// Uncontested returns the only seat that can win p, if there is exactly one
func (r *Resolver) Uncontested(p pot.Pot) (int, bool) {
	contenders := r.Contenders(p)
	if len(contenders) != 1 {
		return -1, false
	}
	return contenders[0], true
}

// Award splits p between the winners. Seats that are not contenders are
// ignored; if none remain the pot is left untouched.
func (r *Resolver) Award(p pot.Pot, winners []int) (Award, error) {
	valid := r.filterWinners(p, winners)
	if len(valid) == 0 {
		return Award{}, fmt.Errorf("winners %v for pot of %d: %w", winners, p.Amount, ErrNoEligibleWinner)
	}

	share := p.Amount / len(valid)
	remainder := p.Amount % len(valid)

	amounts := make(map[int]int, len(valid))
	for _, seat := range valid {
		amounts[seat] = share
	}

	award := Award{Amount: p.Amount}
	if remainder > 0 {
		switch r.policy {
		case OddChipsLeftOfDealer:
			for i, seat := range r.clockwiseFromDealer(valid) {
				if i == remainder {
					break
				}
				amounts[seat]++
			}
		case OddChipsDrop:
			award.Remainder = remainder
		}
	}

	// Validation is complete; nothing below can fail for a pot the ledger holds
	for _, seat := range valid {
		if err := r.ledger.Payout(seat, amounts[seat]); err != nil {
			return Award{}, err
		}
		award.Payouts = append(award.Payouts, Payout{Seat: seat, Amount: amounts[seat]})
	}
	if award.Remainder > 0 {
		if err := r.ledger.Discard(award.Remainder); err != nil {
			return Award{}, err
		}
	}

	return award, nil
}

func (r *Resolver) filterWinners(p pot.Pot, winners []int) []int {
	contenders := r.Contenders(p)
	valid := make([]int, 0, len(winners))
	for _, seat := range winners {
		if slices.Contains(contenders, seat) && !slices.Contains(valid, seat) {
			valid = append(valid, seat)
		}
	}
	sort.Ints(valid)
	return valid
}

// clockwiseFromDealer orders seats starting with the first one left of the button
func (r *Resolver) clockwiseFromDealer(seats []int) []int {
	n := r.ledger.Len()
	dealer := r.ledger.Dealer()

	ordered := slices.Clone(seats)
	sort.Slice(ordered, func(i, j int) bool {
		return (ordered[i]-dealer-1+n)%n < (ordered[j]-dealer-1+n)%n
	})
	return ordered
}
