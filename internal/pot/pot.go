// Package pot splits a hand's contributions into a main pot and side pots.
package pot

import (
	"slices"
	"sort"
)

// Contribution is one seat's chips committed over the whole hand
type Contribution struct {
	Seat   int
	Amount int
	Folded bool
	AllIn  bool
}

// Pot represents a pot (main or side)
type Pot struct {
	Amount int `json:"amount"`
	// Eligible lists every seat that paid into this level, folded or not
	Eligible []int `json:"eligible"`
	// Contenders are the eligible seats that can still win it
	Contenders []int `json:"contenders"`
}

// Total returns the combined amount of all pots
func Total(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// Compute builds the ordered pot list from each seat's hand contribution.
// tablePot is the chips actually in the middle and is used when every
// remaining player has put in the same amount and nobody is all-in.
func Compute(contribs []Contribution, tablePot int) []Pot {
	contributors := make([]Contribution, 0, len(contribs))
	for _, c := range contribs {
		if c.Amount > 0 {
			contributors = append(contributors, c)
		}
	}
	if len(contributors) == 0 {
		return nil
	}

	if singlePot(contribs) {
		eligible := make([]int, len(contributors))
		for i, c := range contributors {
			eligible[i] = c.Seat
		}
		sort.Ints(eligible)
		return []Pot{{
			Amount:     tablePot,
			Eligible:   eligible,
			Contenders: contendersOf(eligible, contribs),
		}}
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		if contributors[i].Amount == contributors[j].Amount {
			return contributors[i].Seat < contributors[j].Seat
		}
		return contributors[i].Amount < contributors[j].Amount
	})

	var pots []Pot
	previousLevel := 0
	for len(contributors) > 0 {
		level := contributors[0].Amount

		eligible := make([]int, len(contributors))
		for i, c := range contributors {
			eligible[i] = c.Seat
		}
		sort.Ints(eligible)

		pots = append(pots, Pot{
			Amount:     (level - previousLevel) * len(contributors),
			Eligible:   eligible,
			Contenders: contendersOf(eligible, contribs),
		})

		// Seats capped at this level have nothing left for higher pots
		remaining := contributors[:0]
		for _, c := range contributors {
			if c.Amount > level {
				remaining = append(remaining, c)
			}
		}
		contributors = remaining
		previousLevel = level
	}

	return pots
}

// Consolidate merges adjacent pots that would be contested by the same
// seats. A pot nobody can win is folded into the pot below it.
func Consolidate(pots []Pot) []Pot {
	out := make([]Pot, 0, len(pots))
	for _, p := range pots {
		if len(out) == 0 {
			out = append(out, clonePot(p))
			continue
		}

		last := &out[len(out)-1]
		if len(p.Contenders) == 0 || slices.Equal(last.Contenders, p.Contenders) {
			last.Amount += p.Amount
			continue
		}

		// A dead main pot takes on the contenders of the level above it
		if len(last.Contenders) == 0 {
			last.Amount += p.Amount
			last.Contenders = slices.Clone(p.Contenders)
			continue
		}

		out = append(out, clonePot(p))
	}
	return out
}

// singlePot reports whether every non-folded seat matched the same total
// with nobody all-in, in which case side pots cannot exist.
func singlePot(contribs []Contribution) bool {
	level := -1
	for _, c := range contribs {
		if c.Folded {
			continue
		}
		if c.AllIn {
			return false
		}
		if level == -1 {
			level = c.Amount
		} else if c.Amount != level {
			return false
		}
	}
	return true
}

func contendersOf(eligible []int, contribs []Contribution) []int {
	folded := make(map[int]bool, len(contribs))
	for _, c := range contribs {
		folded[c.Seat] = c.Folded
	}

	contenders := make([]int, 0, len(eligible))
	for _, seat := range eligible {
		if !folded[seat] {
			contenders = append(contenders, seat)
		}
	}
	return contenders
}

func clonePot(p Pot) Pot {
	return Pot{
		Amount:     p.Amount,
		Eligible:   slices.Clone(p.Eligible),
		Contenders: slices.Clone(p.Contenders),
	}
}
