// Package history records finished hands in the Poker Hand History (PHH)
// TOML format. Hole and board cards are not dealt by the betting engine, so
// deal actions carry unknown cards.
package history

import "time"

// Variant is the PHH code for no-limit Texas hold'em
const Variant = "NT"

// HandHistory is a single hand encoded as PHH. Per-player slices are
// ordered from the small blind, following the PHH convention.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	Table             string   `toml:"table,omitempty"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	Seats             []int    `toml:"seats,omitempty"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Winnings          []int    `toml:"winnings,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time,omitempty"`
	TimeZone          string   `toml:"time_zone,omitempty"`
	Day               int      `toml:"day,omitempty"`
	Month             int      `toml:"month,omitempty"`
	Year              int      `toml:"year,omitempty"`

	Timestamp time.Time `toml:"-"`
}

// Index returns the PHH player index (0-based) for a table seat, or -1
func (h *HandHistory) Index(seat int) int {
	for i, s := range h.Seats {
		if s == seat+1 {
			return i
		}
	}
	return -1
}

func (h *HandHistory) populateTimeFields() {
	if h.Timestamp.IsZero() {
		return
	}
	utc := h.Timestamp.UTC()
	h.Time = utc.Format("15:04:05")
	h.TimeZone = "UTC"
	h.Day = utc.Day()
	h.Month = int(utc.Month())
	h.Year = utc.Year()
}
