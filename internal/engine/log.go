package engine

import (
	"fmt"
	"time"

	"github.com/lox/holdembet/internal/ledger"
)

// LogEntry is one line of the human-readable action log. Seat is -1 for
// table messages.
type LogEntry struct {
	At      time.Time `json:"at"`
	Hand    int       `json:"hand"`
	Round   Round     `json:"round"`
	Seat    int       `json:"seat"`
	Message string    `json:"message"`
}

func (l LogEntry) String() string {
	return fmt.Sprintf("#%d %s: %s", l.Hand, l.Round, l.Message)
}

func (e *Engine) record(seat int, message string) {
	entry := LogEntry{At: e.now(), Seat: seat, Message: message}
	if e.hand != nil {
		entry.Hand = e.hand.Number
		entry.Round = e.hand.Round
	}
	e.log = append(e.log, entry)
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) describe(p *ledger.Player, action Action, committed int) string {
	switch a := action.(type) {
	case Call:
		if committed == 0 {
			return fmt.Sprintf("%s checks", p.Name)
		}
		return allIn(fmt.Sprintf("%s calls %d", p.Name, committed), p)
	case Raise:
		if committed < a.Amount {
			return fmt.Sprintf("%s goes all-in for %d", p.Name, committed)
		}
		return allIn(fmt.Sprintf("%s raises to %d", p.Name, p.Bet), p)
	case Fold:
		return fmt.Sprintf("%s folds", p.Name)
	default:
		return fmt.Sprintf("%s checks", p.Name)
	}
}

func allIn(msg string, p *ledger.Player) string {
	if p.AllIn {
		return msg + " and is all-in"
	}
	return msg
}
