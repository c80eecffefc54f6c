// Package render draws an engine snapshot as a text table for terminals and
// log files.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/ledger"
)

// DefaultLogLines is how many action log entries are shown under the table
const DefaultLogLines = 8

// Renderer formats snapshots
type Renderer struct {
	styles   styles
	logLines int
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLogLines sets how many trailing log entries to show; zero hides the log
func WithLogLines(n int) Option {
	return func(r *Renderer) {
		r.logLines = n
	}
}

// New creates a renderer whose colour profile is detected from w
func New(w io.Writer, opts ...Option) *Renderer {
	return newRenderer(lipgloss.NewRenderer(w), opts...)
}

// NewPlain creates a renderer that never emits escape sequences
func NewPlain(opts ...Option) *Renderer {
	lr := lipgloss.NewRenderer(io.Discard)
	lr.SetColorProfile(termenv.Ascii)
	return newRenderer(lr, opts...)
}

func newRenderer(lr *lipgloss.Renderer, opts ...Option) *Renderer {
	r := &Renderer{styles: newStyles(lr), logLines: DefaultLogLines}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the full table view: header, seats, pots and recent log
func (r *Renderer) Render(s engine.Snapshot) string {
	sections := []string{r.Header(s), r.Seats(s)}
	if pots := r.Pots(s); pots != "" {
		sections = append(sections, pots)
	}
	if log := r.Log(s); log != "" {
		sections = append(sections, log)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Header summarises the hand
func (r *Renderer) Header(s engine.Snapshot) string {
	if s.Phase == engine.PhaseWaiting {
		return r.styles.header.Render(fmt.Sprintf("Waiting · Blinds %d/%d", s.SmallBlind, s.BigBlind))
	}

	parts := []string{fmt.Sprintf("Hand #%d", s.HandNumber)}
	switch {
	case s.Phase.Betting():
		parts = append(parts, s.Round.String())
	case s.Phase == engine.PhaseShowdown:
		parts = append(parts, "Showdown")
	default:
		parts = append(parts, "Complete")
	}
	parts = append(parts,
		fmt.Sprintf("Pot %d", s.Pot),
		fmt.Sprintf("Bet %d", s.CurrentBet),
		fmt.Sprintf("Blinds %d/%d", s.SmallBlind, s.BigBlind),
	)
	return r.styles.header.Render(strings.Join(parts, " · "))
}

// Seats renders one row per seat
func (r *Renderer) Seats(s engine.Snapshot) string {
	rows := make([][]string, 0, len(s.Players))
	for _, p := range s.Players {
		marker := ""
		if s.Phase.Betting() && p.ID == s.CurrentPlayerIndex {
			marker = "▶"
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(p.ID),
			p.Name,
			positionTag(p),
			strconv.Itoa(p.Chips),
			strconv.Itoa(p.Bet),
			strconv.Itoa(p.TotalBet),
			status(p),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.border).
		Headers("", "Seat", "Player", "Pos", "Chips", "Bet", "In Pot", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.cell.Bold(true)
			}
			if row < 0 || row >= len(s.Players) {
				return r.styles.cell
			}
			p := s.Players[row]
			switch {
			case s.Phase.Betting() && p.ID == s.CurrentPlayerIndex:
				return r.styles.turn
			case p.Folded:
				return r.styles.folded
			case p.AllIn:
				return r.styles.allIn
			default:
				return r.styles.cell
			}
		})
	return t.Render()
}

// Pots lists computed pots once they are fixed at showdown
func (r *Renderer) Pots(s engine.Snapshot) string {
	if len(s.Pots) == 0 {
		return ""
	}

	lines := make([]string, 0, len(s.Pots))
	for i, p := range s.Pots {
		label := "Main pot"
		if i > 0 {
			label = fmt.Sprintf("Side pot %d", i)
		}
		line := fmt.Sprintf("%s: %d %s", label, p.Amount, r.seatNames(s, p.Contenders))
		if i < len(s.Awarded) && s.Awarded[i] {
			lines = append(lines, r.styles.awarded.Render(line+" (awarded)"))
			continue
		}
		lines = append(lines, r.styles.pot.Render(line))
	}
	return strings.Join(lines, "\n")
}

// Log returns the trailing action log entries
func (r *Renderer) Log(s engine.Snapshot) string {
	if r.logLines <= 0 || len(s.Log) == 0 {
		return ""
	}

	entries := s.Log[max(0, len(s.Log)-r.logLines):]
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = r.styles.logEntry.Render(entry.String())
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) seatNames(s engine.Snapshot, seats []int) string {
	names := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat >= 0 && seat < len(s.Players) {
			names = append(names, s.Players[seat].Name)
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func positionTag(p ledger.Player) string {
	switch p.Position {
	case ledger.Dealer:
		return "D"
	case ledger.SmallBlind:
		return "SB"
	case ledger.BigBlind:
		return "BB"
	default:
		if p.IsDealer {
			return "D"
		}
		return ""
	}
}

func status(p ledger.Player) string {
	switch {
	case p.SittingOut:
		return "out"
	case p.Folded:
		return "folded"
	case p.AllIn:
		return "all-in"
	default:
		return ""
	}
}
