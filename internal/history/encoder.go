package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdembet/internal/engine"
)

// Encode writes the hand history to w in PHH TOML format
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return errors.New("history: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// FormatAction converts an engine action to a PHH action string for the
// player at PHH index idx. totalBet is the player's bet for the round after
// the action; raised reports whether it lifted the current bet.
func FormatAction(idx int, action engine.Action, totalBet int, raised bool) string {
	player := fmt.Sprintf("p%d", idx+1)
	switch action.(type) {
	case engine.Fold:
		return player + " f"
	case engine.Raise:
		if raised {
			return fmt.Sprintf("%s cbr %d", player, totalBet)
		}
		// All-in for less than the current bet
		return player + " cc"
	default:
		return player + " cc"
	}
}

// boardAction is the dealer action opening a street. Cards are unknown.
func boardAction(round engine.Round) string {
	switch round {
	case engine.Flop:
		return "d db ??????"
	case engine.Turn, engine.River:
		return "d db ??"
	default:
		return ""
	}
}

// WriteSections writes hands as a PHHS collection, numbering sections from
// first.
func WriteSections(w io.Writer, first int, hands []*HandHistory) error {
	for i, hand := range hands {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%d]\n", first+i); err != nil {
			return err
		}
		if err := Encode(w, hand); err != nil {
			return err
		}
	}
	return nil
}

// AppendFile appends hands to a PHHS file, continuing its section numbering
func AppendFile(path string, hands []*HandHistory) error {
	if len(hands) == 0 {
		return nil
	}

	last, err := readLastSectionCounter(path)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if last > 0 {
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	if err := WriteSections(w, last+1, hands); err != nil {
		return err
	}
	return w.Flush()
}

// LoadFile reads every hand from a PHHS file in section order
func LoadFile(path string) ([]*HandHistory, error) {
	sections := map[string]*HandHistory{}
	if _, err := toml.DecodeFile(path, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode hand history: %w", err)
	}

	keys := make([]int, 0, len(sections))
	for key := range sections {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid hand history section %q", key)
		}
		keys = append(keys, n)
	}
	slices.Sort(keys)

	hands := make([]*HandHistory, 0, len(keys))
	for _, n := range keys {
		hands = append(hands, sections[strconv.Itoa(n)])
	}
	return hands, nil
}

func readLastSectionCounter(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	last := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) >= 3 && line[0] == '[' && line[len(line)-1] == ']' {
			if n, err := strconv.Atoi(line[1 : len(line)-1]); err == nil && n > last {
				last = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return last, nil
}
