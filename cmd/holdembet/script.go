package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lox/holdembet/internal/engine"
)

type stepKind int

const (
	stepNext stepKind = iota
	stepAction
	stepWinners
)

// step is one line of a play script:
//
//	next                      start the next hand
//	<seat> check|call|fold
//	<seat> raise <chips>
//	winners <pot> <seat>...
//
// Seats are indexes or player names. Blank lines and # comments are ignored.
type step struct {
	line    int
	text    string
	kind    stepKind
	seat    int
	action  engine.Action
	pot     int
	winners []int
}

func parseScript(r io.Reader, names []string) ([]step, error) {
	var steps []step
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		s, err := parseStep(fields, names)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.line = line
		s.text = strings.Join(fields, " ")
		steps = append(steps, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func parseStep(fields []string, names []string) (step, error) {
	switch strings.ToLower(fields[0]) {
	case "next":
		if len(fields) != 1 {
			return step{}, fmt.Errorf("next takes no arguments")
		}
		return step{kind: stepNext}, nil
	case "winners":
		if len(fields) < 3 {
			return step{}, fmt.Errorf("usage: winners <pot> <seat>...")
		}
		pot, err := strconv.Atoi(fields[1])
		if err != nil {
			return step{}, fmt.Errorf("invalid pot %q", fields[1])
		}
		s := step{kind: stepWinners, pot: pot}
		for _, f := range fields[2:] {
			seat, err := parseSeat(f, names)
			if err != nil {
				return step{}, err
			}
			s.winners = append(s.winners, seat)
		}
		return s, nil
	}

	if len(fields) < 2 {
		return step{}, fmt.Errorf("usage: <seat> check|call|fold|raise <chips>")
	}
	seat, err := parseSeat(fields[0], names)
	if err != nil {
		return step{}, err
	}

	verb := strings.ToLower(fields[1])
	name := verb
	if name == "bet" {
		name = "raise"
	}
	kind, err := engine.ParseActionKind(name)
	if err != nil {
		return step{}, err
	}

	amount := 0
	if kind == engine.KindRaise {
		if len(fields) != 3 {
			return step{}, fmt.Errorf("%s needs an amount", verb)
		}
		if amount, err = strconv.Atoi(fields[2]); err != nil {
			return step{}, fmt.Errorf("invalid amount %q", fields[2])
		}
	} else if len(fields) != 2 {
		return step{}, fmt.Errorf("%s takes no amount", verb)
	}

	action, err := engine.NewAction(kind, amount)
	if err != nil {
		return step{}, err
	}
	return step{kind: stepAction, seat: seat, action: action}, nil
}

func parseSeat(field string, names []string) (int, error) {
	if seat, err := strconv.Atoi(field); err == nil {
		if seat < 0 || seat >= len(names) {
			return 0, fmt.Errorf("seat %d out of range", seat)
		}
		return seat, nil
	}
	for i, name := range names {
		if strings.EqualFold(name, field) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown seat %q", field)
}
