package engine

import (
	"errors"
	"fmt"

	"github.com/lox/holdembet/internal/ledger"
	"github.com/lox/holdembet/internal/showdown"
)

var (
	// ErrOutOfTurn is returned when a seat acts while another seat is on turn
	ErrOutOfTurn = errors.New("it is not your turn")

	// ErrIllegalCheck is returned when checking with an outstanding bet
	ErrIllegalCheck = errors.New("cannot check with an outstanding bet")

	// ErrIllegalRaise is returned when a raise does not exceed the current bet
	ErrIllegalRaise = errors.New("raise must exceed the current bet")

	// ErrHandAlreadyOver is returned for actions after betting has finished
	ErrHandAlreadyOver = errors.New("hand is already over")

	// ErrInvalidAction is returned for a nil action
	ErrInvalidAction = errors.New("invalid action")

	// ErrNoHandInProgress is returned before the first hand has started
	ErrNoHandInProgress = errors.New("no hand in progress")

	// ErrHandInProgress is returned when starting a hand before the last one completed
	ErrHandInProgress = errors.New("hand in progress")

	// ErrNotEnoughPlayers is returned when fewer than two seats have chips
	ErrNotEnoughPlayers = errors.New("at least two players with chips are required")

	// ErrNotShowdown is returned when applying winners outside of showdown
	ErrNotShowdown = errors.New("hand is not at showdown")

	// ErrUnknownPot is returned for a pot index that does not exist
	ErrUnknownPot = errors.New("unknown pot")

	// ErrPotAlreadyAwarded is returned when a pot is awarded twice
	ErrPotAlreadyAwarded = errors.New("pot already awarded")

	// ErrInvalidSnapshot is returned when a snapshot cannot be restored
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInsufficientChips indicates the ledger refused a commit
	ErrInsufficientChips = ledger.ErrInsufficientChips

	// ErrNoEligibleWinner is returned when a winner set has no contender
	ErrNoEligibleWinner = showdown.ErrNoEligibleWinner
)

// ActionError is returned when a player action is rejected
type ActionError struct {
	Seat   int
	Action Action
	Err    error
}

func (e *ActionError) Error() string {
	name := "<nil>"
	if e.Action != nil {
		name = e.Action.String()
	}
	return fmt.Sprintf("seat %d %s: %v", e.Seat, name, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
