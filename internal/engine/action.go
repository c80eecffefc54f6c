package engine

import "fmt"

// ActionKind names an action for logs, events and valid-action queries
type ActionKind int

const (
	KindCheck ActionKind = iota
	KindCall
	KindRaise
	KindFold
)

func (k ActionKind) String() string {
	switch k {
	case KindCheck:
		return "check"
	case KindCall:
		return "call"
	case KindRaise:
		return "raise"
	case KindFold:
		return "fold"
	default:
		return "unknown"
	}
}

// ParseActionKind converts a lower-case action name to its kind
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "check":
		return KindCheck, nil
	case "call":
		return KindCall, nil
	case "raise":
		return KindRaise, nil
	case "fold":
		return KindFold, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is a player decision. The set is closed: only Check, Call, Raise
// and Fold implement it.
type Action interface {
	Kind() ActionKind
	String() string
	isAction()
}

// Check passes the action when nothing is owed
type Check struct{}

// Call matches the current bet, or puts the player all-in if they cannot
type Call struct{}

// Raise adds Amount chips on top of the player's bet this round
type Raise struct {
	Amount int
}

// Fold gives up the hand
type Fold struct{}

func (Check) Kind() ActionKind { return KindCheck }
func (Call) Kind() ActionKind  { return KindCall }
func (Raise) Kind() ActionKind { return KindRaise }
func (Fold) Kind() ActionKind  { return KindFold }

func (Check) String() string   { return "check" }
func (Call) String() string    { return "call" }
func (r Raise) String() string { return fmt.Sprintf("raise %d", r.Amount) }
func (Fold) String() string    { return "fold" }

func (Check) isAction() {}
func (Call) isAction()  {}
func (Raise) isAction() {}
func (Fold) isAction()  {}

// NewAction builds an action from its kind. amount is only used by raises.
func NewAction(kind ActionKind, amount int) (Action, error) {
	switch kind {
	case KindCheck:
		return Check{}, nil
	case KindCall:
		return Call{}, nil
	case KindRaise:
		return Raise{Amount: amount}, nil
	case KindFold:
		return Fold{}, nil
	}
	return nil, fmt.Errorf("unknown action kind %d", kind)
}

// ValidAction describes one action the player on turn may take.
// For calls Amount is the chips the call commits; for raises MinAmount and
// MaxAmount bound the extra chips.
type ValidAction struct {
	Kind      ActionKind `json:"kind"`
	Amount    int        `json:"amount,omitempty"`
	MinAmount int        `json:"minAmount,omitempty"`
	MaxAmount int        `json:"maxAmount,omitempty"`
}
