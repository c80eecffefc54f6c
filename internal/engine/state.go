package engine

// Round is one of the four betting rounds of a hand
type Round int

const (
	Preflop Round = iota
	Flop
	Turn
	River
)

func (r Round) String() string {
	switch r {
	case Preflop:
		return "Pre-flop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	default:
		return "Unknown"
	}
}

// Phase is the engine's position in the hand state machine
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseHandComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePreflop:
		return "preflop-active"
	case PhaseFlop:
		return "flop-active"
	case PhaseTurn:
		return "turn-active"
	case PhaseRiver:
		return "river-active"
	case PhaseShowdown:
		return "showdown"
	case PhaseHandComplete:
		return "hand-complete"
	default:
		return "unknown"
	}
}

// Betting returns true while a betting round is accepting actions
func (p Phase) Betting() bool {
	return p >= PhasePreflop && p <= PhaseRiver
}

func phaseForRound(r Round) Phase {
	return PhasePreflop + Phase(r)
}

// HandState is the state of one hand. A new one is built for every hand.
type HandState struct {
	ID            string `json:"id"`
	Number        int    `json:"number"`
	Phase         Phase  `json:"phase"`
	Round         Round  `json:"round"`
	CurrentBet    int    `json:"currentBet"`
	CurrentPlayer int    `json:"currentPlayerIndex"`
	LastAggressor int    `json:"lastAggressor"` // -1 when nobody has raised this round
	RoundStarted  bool   `json:"roundStarted"`
}

func newHandState(id string, number int) *HandState {
	return &HandState{
		ID:            id,
		Number:        number,
		Phase:         PhasePreflop,
		Round:         Preflop,
		CurrentPlayer: -1,
		LastAggressor: -1,
	}
}
