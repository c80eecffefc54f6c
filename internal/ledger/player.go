package ledger

// Position is the seat's role for the current hand. It is derived from the
// dealer button at the start of every round and never stored as input.
type Position int

const (
	Other Position = iota
	Dealer
	SmallBlind
	BigBlind
)

func (p Position) String() string {
	switch p {
	case Dealer:
		return "Dealer"
	case SmallBlind:
		return "Small Blind"
	case BigBlind:
		return "Big Blind"
	default:
		return "Other"
	}
}

// Player represents one seat at the table
type Player struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Chips      int      `json:"chips"`
	Bet        int      `json:"bet"`      // Committed this betting round
	TotalBet   int      `json:"totalBet"` // Committed this hand
	Folded     bool     `json:"folded"`
	AllIn      bool     `json:"allIn"`
	Acted      bool     `json:"acted"`
	IsDealer   bool     `json:"isDealer"`
	SittingOut bool     `json:"sittingOut"`
	Position   Position `json:"position"`
}

// InHand returns true if the player has not folded
func (p *Player) InHand() bool {
	return !p.Folded
}

// CanAct returns true if the player still has decisions to make this hand
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}
