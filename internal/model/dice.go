package model

// Symbol is a die face
type Symbol string

const (
	SymbolAce   Symbol = "A"
	SymbolKing  Symbol = "K"
	SymbolQueen Symbol = "Q"
	SymbolJack  Symbol = "J"
	SymbolRed   Symbol = "R"
	SymbolBlack Symbol = "N" // three or more of these bust the turn

	// SymbolNone marks a die that has not been rolled this turn
	SymbolNone Symbol = "-"
)

// DiceCount is the number of dice in play
const DiceCount = 4

// Alphabet lists the faces of a die in scan order
var Alphabet = []Symbol{SymbolAce, SymbolKing, SymbolQueen, SymbolJack, SymbolRed, SymbolBlack}

// Valid reports whether s is a real face (not the placeholder)
func (s Symbol) Valid() bool {
	for _, a := range Alphabet {
		if s == a {
			return true
		}
	}
	return false
}

// DiceRoundState holds the per-turn dice state of a dice room
type DiceRoundState struct {
	Values       [DiceCount]Symbol
	Locked       [DiceCount]bool
	PendingTotal int
}

// NewDiceRoundState returns a cleared state for a fresh turn
func NewDiceRoundState() *DiceRoundState {
	d := &DiceRoundState{}
	d.Reset()
	return d
}

// Reset clears faces, locks and the pending total for the incoming player
func (d *DiceRoundState) Reset() {
	for i := range d.Values {
		d.Values[i] = SymbolNone
		d.Locked[i] = false
	}
	d.PendingTotal = 0
}

// UnlockAll releases every die, keeping faces and the pending total
func (d *DiceRoundState) UnlockAll() {
	for i := range d.Locked {
		d.Locked[i] = false
	}
}

// Available returns the indices of dice that are not locked
func (d *DiceRoundState) Available() []int {
	var out []int
	for i, locked := range d.Locked {
		if !locked {
			out = append(out, i)
		}
	}
	return out
}

// AllLocked reports whether every die is locked
func (d *DiceRoundState) AllLocked() bool {
	for _, locked := range d.Locked {
		if !locked {
			return false
		}
	}
	return true
}

// AnyLocked reports whether at least one die is locked
func (d *DiceRoundState) AnyLocked() bool {
	for _, locked := range d.Locked {
		if locked {
			return true
		}
	}
	return false
}

// DiceSnapshot is the serialisable view of the dice
type DiceSnapshot struct {
	Values       []Symbol `json:"values"`
	Locked       []bool   `json:"locked"`
	PendingTotal int      `json:"pendingTotal"`
}

// Snapshot returns a copy of the dice state
func (d *DiceRoundState) Snapshot() DiceSnapshot {
	return DiceSnapshot{
		Values:       append([]Symbol(nil), d.Values[:]...),
		Locked:       append([]bool(nil), d.Locked[:]...),
		PendingTotal: d.PendingTotal,
	}
}
