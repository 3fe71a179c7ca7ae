package model

import "time"

// RoomCode is the short human-readable identifier players use to join
type RoomCode string

// Variant selects the rule-set a room plays
type Variant string

const (
	VariantSimple Variant = "simple" // pending score adjusted by +/-50
	VariantDice   Variant = "dice"   // four dice, server-side rolls
)

// Variants lists every supported variant
var Variants = []Variant{VariantSimple, VariantDice}

// Valid reports whether v is a known variant
func (v Variant) Valid() bool {
	return v == VariantSimple || v == VariantDice
}

// GameMode returns the persisted game mode for the variant
func (v Variant) GameMode() GameMode {
	if v == VariantDice {
		return GameModeDice
	}
	return GameModeStandard
}

// RoomState represents the lifecycle phase of a room
type RoomState string

const (
	RoomStateWaiting    RoomState = "waiting"     // created, not started
	RoomStateInProgress RoomState = "in_progress" // started, no winner yet
	RoomStateFinished   RoomState = "finished"    // winner declared, teardown scheduled
)

// DefaultMaxPlayers applies when a create request does not name a capacity
const DefaultMaxPlayers = 8

// WinningScore is the total a player must reach to become a win candidate
const WinningScore = 3000

// Room is one game session
type Room struct {
	Code        RoomCode
	Variant     Variant
	CreatorID   ConnID
	Players     []*Player // join order is turn order
	CurrentTurn int
	Round       int
	Started     bool
	State       RoomState
	MaxPlayers  int

	// Dice is nil for simple rooms
	Dice *DiceRoundState

	// Generation invalidates scheduled continuations; bumped on every
	// change that makes a pending roll or unlock stale.
	Generation   uint64
	RollInFlight bool

	CreatedAt time.Time
}

// NewRoom creates a waiting room with its creator seated at index 0
func NewRoom(code RoomCode, variant Variant, creator *Player, maxPlayers int, now time.Time) *Room {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	r := &Room{
		Code:       code,
		Variant:    variant,
		CreatorID:  creator.ConnID,
		Players:    []*Player{creator},
		Round:      1,
		State:      RoomStateWaiting,
		MaxPlayers: maxPlayers,
		CreatedAt:  now,
	}
	if variant == VariantDice {
		r.Dice = NewDiceRoundState()
	}
	return r
}

// ActivePlayer returns the player holding the turn, or nil if the room is empty
func (r *Room) ActivePlayer() *Player {
	if len(r.Players) == 0 || r.CurrentTurn < 0 || r.CurrentTurn >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentTurn]
}

// PlayerIndex returns the seat of the connection, or -1
func (r *Room) PlayerIndex(conn ConnID) int {
	for i, p := range r.Players {
		if p.ConnID == conn {
			return i
		}
	}
	return -1
}

// IsFull returns true if no more players can join
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// IsCreator reports whether conn created (or inherited) the room
func (r *Room) IsCreator(conn ConnID) bool {
	return r.CreatorID == conn
}

// ConnIDs returns the connection of every seated player in turn order
func (r *Room) ConnIDs() []ConnID {
	out := make([]ConnID, len(r.Players))
	for i, p := range r.Players {
		out[i] = p.ConnID
	}
	return out
}

// BumpGeneration invalidates any continuation scheduled against the current state.
func (r *Room) BumpGeneration() uint64 {
	r.Generation++
	return r.Generation
}
