// Package protocol defines the websocket wire format: typed commands decoded
// from client frames and the envelope events are encoded into.
package protocol

import "github.com/mcoot/tresmil/internal/model"

// CommandType identifies an inbound command
type CommandType string

const (
	// Room lifecycle, either variant
	CmdCreateRoom CommandType = "create-room"
	CmdJoinRoom   CommandType = "join-room"
	CmdStartGame  CommandType = "start-game"
	CmdLeaveRoom  CommandType = "leave-room"

	// Simple variant
	CmdIncreaseScore CommandType = "increase-score"
	CmdDecreaseScore CommandType = "decrease-score"
	CmdBankrupt      CommandType = "bankrupt"
	CmdFinishTurn    CommandType = "finish-turn"

	// Dice variant
	CmdRequestDiceRoll CommandType = "request-dice-roll"
	CmdDiceFinishTurn  CommandType = "dice-finish-turn"
	CmdDiceBankrupt    CommandType = "dice-bankrupt"
	CmdDiceResetDice   CommandType = "dice-reset-dice"

	// Read-only queries, no room required
	CmdGetGameHistory CommandType = "get-game-history"
	CmdGetPlayerStats CommandType = "get-player-stats"
)

// HistoryRequestLimit is the number of games a get-game-history query returns
const HistoryRequestLimit = 20

// Command is a decoded, validated client command
type Command interface {
	Type() CommandType
	Variant() model.Variant
}

// scope carries the variant every command is addressed to
type scope struct {
	variant model.Variant
}

func (s scope) Variant() model.Variant { return s.variant }

// CreateRoom opens a new room with the sender as creator
type CreateRoom struct {
	scope
	PlayerName string
	MaxPlayers int
}

func (CreateRoom) Type() CommandType { return CmdCreateRoom }

// JoinRoom takes a seat in an existing room
type JoinRoom struct {
	scope
	PlayerName string
	RoomCode   model.RoomCode
}

func (JoinRoom) Type() CommandType { return CmdJoinRoom }

// StartGame moves the sender's room into play
type StartGame struct{ scope }

func (StartGame) Type() CommandType { return CmdStartGame }

// LeaveRoom vacates the sender's seat
type LeaveRoom struct{ scope }

func (LeaveRoom) Type() CommandType { return CmdLeaveRoom }

// AdjustScore moves the simple-variant pending score up or down
type AdjustScore struct {
	scope
	Increase bool
}

func (c AdjustScore) Type() CommandType {
	if c.Increase {
		return CmdIncreaseScore
	}
	return CmdDecreaseScore
}

// Bankrupt wipes the sender's scores and passes the turn
type Bankrupt struct{ scope }

func (c Bankrupt) Type() CommandType {
	if c.variant == model.VariantDice {
		return CmdDiceBankrupt
	}
	return CmdBankrupt
}

// FinishTurn banks the sender's pending score and passes the turn
type FinishTurn struct{ scope }

func (c FinishTurn) Type() CommandType {
	if c.variant == model.VariantDice {
		return CmdDiceFinishTurn
	}
	return CmdFinishTurn
}

// RequestDiceRoll rolls every unlocked die
type RequestDiceRoll struct{ scope }

func (RequestDiceRoll) Type() CommandType { return CmdRequestDiceRoll }

// ResetDice unlocks every die without ending the turn
type ResetDice struct{ scope }

func (ResetDice) Type() CommandType { return CmdDiceResetDice }

// GetGameHistory asks for the most recent finished games
type GetGameHistory struct {
	scope
	Limit int
}

func (GetGameHistory) Type() CommandType { return CmdGetGameHistory }

// GetPlayerStats asks for the player leaderboard
type GetPlayerStats struct{ scope }

func (GetPlayerStats) Type() CommandType { return CmdGetPlayerStats }

// IsQuery reports whether a command only reads history and never touches rooms
func IsQuery(cmd Command) bool {
	switch cmd.(type) {
	case GetGameHistory, GetPlayerStats:
		return true
	}
	return false
}

// NewCreateRoom builds a CreateRoom command
func NewCreateRoom(variant model.Variant, name string, maxPlayers int) CreateRoom {
	return CreateRoom{scope: scope{variant}, PlayerName: name, MaxPlayers: maxPlayers}
}

// NewJoinRoom builds a JoinRoom command
func NewJoinRoom(variant model.Variant, name string, code model.RoomCode) JoinRoom {
	return JoinRoom{scope: scope{variant}, PlayerName: name, RoomCode: code}
}

// NewStartGame builds a StartGame command
func NewStartGame(variant model.Variant) StartGame { return StartGame{scope{variant}} }

// NewLeaveRoom builds a LeaveRoom command
func NewLeaveRoom(variant model.Variant) LeaveRoom { return LeaveRoom{scope{variant}} }

// NewAdjustScore builds a simple-variant score adjustment
func NewAdjustScore(increase bool) AdjustScore {
	return AdjustScore{scope: scope{model.VariantSimple}, Increase: increase}
}

// NewBankrupt builds a Bankrupt command
func NewBankrupt(variant model.Variant) Bankrupt { return Bankrupt{scope{variant}} }

// NewFinishTurn builds a FinishTurn command
func NewFinishTurn(variant model.Variant) FinishTurn { return FinishTurn{scope{variant}} }

// NewRequestDiceRoll builds a RequestDiceRoll command
func NewRequestDiceRoll() RequestDiceRoll { return RequestDiceRoll{scope{model.VariantDice}} }

// NewResetDice builds a ResetDice command
func NewResetDice() ResetDice { return ResetDice{scope{model.VariantDice}} }
