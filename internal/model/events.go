package model

// EventType identifies an outbound event
type EventType string

const (
	// Room events
	EventRoomCreated  EventType = "room-created"
	EventRoomJoined   EventType = "room-joined"
	EventPlayerJoined EventType = "player-joined"
	EventPlayerLeft   EventType = "player-left"
	EventRoomLeft     EventType = "room-left"
	EventGameStarted  EventType = "game-started"

	// Turn events
	EventTurnChanged    EventType = "turn-changed"
	EventScoreUpdated   EventType = "score-updated"
	EventPlayerBankrupt EventType = "player-bankrupt"
	EventGameWon        EventType = "game-won"

	// Dice events
	EventRollAnimationStart EventType = "roll-animation-start"
	EventRollReveal         EventType = "roll-reveal"
	EventRollResult         EventType = "roll-result"
	EventAllDiceScored      EventType = "all-dice-scored"
	EventDiceReset          EventType = "dice-reset"

	// History events, answered to the requester only
	EventGameHistory EventType = "game-history"
	EventPlayerStats EventType = "player-stats"

	EventError EventType = "error"
)

// Event is a state delta addressed to a room or a single connection
type Event struct {
	Type     EventType
	Variant  Variant
	RoomCode RoomCode
	Payload  any
}

// RoomCreatedPayload is sent to the creator
type RoomCreatedPayload struct {
	RoomCode   RoomCode         `json:"roomCode"`
	Player     PlayerSnapshot   `json:"player"`
	Players    []PlayerSnapshot `json:"players"`
	MaxPlayers int              `json:"maxPlayers"`
	IsCreator  bool             `json:"isCreator"`
}

// RoomJoinedPayload is sent to the joiner
type RoomJoinedPayload struct {
	RoomCode  RoomCode         `json:"roomCode"`
	Player    PlayerSnapshot   `json:"player"`
	Players   []PlayerSnapshot `json:"players"`
	CreatorID ConnID           `json:"creatorId"`
	IsCreator bool             `json:"isCreator"`
}

// PlayerJoinedPayload is broadcast when a seat is taken
type PlayerJoinedPayload struct {
	Player  PlayerSnapshot   `json:"player"`
	Players []PlayerSnapshot `json:"players"`
}

// PlayerLeftPayload is broadcast when a seat is vacated
type PlayerLeftPayload struct {
	PlayerID   ConnID           `json:"playerId"`
	Players    []PlayerSnapshot `json:"players"`
	NewCreator *ConnID          `json:"newCreator"`
}

// RoomLeftPayload confirms an explicit leave to the leaver
type RoomLeftPayload struct {
	RoomCode RoomCode `json:"roomCode"`
}

// TurnPayload describes whose turn it is; used by game-started and turn-changed
type TurnPayload struct {
	CurrentPlayerIndex int              `json:"currentPlayerIndex"`
	CurrentPlayer      PlayerSnapshot   `json:"currentPlayer"`
	Round              int              `json:"round"`
	Players            []PlayerSnapshot `json:"players"`
	Dice               *DiceSnapshot    `json:"dice,omitempty"`
}

// ScoreUpdatedPayload reports the active player's pending score
type ScoreUpdatedPayload struct {
	PlayerIndex       int              `json:"playerIndex"`
	CurrentRoundScore int              `json:"currentRoundScore"`
	Players           []PlayerSnapshot `json:"players"`
	ResetTotal        bool             `json:"resetTotal"`
}

// PlayerBankruptPayload reports a bankruptcy, voluntary or by bust
type PlayerBankruptPayload struct {
	PlayerIndex int              `json:"playerIndex"`
	Players     []PlayerSnapshot `json:"players"`
}

// GameWonPayload announces the winner
type GameWonPayload struct {
	Winner  PlayerSnapshot   `json:"winner"`
	Players []PlayerSnapshot `json:"players"`
	Rounds  int              `json:"rounds"`
}

// DieAnimation is the frame sequence a client plays for one die
type DieAnimation struct {
	Index  int      `json:"index"`
	Frames []Symbol `json:"frames"`
}

// RolledDie is the final face of one rolled die
type RolledDie struct {
	Index int    `json:"index"`
	Value Symbol `json:"value"`
}

// RollAnimationPayload starts the client-side roll animation
type RollAnimationPayload struct {
	PlayerIndex int            `json:"playerIndex"`
	PlayerName  string         `json:"playerName"`
	Animations  []DieAnimation `json:"animations"`
}

// RollRevealPayload carries the final faces
type RollRevealPayload struct {
	Results []RolledDie  `json:"results"`
	Dice    DiceSnapshot `json:"dice"`
}

// ScoringKind distinguishes triples from single dice
type ScoringKind string

const (
	ScoringCombination ScoringKind = "combination"
	ScoringIndividual  ScoringKind = "individual"
)

// ScoringDie is one die that contributed points
type ScoringDie struct {
	Index  int         `json:"index"`
	Points int         `json:"points"`
	Kind   ScoringKind `json:"kind"`
}

// RollResultPayload is the outcome of an evaluated roll
type RollResultPayload struct {
	Points       int          `json:"points"`
	ScoringDice  []ScoringDie `json:"scoringDice"`
	Locked       []bool       `json:"locked"`
	Busted       bool         `json:"busted"`
	Scored       bool         `json:"scored"`
	AllLocked    bool         `json:"allLocked"`
	PendingTotal int          `json:"pendingTotal"`
	Message      string       `json:"message"`
}

// DiceResetPayload reports dice that were unlocked
type DiceResetPayload struct {
	Reason string       `json:"reason"` // "bonus" or "manual"
	Dice   DiceSnapshot `json:"dice"`
}

// AllDiceScoredPayload reports that every die locked in the same turn
type AllDiceScoredPayload struct {
	PendingTotal int `json:"pendingTotal"`
}

// ErrorPayload is sent to the offending connection only
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
