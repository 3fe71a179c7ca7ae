package model

// GameMode is the persisted name of a variant
type GameMode string

const (
	GameModeStandard GameMode = "standard"
	GameModeDice     GameMode = "dados"
)

// GameRecord is a finished game as handed to persistence
type GameRecord struct {
	ID        string           `json:"id"`
	RoomCode  RoomCode         `json:"roomCode"`
	Players   []PlayerSnapshot `json:"players"`
	Winner    PlayerSnapshot   `json:"winner"`
	Rounds    int              `json:"rounds"`
	Timestamp int64            `json:"timestamp"` // unix millis
	GameMode  GameMode         `json:"gameMode"`
}

// ModeStats aggregates a player's results for one game mode
type ModeStats struct {
	Games      int `json:"games"`
	Wins       int `json:"wins"`
	TotalScore int `json:"totalScore"`
}

// PlayerStats aggregates a player's results across finished games.
// Players are identified by name only.
type PlayerStats struct {
	Name         string                 `json:"name"`
	TotalGames   int                    `json:"totalGames"`
	Wins         int                    `json:"wins"`
	TotalScore   int                    `json:"totalScore"`
	HighestScore int                    `json:"highestScore"`
	LowestScore  int                    `json:"lowestScore"` // lowest positive score, 0 if none
	GamesPlayed  []string               `json:"gamesPlayed"`
	GameTypes    map[GameMode]ModeStats `json:"gameTypes,omitempty"`

	// Derived on read
	DiceGames      int `json:"dadosGames"`
	DiceWins       int `json:"dadosWins"`
	DiceTotalScore int `json:"dadosTotalScore"`
}

// DeriveDiceTotals fills the dice fields from GameTypes
func (s *PlayerStats) DeriveDiceTotals() {
	d := s.GameTypes[GameModeDice]
	s.DiceGames = d.Games
	s.DiceWins = d.Wins
	s.DiceTotalScore = d.TotalScore
}
