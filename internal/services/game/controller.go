package game

import (
	"log/slog"

	"github.com/mcoot/tresmil/internal/dependencies/clock"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/services/scoring"
)

// ScoreStep is the amount a simple-variant adjustment moves the pending score
const ScoreStep = 50

// Controller is the turn/room state machine. It is the only code that mutates
// rooms, players and dice state. It never talks to connections: every
// operation returns what happened and the caller decides what to broadcast.
//
// A Controller is not safe for concurrent use on the same room.
type Controller struct {
	clock  clock.Clock
	logger *slog.Logger
}

// NewController creates a new game Controller
func NewController(clock clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		clock:  clock,
		logger: logger,
	}
}

// TurnOutcome describes a turn advance
type TurnOutcome struct {
	PreviousTurn int
	CurrentTurn  int
	Wrapped      bool // the pointer returned to seat 0 and the victory check ran

	// Set when the victory check found a winner; the room is now finished
	Winner *model.Player
	Record *model.GameRecord
}

// Won reports whether the advance ended the game
func (o TurnOutcome) Won() bool {
	return o.Winner != nil
}

// RollOutcome describes an evaluated roll
type RollOutcome struct {
	PlayerIndex  int
	Result       scoring.Result
	PendingTotal int

	// Set when the roll busted or failed to score
	Turn *TurnOutcome
}

// RemovalOutcome describes a player leaving a room
type RemovalOutcome struct {
	Removed       bool
	Index         int
	Empty         bool          // last player left; the room should be deleted
	NewCreator    *model.ConnID // set when the creator left and the role moved
	TurnReset     bool          // pointer was out of range and reset to 0
	ActiveChanged bool          // a different player now holds the turn
}

// CheckPlayable returns an error unless turn commands are accepted
func (c *Controller) CheckPlayable(room *model.Room) error {
	switch room.State {
	case model.RoomStateWaiting:
		return model.ErrGameNotStarted
	case model.RoomStateFinished:
		return model.ErrGameFinished
	}
	return nil
}

// RequireTurn returns ErrNotYourTurn unless conn holds the active seat
func (c *Controller) RequireTurn(room *model.Room, conn model.ConnID) error {
	if err := c.CheckPlayable(room); err != nil {
		return err
	}
	active := room.ActivePlayer()
	if active == nil || active.ConnID != conn {
		return model.ErrNotYourTurn
	}
	return nil
}

// Start moves a waiting room into play
func (c *Controller) Start(room *model.Room, conn model.ConnID) error {
	if !room.IsCreator(conn) {
		return model.ErrNotCreator
	}
	if room.Started || room.State != model.RoomStateWaiting {
		return model.ErrGameAlreadyStarted
	}

	room.Started = true
	room.State = model.RoomStateInProgress
	room.CurrentTurn = 0
	room.Round = 1
	if room.Variant == model.VariantDice {
		room.Dice = model.NewDiceRoundState()
	}
	room.BumpGeneration()

	c.logger.Info("game started",
		slog.String("room", string(room.Code)),
		slog.String("variant", string(room.Variant)),
		slog.Int("player_count", len(room.Players)),
	)
	return nil
}

// AdjustScore moves the active player's pending score by delta
func (c *Controller) AdjustScore(room *model.Room, delta int) *model.Player {
	player := room.ActivePlayer()
	player.CurrentRoundScore += delta
	return player
}

// Bankrupt wipes the active player's scores and passes the turn
func (c *Controller) Bankrupt(room *model.Room) TurnOutcome {
	player := room.ActivePlayer()
	player.ResetScores()
	if room.Dice != nil {
		room.Dice.PendingTotal = 0
	}

	c.logger.Info("player bankrupt",
		slog.String("room", string(room.Code)),
		slog.String("player", player.Name),
	)
	return c.advanceTurn(room)
}

// FinishTurn banks the simple-variant pending score, whatever its sign, and passes the turn
func (c *Controller) FinishTurn(room *model.Room) TurnOutcome {
	player := room.ActivePlayer()
	player.Bank(player.CurrentRoundScore)
	return c.advanceTurn(room)
}

// FinishDiceTurn banks the dice pending total if positive and passes the turn.
// It returns the amount banked.
func (c *Controller) FinishDiceTurn(room *model.Room) (int, TurnOutcome) {
	player := room.ActivePlayer()
	banked := room.Dice.PendingTotal
	if banked > 0 {
		player.Bank(banked)
	} else {
		player.CurrentRoundScore = 0
		banked = 0
	}
	return banked, c.advanceTurn(room)
}

// BeginRoll marks a roll as in flight and returns the dice that will be rolled.
// The returned generation identifies the roll for its continuations.
func (c *Controller) BeginRoll(room *model.Room) ([]int, uint64, error) {
	if room.RollInFlight {
		return nil, 0, model.ErrRollInProgress
	}
	available := room.Dice.Available()
	if len(available) == 0 {
		return nil, 0, model.ErrNoDiceAvailable
	}
	room.RollInFlight = true
	return available, room.BumpGeneration(), nil
}

// RevealRoll stores the final faces of an in-flight roll
func (c *Controller) RevealRoll(room *model.Room, results []model.RolledDie) {
	for _, d := range results {
		if d.Index >= 0 && d.Index < model.DiceCount {
			room.Dice.Values[d.Index] = d.Value
		}
	}
}

// ApplyRoll evaluates an in-flight roll against the current lock vector and applies it
func (c *Controller) ApplyRoll(room *model.Room, results []model.RolledDie) RollOutcome {
	room.RollInFlight = false
	dice := room.Dice
	player := room.ActivePlayer()

	result := scoring.Evaluate(results, dice.Locked)
	outcome := RollOutcome{
		PlayerIndex: room.CurrentTurn,
		Result:      result,
	}

	switch {
	case result.Empty:
		outcome.PendingTotal = dice.PendingTotal
		return outcome
	case result.Busted:
		player.ResetScores()
		dice.PendingTotal = 0
		turn := c.advanceTurn(room)
		outcome.Turn = &turn
	case !result.Scored:
		dice.PendingTotal = 0
		player.CurrentRoundScore = 0
		turn := c.advanceTurn(room)
		outcome.Turn = &turn
	default:
		dice.Locked = result.Locked
		dice.PendingTotal += result.Points
		player.CurrentRoundScore = dice.PendingTotal
		outcome.PendingTotal = dice.PendingTotal
	}

	c.logger.Debug("roll applied",
		slog.String("room", string(room.Code)),
		slog.Int("points", result.Points),
		slog.Bool("busted", result.Busted),
		slog.Int("pending_total", outcome.PendingTotal),
	)
	return outcome
}

// UnlockAll grants the bonus re-roll after every die locked. The pending total is kept.
func (c *Controller) UnlockAll(room *model.Room) {
	room.Dice.UnlockAll()
	room.BumpGeneration()
}

// ResetDice unlocks every die at the active player's request, keeping the
// pending total and the visible faces. Returns false when nothing was locked.
func (c *Controller) ResetDice(room *model.Room) (bool, error) {
	if room.RollInFlight {
		return false, model.ErrRollInProgress
	}
	if !room.Dice.AnyLocked() {
		return false, nil
	}
	room.Dice.UnlockAll()
	room.BumpGeneration()
	return true, nil
}

// RemovePlayer vacates conn's seat. Remaining players keep their relative order.
// An out-of-range turn pointer is reset to seat 0.
func (c *Controller) RemovePlayer(room *model.Room, conn model.ConnID) RemovalOutcome {
	idx := room.PlayerIndex(conn)
	if idx < 0 {
		return RemovalOutcome{Index: -1}
	}
	previousActive := room.ActivePlayer()
	wasCreator := room.IsCreator(conn)

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	outcome := RemovalOutcome{Removed: true, Index: idx}

	if len(room.Players) == 0 {
		outcome.Empty = true
		room.BumpGeneration()
		return outcome
	}

	if wasCreator {
		room.CreatorID = room.Players[0].ConnID
		newCreator := room.CreatorID
		outcome.NewCreator = &newCreator
	}

	if room.Started && room.CurrentTurn >= len(room.Players) {
		room.CurrentTurn = 0
		outcome.TurnReset = true
	}

	if room.State == model.RoomStateInProgress && room.ActivePlayer() != previousActive {
		outcome.ActiveChanged = true
		room.RollInFlight = false
		if room.Dice != nil {
			room.Dice.Reset()
			room.ActivePlayer().CurrentRoundScore = 0
		}
		room.BumpGeneration()
	}

	c.logger.Info("player removed",
		slog.String("room", string(room.Code)),
		slog.String("conn", string(conn)),
		slog.Int("remaining", len(room.Players)),
	)
	return outcome
}

// advanceTurn passes the turn to the next seat and runs the victory check on wrap
func (c *Controller) advanceTurn(room *model.Room) TurnOutcome {
	outcome := TurnOutcome{PreviousTurn: room.CurrentTurn}

	room.RollInFlight = false
	room.BumpGeneration()
	room.CurrentTurn = (room.CurrentTurn + 1) % len(room.Players)
	outcome.CurrentTurn = room.CurrentTurn

	if room.Dice != nil {
		room.Dice.Reset()
		room.ActivePlayer().CurrentRoundScore = 0
	}

	if room.CurrentTurn != 0 {
		return outcome
	}

	outcome.Wrapped = true
	if winner := findWinner(room.Players); winner != nil {
		room.State = model.RoomStateFinished
		outcome.Winner = winner
		outcome.Record = c.buildRecord(room, winner)
		c.logger.Info("game won",
			slog.String("room", string(room.Code)),
			slog.String("winner", winner.Name),
			slog.Int("score", winner.TotalScore),
			slog.Int("rounds", room.Round),
		)
		return outcome
	}

	room.Round++
	return outcome
}

// findWinner returns the highest total at or above the winning score.
// Ties go to the earliest seat.
func findWinner(players []*model.Player) *model.Player {
	var winner *model.Player
	for _, p := range players {
		if p.TotalScore < model.WinningScore {
			continue
		}
		if winner == nil || p.TotalScore > winner.TotalScore {
			winner = p
		}
	}
	return winner
}

func (c *Controller) buildRecord(room *model.Room, winner *model.Player) *model.GameRecord {
	return &model.GameRecord{
		RoomCode:  room.Code,
		Players:   model.Snapshots(room.Players),
		Winner:    winner.Snapshot(),
		Rounds:    room.Round,
		Timestamp: c.clock.Now().UnixMilli(),
		GameMode:  room.Variant.GameMode(),
	}
}
