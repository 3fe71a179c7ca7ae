package game

import (
	"testing"

	"github.com/mcoot/tresmil/internal/dependencies/mocks"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type ControllerSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	controller *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(testutil.Epoch)
	s.controller = NewController(s.clock, testutil.NopLogger())
}

func (s *ControllerSuite) startedRoom(variant model.Variant, n int) *model.Room {
	room := testutil.NewRoom(variant, n)
	s.Require().NoError(s.controller.Start(room, testutil.ConnID(0)))
	return room
}

func rolled(faces string) []model.RolledDie {
	var out []model.RolledDie
	for i, r := range faces {
		if r == '.' {
			continue
		}
		out = append(out, model.RolledDie{Index: i, Value: model.Symbol(string(r))})
	}
	return out
}

func (s *ControllerSuite) assertConsistent(room *model.Room) {
	if len(room.Players) > 0 {
		s.GreaterOrEqual(room.CurrentTurn, 0)
		s.Less(room.CurrentTurn, len(room.Players))
	}
	for _, p := range room.Players {
		sum := 0
		for _, v := range p.Scores {
			sum += v
		}
		s.Equal(sum, p.TotalScore, "total must equal banked sum for %s", p.Name)
	}
}

// Start tests

func (s *ControllerSuite) TestStartByCreator() {
	room := testutil.NewRoom(model.VariantDice, 2)
	gen := room.Generation

	err := s.controller.Start(room, testutil.ConnID(0))
	s.Require().NoError(err)

	s.True(room.Started)
	s.Equal(model.RoomStateInProgress, room.State)
	s.Equal(0, room.CurrentTurn)
	s.Equal(1, room.Round)
	s.NotNil(room.Dice)
	s.Greater(room.Generation, gen)
}

func (s *ControllerSuite) TestStartByNonCreatorFails() {
	room := testutil.NewRoom(model.VariantSimple, 2)
	err := s.controller.Start(room, testutil.ConnID(1))
	s.ErrorIs(err, model.ErrNotCreator)
	s.False(room.Started)
}

func (s *ControllerSuite) TestStartTwiceFails() {
	room := s.startedRoom(model.VariantSimple, 2)
	err := s.controller.Start(room, testutil.ConnID(0))
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *ControllerSuite) TestStartWithSinglePlayerAllowed() {
	room := testutil.NewRoom(model.VariantSimple, 1)
	s.NoError(s.controller.Start(room, testutil.ConnID(0)))
}

// Authorization tests

func (s *ControllerSuite) TestRequireTurn() {
	room := testutil.NewRoom(model.VariantSimple, 2)
	s.ErrorIs(s.controller.RequireTurn(room, testutil.ConnID(0)), model.ErrGameNotStarted)

	s.Require().NoError(s.controller.Start(room, testutil.ConnID(0)))
	s.NoError(s.controller.RequireTurn(room, testutil.ConnID(0)))
	s.ErrorIs(s.controller.RequireTurn(room, testutil.ConnID(1)), model.ErrNotYourTurn)

	room.State = model.RoomStateFinished
	s.ErrorIs(s.controller.RequireTurn(room, testutil.ConnID(0)), model.ErrGameFinished)
}

// Simple variant tests

func (s *ControllerSuite) TestAdjustScore() {
	room := s.startedRoom(model.VariantSimple, 2)

	s.controller.AdjustScore(room, ScoreStep)
	s.controller.AdjustScore(room, ScoreStep)
	player := s.controller.AdjustScore(room, -ScoreStep)

	s.Equal(50, player.CurrentRoundScore)
	s.Equal(0, player.TotalScore)
}

func (s *ControllerSuite) TestFinishTurnBanksAndAdvances() {
	room := s.startedRoom(model.VariantSimple, 3)
	s.controller.AdjustScore(room, 150)

	outcome := s.controller.FinishTurn(room)

	s.Equal(0, outcome.PreviousTurn)
	s.Equal(1, outcome.CurrentTurn)
	s.False(outcome.Wrapped)
	s.Equal([]int{150}, room.Players[0].Scores)
	s.Equal(150, room.Players[0].TotalScore)
	s.Zero(room.Players[0].CurrentRoundScore)
	s.assertConsistent(room)
}

func (s *ControllerSuite) TestFinishTurnBanksZeroAndNegative() {
	room := s.startedRoom(model.VariantSimple, 2)
	s.controller.FinishTurn(room)
	s.controller.AdjustScore(room, -ScoreStep)
	s.controller.FinishTurn(room)

	s.Equal([]int{0}, room.Players[0].Scores)
	s.Equal([]int{-50}, room.Players[1].Scores)
	s.Equal(-50, room.Players[1].TotalScore)
	s.assertConsistent(room)
}

func (s *ControllerSuite) TestRoundIncrementsOnWrap() {
	room := s.startedRoom(model.VariantSimple, 2)

	s.controller.FinishTurn(room)
	outcome := s.controller.FinishTurn(room)

	s.True(outcome.Wrapped)
	s.False(outcome.Won())
	s.Equal(0, room.CurrentTurn)
	s.Equal(2, room.Round)
}

func (s *ControllerSuite) TestNoWinMidRound() {
	room := s.startedRoom(model.VariantSimple, 2)
	s.controller.AdjustScore(room, 3500)

	outcome := s.controller.FinishTurn(room)

	s.False(outcome.Won())
	s.Equal(3500, room.Players[0].TotalScore)
	s.Equal(model.RoomStateInProgress, room.State)

	outcome = s.controller.FinishTurn(room)
	s.Require().True(outcome.Won())
	s.Equal(testutil.ConnID(0), outcome.Winner.ConnID)
	s.Equal(model.RoomStateFinished, room.State)
	s.Equal(1, room.Round)
}

func (s *ControllerSuite) TestHighestCandidateWins() {
	room := s.startedRoom(model.VariantSimple, 3)
	testutil.SetBanked(room.Players[0], 3100)
	testutil.SetBanked(room.Players[2], 3400)

	s.controller.FinishTurn(room)
	s.controller.FinishTurn(room)
	outcome := s.controller.FinishTurn(room)

	s.Require().True(outcome.Won())
	s.Equal(testutil.ConnID(2), outcome.Winner.ConnID)
	s.Equal(3400, outcome.Record.Winner.TotalScore)
}

func (s *ControllerSuite) TestTieGoesToEarliestSeat() {
	room := s.startedRoom(model.VariantSimple, 2)
	testutil.SetBanked(room.Players[0], 3000)
	testutil.SetBanked(room.Players[1], 3000)

	s.controller.FinishTurn(room)
	outcome := s.controller.FinishTurn(room)

	s.Require().True(outcome.Won())
	s.Equal(testutil.ConnID(0), outcome.Winner.ConnID)
}

func (s *ControllerSuite) TestBelowThresholdNoWinner() {
	room := s.startedRoom(model.VariantSimple, 2)
	testutil.SetBanked(room.Players[0], 2999)

	s.controller.FinishTurn(room)
	outcome := s.controller.FinishTurn(room)

	s.False(outcome.Won())
}

func (s *ControllerSuite) TestWinRecord() {
	room := s.startedRoom(model.VariantDice, 2)
	testutil.SetBanked(room.Players[1], 3200)

	s.controller.FinishDiceTurn(room)
	_, outcome := s.controller.FinishDiceTurn(room)

	s.Require().NotNil(outcome.Record)
	rec := outcome.Record
	s.Equal(model.GameModeDice, rec.GameMode)
	s.Equal(room.Code, rec.RoomCode)
	s.Equal(1, rec.Rounds)
	s.Equal(testutil.Epoch.UnixMilli(), rec.Timestamp)
	s.Len(rec.Players, 2)
	s.Equal("Player 1", rec.Winner.Name)
}

func (s *ControllerSuite) TestBankrupt() {
	room := s.startedRoom(model.VariantSimple, 2)
	testutil.SetBanked(room.Players[0], 500, 300)
	s.controller.AdjustScore(room, 100)

	outcome := s.controller.Bankrupt(room)

	p := room.Players[0]
	s.Empty(p.Scores)
	s.Zero(p.TotalScore)
	s.Zero(p.CurrentRoundScore)
	s.Equal(1, outcome.CurrentTurn)
	s.assertConsistent(room)
}

// Dice variant tests

func (s *ControllerSuite) TestBeginRoll() {
	room := s.startedRoom(model.VariantDice, 2)
	room.Dice.Locked[1] = true

	available, gen, err := s.controller.BeginRoll(room)
	s.Require().NoError(err)

	s.Equal([]int{0, 2, 3}, available)
	s.Equal(room.Generation, gen)
	s.True(room.RollInFlight)

	_, _, err = s.controller.BeginRoll(room)
	s.ErrorIs(err, model.ErrRollInProgress)
}

func (s *ControllerSuite) TestBeginRollNoDice() {
	room := s.startedRoom(model.VariantDice, 2)
	room.Dice.Locked = [model.DiceCount]bool{true, true, true, true}

	_, _, err := s.controller.BeginRoll(room)
	s.ErrorIs(err, model.ErrNoDiceAvailable)
	s.False(room.RollInFlight)
}

func (s *ControllerSuite) TestRevealStoresFaces() {
	room := s.startedRoom(model.VariantDice, 2)
	s.controller.RevealRoll(room, rolled("A.K."))
	s.Equal([model.DiceCount]model.Symbol{"A", "-", "K", "-"}, room.Dice.Values)
}

func (s *ControllerSuite) TestSingleAceLocksAndKeepsTurn() {
	room := s.startedRoom(model.VariantDice, 2)

	outcome := s.controller.ApplyRoll(room, rolled("QAJR"))

	s.Nil(outcome.Turn)
	s.Equal(100, outcome.PendingTotal)
	s.Equal(0, room.CurrentTurn)
	s.Equal([model.DiceCount]bool{false, true, false, false}, room.Dice.Locked)
	s.Equal(100, room.Players[0].CurrentRoundScore)
	s.Zero(room.Players[0].TotalScore)
}

func (s *ControllerSuite) TestPendingAccumulatesAcrossRerolls() {
	room := s.startedRoom(model.VariantDice, 2)

	s.controller.ApplyRoll(room, rolled("QAJR"))
	outcome := s.controller.ApplyRoll(room, rolled("K.JR"))

	s.Equal(150, outcome.PendingTotal)
	s.Equal([model.DiceCount]bool{true, true, false, false}, room.Dice.Locked)
}

func (s *ControllerSuite) TestBustClearsEverythingAndAdvances() {
	room := s.startedRoom(model.VariantDice, 2)
	testutil.SetBanked(room.Players[0], 800)
	s.controller.ApplyRoll(room, rolled("A.JR"))

	outcome := s.controller.ApplyRoll(room, rolled(".NNN"))

	s.True(outcome.Result.Busted)
	s.Require().NotNil(outcome.Turn)
	p := room.Players[0]
	s.Empty(p.Scores)
	s.Zero(p.TotalScore)
	s.Zero(p.CurrentRoundScore)
	s.Equal(1, room.CurrentTurn)
	s.Equal([model.DiceCount]bool{}, room.Dice.Locked)
	s.Zero(room.Dice.PendingTotal)
	s.assertConsistent(room)
}

func (s *ControllerSuite) TestNoScoreForfeitsPending() {
	room := s.startedRoom(model.VariantDice, 2)
	testutil.SetBanked(room.Players[0], 400)
	s.controller.ApplyRoll(room, rolled("A.JR"))

	outcome := s.controller.ApplyRoll(room, rolled(".QJR"))

	s.False(outcome.Result.Scored)
	s.Require().NotNil(outcome.Turn)
	s.Zero(outcome.PendingTotal)
	s.Equal(400, room.Players[0].TotalScore)
	s.Zero(room.Players[0].CurrentRoundScore)
	s.Equal(1, room.CurrentTurn)
}

func (s *ControllerSuite) TestAllLockedThenBonusUnlockKeepsPending() {
	room := s.startedRoom(model.VariantDice, 2)

	outcome := s.controller.ApplyRoll(room, rolled("AKAA"))
	s.True(outcome.Result.AllLocked)
	s.True(room.Dice.AllLocked())

	gen := room.Generation
	s.controller.UnlockAll(room)

	s.False(room.Dice.AnyLocked())
	s.Equal(1050, room.Dice.PendingTotal)
	s.Greater(room.Generation, gen)
	s.Equal(0, room.CurrentTurn)
}

func (s *ControllerSuite) TestEmptyRollHasNoEffect() {
	room := s.startedRoom(model.VariantDice, 2)
	room.Dice.Locked = [model.DiceCount]bool{true, true, true, true}
	room.Dice.PendingTotal = 300

	outcome := s.controller.ApplyRoll(room, rolled("NNNN"))

	s.True(outcome.Result.Empty)
	s.Nil(outcome.Turn)
	s.Equal(300, room.Dice.PendingTotal)
}

func (s *ControllerSuite) TestFinishDiceTurnBanksPositive() {
	room := s.startedRoom(model.VariantDice, 2)
	s.controller.ApplyRoll(room, rolled("KKKQ"))

	banked, outcome := s.controller.FinishDiceTurn(room)

	s.Equal(500, banked)
	s.Equal(1, outcome.CurrentTurn)
	s.Equal([]int{500}, room.Players[0].Scores)
	s.Zero(room.Dice.PendingTotal)
	s.Equal([model.DiceCount]model.Symbol{"-", "-", "-", "-"}, room.Dice.Values)
}

func (s *ControllerSuite) TestFinishDiceTurnSkipsZero() {
	room := s.startedRoom(model.VariantDice, 2)

	banked, _ := s.controller.FinishDiceTurn(room)

	s.Zero(banked)
	s.Empty(room.Players[0].Scores)
}

func (s *ControllerSuite) TestDiceBankrupt() {
	room := s.startedRoom(model.VariantDice, 2)
	testutil.SetBanked(room.Players[0], 700)
	s.controller.ApplyRoll(room, rolled("A..."))

	s.controller.Bankrupt(room)

	s.Zero(room.Players[0].TotalScore)
	s.Zero(room.Dice.PendingTotal)
	s.Equal(1, room.CurrentTurn)
}

func (s *ControllerSuite) TestResetDice() {
	room := s.startedRoom(model.VariantDice, 2)
	s.controller.ApplyRoll(room, rolled("QAJR"))
	s.controller.RevealRoll(room, rolled("QAJR"))

	changed, err := s.controller.ResetDice(room)
	s.Require().NoError(err)
	s.True(changed)
	s.False(room.Dice.AnyLocked())
	s.Equal(100, room.Dice.PendingTotal)
	s.Equal(model.SymbolAce, room.Dice.Values[1])

	gen := room.Generation
	changed, err = s.controller.ResetDice(room)
	s.Require().NoError(err)
	s.False(changed)
	s.Equal(gen, room.Generation)
	s.Equal(100, room.Dice.PendingTotal)
	s.Equal(0, room.CurrentTurn)
}

func (s *ControllerSuite) TestResetDiceDuringRoll() {
	room := s.startedRoom(model.VariantDice, 2)
	room.Dice.Locked[0] = true
	_, _, err := s.controller.BeginRoll(room)
	s.Require().NoError(err)

	_, err = s.controller.ResetDice(room)
	s.ErrorIs(err, model.ErrRollInProgress)
}

func (s *ControllerSuite) TestTurnAdvanceClearsRollInFlight() {
	room := s.startedRoom(model.VariantDice, 2)
	_, gen, err := s.controller.BeginRoll(room)
	s.Require().NoError(err)

	s.controller.FinishDiceTurn(room)

	s.False(room.RollInFlight)
	s.NotEqual(gen, room.Generation)
}

// Removal tests

func (s *ControllerSuite) TestRemoveUnknownPlayer() {
	room := testutil.NewRoom(model.VariantSimple, 2)
	outcome := s.controller.RemovePlayer(room, "nobody")
	s.False(outcome.Removed)
	s.Len(room.Players, 2)
}

func (s *ControllerSuite) TestRemoveCreatorTransfersRole() {
	room := testutil.NewRoom(model.VariantSimple, 3)

	outcome := s.controller.RemovePlayer(room, testutil.ConnID(0))

	s.True(outcome.Removed)
	s.Require().NotNil(outcome.NewCreator)
	s.Equal(testutil.ConnID(1), *outcome.NewCreator)
	s.Equal(testutil.ConnID(1), room.CreatorID)
	s.Equal([]model.ConnID{testutil.ConnID(1), testutil.ConnID(2)}, room.ConnIDs())
}

func (s *ControllerSuite) TestRemoveLastPlayerEmptiesRoom() {
	room := testutil.NewRoom(model.VariantSimple, 1)
	outcome := s.controller.RemovePlayer(room, testutil.ConnID(0))
	s.True(outcome.Empty)
	s.Nil(outcome.NewCreator)
}

func (s *ControllerSuite) TestRemoveActiveLastSeatResetsTurn() {
	room := s.startedRoom(model.VariantSimple, 3)
	s.controller.FinishTurn(room)
	s.controller.FinishTurn(room)
	s.Require().Equal(2, room.CurrentTurn)

	outcome := s.controller.RemovePlayer(room, testutil.ConnID(2))

	s.True(outcome.TurnReset)
	s.True(outcome.ActiveChanged)
	s.Equal(0, room.CurrentTurn)
	s.assertConsistent(room)
}

func (s *ControllerSuite) TestRemoveEarlierSeatKeepsPointer() {
	room := s.startedRoom(model.VariantSimple, 3)
	s.controller.FinishTurn(room)
	s.Require().Equal(1, room.CurrentTurn)

	outcome := s.controller.RemovePlayer(room, testutil.ConnID(0))

	// pointer is not shifted, so the seat after the former active player now holds the turn
	s.False(outcome.TurnReset)
	s.True(outcome.ActiveChanged)
	s.Equal(1, room.CurrentTurn)
	s.Equal(testutil.ConnID(2), room.ActivePlayer().ConnID)
}

func (s *ControllerSuite) TestRemoveBystanderKeepsActive() {
	room := s.startedRoom(model.VariantDice, 3)
	s.controller.ApplyRoll(room, rolled("A..."))
	gen := room.Generation

	outcome := s.controller.RemovePlayer(room, testutil.ConnID(2))

	s.False(outcome.ActiveChanged)
	s.Equal(gen, room.Generation)
	s.Equal(100, room.Dice.PendingTotal)
}

func (s *ControllerSuite) TestRemoveActiveDicePlayerResetsDice() {
	room := s.startedRoom(model.VariantDice, 2)
	s.controller.ApplyRoll(room, rolled("A..."))
	_, _, err := s.controller.BeginRoll(room)
	s.Require().NoError(err)

	outcome := s.controller.RemovePlayer(room, testutil.ConnID(0))

	s.True(outcome.ActiveChanged)
	s.False(room.RollInFlight)
	s.Zero(room.Dice.PendingTotal)
	s.False(room.Dice.AnyLocked())
}

func (s *ControllerSuite) TestStaysConsistentAcrossMixedSequence() {
	room := s.startedRoom(model.VariantDice, 3)
	steps := []string{"QAJR", ".KQQ", "NNN.", "JJJA", "QJRQ", "AKAA"}
	for _, faces := range steps {
		s.controller.ApplyRoll(room, rolled(faces))
		s.assertConsistent(room)
		if room.Dice.AllLocked() {
			s.controller.UnlockAll(room)
		}
	}
	s.controller.FinishDiceTurn(room)
	s.controller.RemovePlayer(room, testutil.ConnID(1))
	s.assertConsistent(room)
}
