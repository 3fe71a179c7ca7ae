package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/protocol"
	"github.com/mcoot/tresmil/internal/services/game"
)

// handleCommand authorizes and applies one command. The returned error is sent
// to the sender only.
func (e *Engine) handleCommand(conn model.ConnID, cmd protocol.Command) error {
	switch c := cmd.(type) {
	case protocol.CreateRoom:
		return e.createRoom(conn, c)
	case protocol.JoinRoom:
		return e.joinRoom(conn, c)
	case protocol.StartGame:
		return e.startGame(conn, c.Variant())
	case protocol.LeaveRoom:
		return e.leaveRoom(conn, c.Variant())
	case protocol.AdjustScore:
		return e.adjustScore(conn, c)
	case protocol.Bankrupt:
		return e.bankrupt(conn, c.Variant())
	case protocol.FinishTurn:
		return e.finishTurn(conn, c.Variant())
	case protocol.RequestDiceRoll:
		return e.requestRoll(conn)
	case protocol.ResetDice:
		return e.resetDice(conn)
	default:
		return fmt.Errorf("unhandled command %s", cmd.Type())
	}
}

// resolveRoom returns the room conn is seated in for a variant.
// A binding whose room is gone, or that no longer holds conn, is dropped.
func (e *Engine) resolveRoom(conn model.ConnID, variant model.Variant) (*model.Room, error) {
	binding, err := e.binder.Resolve(conn, variant)
	if err != nil {
		return nil, err
	}
	room, err := e.registry.GetRoom(variant, binding.Code)
	if err != nil {
		e.binder.Unbind(conn, variant)
		return nil, err
	}
	if room.PlayerIndex(conn) < 0 {
		e.binder.Unbind(conn, variant)
		return nil, model.ErrNotInRoom
	}
	return room, nil
}

// resolveTurn returns conn's room after checking conn holds the turn
func (e *Engine) resolveTurn(conn model.ConnID, variant model.Variant) (*model.Room, error) {
	room, err := e.resolveRoom(conn, variant)
	if err != nil {
		return nil, err
	}
	if err := e.controller.RequireTurn(room, conn); err != nil {
		return nil, err
	}
	return room, nil
}

// Room lifecycle

func (e *Engine) createRoom(conn model.ConnID, cmd protocol.CreateRoom) error {
	variant := cmd.Variant()
	if _, bound := e.binder.Lookup(conn, variant); bound {
		return model.ErrAlreadyInRoom
	}

	room := e.registry.CreateRoom(variant, conn, cmd.PlayerName, cmd.MaxPlayers)
	if err := e.binder.Bind(conn, variant, room.Code, 0); err != nil {
		return err
	}
	e.transport.JoinGroup(conn, variant, room.Code)

	e.transport.SendTo(conn, roomEvent(room, model.EventRoomCreated, model.RoomCreatedPayload{
		RoomCode:   room.Code,
		Player:     room.Players[0].Snapshot(),
		Players:    model.Snapshots(room.Players),
		MaxPlayers: room.MaxPlayers,
		IsCreator:  true,
	}))
	return nil
}

func (e *Engine) joinRoom(conn model.ConnID, cmd protocol.JoinRoom) error {
	variant := cmd.Variant()
	if _, bound := e.binder.Lookup(conn, variant); bound {
		return model.ErrAlreadyInRoom
	}

	room, player, err := e.registry.JoinRoom(variant, cmd.RoomCode, conn, cmd.PlayerName)
	if err != nil {
		return err
	}
	if err := e.binder.Bind(conn, variant, room.Code, len(room.Players)-1); err != nil {
		return err
	}
	e.transport.JoinGroup(conn, variant, room.Code)

	players := model.Snapshots(room.Players)
	e.transport.SendTo(conn, roomEvent(room, model.EventRoomJoined, model.RoomJoinedPayload{
		RoomCode:  room.Code,
		Player:    player.Snapshot(),
		Players:   players,
		CreatorID: room.CreatorID,
		IsCreator: false,
	}))
	e.transport.Broadcast(roomEvent(room, model.EventPlayerJoined, model.PlayerJoinedPayload{
		Player:  player.Snapshot(),
		Players: players,
	}))
	return nil
}

func (e *Engine) startGame(conn model.ConnID, variant model.Variant) error {
	room, err := e.resolveRoom(conn, variant)
	if err != nil {
		return err
	}
	if err := e.controller.Start(room, conn); err != nil {
		return err
	}
	e.transport.Broadcast(roomEvent(room, model.EventGameStarted, turnPayload(room)))
	return nil
}

func (e *Engine) leaveRoom(conn model.ConnID, variant model.Variant) error {
	if _, bound := e.binder.Lookup(conn, variant); !bound {
		return model.ErrNotInRoom
	}
	code := e.removeFromRoom(conn, variant)
	e.transport.SendTo(conn, model.Event{
		Type:     model.EventRoomLeft,
		Variant:  variant,
		RoomCode: code,
		Payload:  model.RoomLeftPayload{RoomCode: code},
	})
	return nil
}

func (e *Engine) handleDisconnect(conn model.ConnID) {
	for _, variant := range e.binder.Variants(conn) {
		e.removeFromRoom(conn, variant)
	}
	e.logger.Debug("connection released", slog.String("conn", string(conn)))
}

// removeFromRoom vacates conn's seat in a variant and tells the rest of the room.
// It returns the code conn was bound to.
func (e *Engine) removeFromRoom(conn model.ConnID, variant model.Variant) model.RoomCode {
	binding, ok := e.binder.Lookup(conn, variant)
	if !ok {
		return ""
	}
	e.binder.Unbind(conn, variant)
	e.transport.LeaveGroup(conn, variant, binding.Code)

	room, err := e.registry.GetRoom(variant, binding.Code)
	if err != nil {
		return binding.Code
	}
	outcome := e.controller.RemovePlayer(room, conn)
	if !outcome.Removed {
		return binding.Code
	}

	if outcome.Empty {
		e.registry.DeleteRoomIf(room)
		e.transport.CloseGroup(variant, room.Code)
		return binding.Code
	}

	e.binder.Reindex(room)
	e.transport.Broadcast(roomEvent(room, model.EventPlayerLeft, model.PlayerLeftPayload{
		PlayerID:   conn,
		Players:    model.Snapshots(room.Players),
		NewCreator: outcome.NewCreator,
	}))
	if outcome.ActiveChanged {
		e.transport.Broadcast(roomEvent(room, model.EventTurnChanged, turnPayload(room)))
	}
	return binding.Code
}

// Turn commands

func (e *Engine) adjustScore(conn model.ConnID, cmd protocol.AdjustScore) error {
	room, err := e.resolveTurn(conn, cmd.Variant())
	if err != nil {
		return err
	}
	delta := game.ScoreStep
	if !cmd.Increase {
		delta = -delta
	}
	player := e.controller.AdjustScore(room, delta)

	e.transport.Broadcast(roomEvent(room, model.EventScoreUpdated, model.ScoreUpdatedPayload{
		PlayerIndex:       room.CurrentTurn,
		CurrentRoundScore: player.CurrentRoundScore,
		Players:           model.Snapshots(room.Players),
	}))
	return nil
}

func (e *Engine) bankrupt(conn model.ConnID, variant model.Variant) error {
	room, err := e.resolveTurn(conn, variant)
	if err != nil {
		return err
	}
	turn := e.controller.Bankrupt(room)
	e.broadcastBankrupt(room, turn.PreviousTurn)
	e.afterTurn(room, turn)
	return nil
}

func (e *Engine) finishTurn(conn model.ConnID, variant model.Variant) error {
	room, err := e.resolveTurn(conn, variant)
	if err != nil {
		return err
	}

	if variant == model.VariantSimple {
		e.afterTurn(room, e.controller.FinishTurn(room))
		return nil
	}

	banked, turn := e.controller.FinishDiceTurn(room)
	e.logger.Debug("dice turn finished",
		slog.String("room", string(room.Code)),
		slog.Int("banked", banked),
	)
	e.transport.Broadcast(roomEvent(room, model.EventScoreUpdated, model.ScoreUpdatedPayload{
		PlayerIndex: turn.PreviousTurn,
		Players:     model.Snapshots(room.Players),
	}))
	e.afterTurn(room, turn)
	return nil
}

// Dice commands

func (e *Engine) requestRoll(conn model.ConnID) error {
	room, err := e.resolveTurn(conn, model.VariantDice)
	if err != nil {
		return err
	}
	available, generation, err := e.controller.BeginRoll(room)
	if err != nil {
		return err
	}

	roll := e.roller.Roll(available)
	e.transport.Broadcast(roomEvent(room, model.EventRollAnimationStart, model.RollAnimationPayload{
		PlayerIndex: room.CurrentTurn,
		PlayerName:  room.ActivePlayer().Name,
		Animations:  roll.Animations,
	}))
	e.schedule(e.timings.RevealDelay(), &task{
		kind:       taskReveal,
		room:       room,
		generation: generation,
		results:    roll.Results,
	})
	return nil
}

func (e *Engine) resetDice(conn model.ConnID) error {
	room, err := e.resolveTurn(conn, model.VariantDice)
	if errors.Is(err, model.ErrNotYourTurn) {
		return nil
	}
	if err != nil {
		return err
	}

	changed, err := e.controller.ResetDice(room)
	if err != nil || !changed {
		return err
	}
	e.transport.Broadcast(roomEvent(room, model.EventDiceReset, model.DiceResetPayload{
		Reason: "manual",
		Dice:   room.Dice.Snapshot(),
	}))
	return nil
}

// Shared event sequences

func (e *Engine) broadcastBankrupt(room *model.Room, playerIndex int) {
	players := model.Snapshots(room.Players)
	e.transport.Broadcast(roomEvent(room, model.EventPlayerBankrupt, model.PlayerBankruptPayload{
		PlayerIndex: playerIndex,
		Players:     players,
	}))
	if room.Variant == model.VariantDice {
		e.transport.Broadcast(roomEvent(room, model.EventScoreUpdated, model.ScoreUpdatedPayload{
			PlayerIndex: playerIndex,
			Players:     players,
			ResetTotal:  true,
		}))
	}
}

// afterTurn announces the new active player, or the winner when the advance ended the game
func (e *Engine) afterTurn(room *model.Room, turn game.TurnOutcome) {
	if !turn.Won() {
		e.transport.Broadcast(roomEvent(room, model.EventTurnChanged, turnPayload(room)))
		return
	}

	e.transport.Broadcast(roomEvent(room, model.EventGameWon, model.GameWonPayload{
		Winner:  turn.Winner.Snapshot(),
		Players: model.Snapshots(room.Players),
		Rounds:  room.Round,
	}))
	if e.recorder != nil && !e.recorder.Notify(turn.Record) {
		e.logger.Warn("finished game not recorded", slog.String("room", string(room.Code)))
	}
	e.schedule(e.timings.TeardownDelay, &task{kind: taskTeardown, room: room})
}

func roomEvent(room *model.Room, typ model.EventType, payload any) model.Event {
	return model.Event{
		Type:     typ,
		Variant:  room.Variant,
		RoomCode: room.Code,
		Payload:  payload,
	}
}

func turnPayload(room *model.Room) model.TurnPayload {
	payload := model.TurnPayload{
		CurrentPlayerIndex: room.CurrentTurn,
		Round:              room.Round,
		Players:            model.Snapshots(room.Players),
	}
	if active := room.ActivePlayer(); active != nil {
		payload.CurrentPlayer = active.Snapshot()
	}
	if room.Dice != nil {
		snapshot := room.Dice.Snapshot()
		payload.Dice = &snapshot
	}
	return payload
}
