package dispatch

import (
	"log/slog"
	"time"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/services/dice"
)

// Timings are the delays between the steps of a roll and after a win
type Timings struct {
	FrameInterval    time.Duration // client animation frame length
	RevealPadding    time.Duration // extra time after the last frame before faces are revealed
	EvaluateDelay    time.Duration // reveal to scoring
	BonusUnlockDelay time.Duration // all dice locked to unlock
	TeardownDelay    time.Duration // win to room deletion
}

// DefaultTimings returns the production delays
func DefaultTimings() Timings {
	return Timings{
		FrameInterval:    50 * time.Millisecond,
		RevealPadding:    100 * time.Millisecond,
		EvaluateDelay:    500 * time.Millisecond,
		BonusUnlockDelay: 1500 * time.Millisecond,
		TeardownDelay:    10 * time.Second,
	}
}

// RevealDelay is the time from the start of a roll animation to the reveal
func (t Timings) RevealDelay() time.Duration {
	return t.FrameInterval*dice.AnimationFrames + t.RevealPadding
}

type taskKind int

const (
	taskReveal taskKind = iota
	taskEvaluate
	taskBonusUnlock
	taskTeardown
)

func (k taskKind) String() string {
	switch k {
	case taskReveal:
		return "reveal"
	case taskEvaluate:
		return "evaluate"
	case taskBonusUnlock:
		return "bonus-unlock"
	case taskTeardown:
		return "teardown"
	}
	return "unknown"
}

// task is a deferred continuation. It only applies while room is still
// registered and, except for teardown, its generation is unchanged.
type task struct {
	kind       taskKind
	room       *model.Room
	generation uint64
	results    []model.RolledDie
}

// schedule submits t to the inbox after d. The timer callback never touches state.
func (e *Engine) schedule(d time.Duration, t *task) {
	e.clock.AfterFunc(d, func() {
		if !e.enqueue(envelope{task: t}) {
			e.logger.Debug("engine stopped, dropping task", slog.String("task", t.kind.String()))
		}
	})
}

func (e *Engine) runTask(t *task) {
	current, err := e.registry.GetRoom(t.room.Variant, t.room.Code)
	if err != nil || current != t.room {
		e.logger.Debug("dropping task for removed room",
			slog.String("task", t.kind.String()),
			slog.String("room", string(t.room.Code)),
		)
		return
	}
	if t.kind != taskTeardown && t.room.Generation != t.generation {
		e.logger.Debug("dropping stale task",
			slog.String("task", t.kind.String()),
			slog.String("room", string(t.room.Code)),
			slog.Uint64("task_generation", t.generation),
			slog.Uint64("room_generation", t.room.Generation),
		)
		return
	}

	switch t.kind {
	case taskReveal:
		e.revealRoll(t)
	case taskEvaluate:
		e.evaluateRoll(t)
	case taskBonusUnlock:
		e.bonusUnlock(t.room)
	case taskTeardown:
		e.teardown(t.room)
	}
}

func (e *Engine) revealRoll(t *task) {
	room := t.room
	e.controller.RevealRoll(room, t.results)
	e.transport.Broadcast(roomEvent(room, model.EventRollReveal, model.RollRevealPayload{
		Results: t.results,
		Dice:    room.Dice.Snapshot(),
	}))
	e.schedule(e.timings.EvaluateDelay, &task{
		kind:       taskEvaluate,
		room:       room,
		generation: t.generation,
		results:    t.results,
	})
}

func (e *Engine) evaluateRoll(t *task) {
	room := t.room
	outcome := e.controller.ApplyRoll(room, t.results)
	result := outcome.Result

	locked := result.Locked
	e.transport.Broadcast(roomEvent(room, model.EventRollResult, model.RollResultPayload{
		Points:       result.Points,
		ScoringDice:  nonNil(result.ScoringDice),
		Locked:       locked[:],
		Busted:       result.Busted,
		Scored:       result.Scored,
		AllLocked:    result.AllLocked,
		PendingTotal: outcome.PendingTotal,
		Message:      result.Message,
	}))

	switch {
	case result.Empty:
		return
	case result.Busted:
		e.broadcastBankrupt(room, outcome.PlayerIndex)
		e.afterTurn(room, *outcome.Turn)
	case outcome.Turn != nil:
		e.transport.Broadcast(roomEvent(room, model.EventScoreUpdated, model.ScoreUpdatedPayload{
			PlayerIndex: outcome.PlayerIndex,
			Players:     model.Snapshots(room.Players),
		}))
		e.afterTurn(room, *outcome.Turn)
	default:
		e.transport.Broadcast(roomEvent(room, model.EventScoreUpdated, model.ScoreUpdatedPayload{
			PlayerIndex:       outcome.PlayerIndex,
			CurrentRoundScore: outcome.PendingTotal,
			Players:           model.Snapshots(room.Players),
		}))
		if result.AllLocked {
			e.transport.Broadcast(roomEvent(room, model.EventAllDiceScored, model.AllDiceScoredPayload{
				PendingTotal: outcome.PendingTotal,
			}))
			e.schedule(e.timings.BonusUnlockDelay, &task{
				kind:       taskBonusUnlock,
				room:       room,
				generation: room.Generation,
			})
		}
	}
}

func (e *Engine) bonusUnlock(room *model.Room) {
	e.controller.UnlockAll(room)
	e.transport.Broadcast(roomEvent(room, model.EventDiceReset, model.DiceResetPayload{
		Reason: "bonus",
		Dice:   room.Dice.Snapshot(),
	}))
}

// teardown removes a finished room and releases everyone still seated in it
func (e *Engine) teardown(room *model.Room) {
	if !e.registry.DeleteRoomIf(room) {
		return
	}
	e.binder.UnbindRoom(room)
	e.transport.CloseGroup(room.Variant, room.Code)
	e.logger.Info("finished room torn down",
		slog.String("room", string(room.Code)),
		slog.String("variant", string(room.Variant)),
	)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
