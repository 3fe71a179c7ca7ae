// Package dispatch serialises every command, disconnect and timer continuation
// through a single goroutine that owns all room state.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mcoot/tresmil/internal/dependencies/clock"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/protocol"
	"github.com/mcoot/tresmil/internal/services/dice"
	"github.com/mcoot/tresmil/internal/services/game"
	"github.com/mcoot/tresmil/internal/services/lobby"
	"github.com/mcoot/tresmil/internal/services/session"
)

// DefaultInboxSize is the number of envelopes that may queue for the engine
const DefaultInboxSize = 256

// Transport delivers events to connections. Implementations must not block.
type Transport interface {
	// SendTo delivers an event to a single connection
	SendTo(conn model.ConnID, evt model.Event)
	// Broadcast delivers an event to every member of the room group named by evt
	Broadcast(evt model.Event)
	JoinGroup(conn model.ConnID, variant model.Variant, code model.RoomCode)
	LeaveGroup(conn model.ConnID, variant model.Variant, code model.RoomCode)
	CloseGroup(variant model.Variant, code model.RoomCode)
}

// Recorder accepts finished games for persistence without blocking
type Recorder interface {
	Notify(rec *model.GameRecord) bool
}

// Engine is the single owner of the registry, binder and every room
type Engine struct {
	registry   *lobby.Registry
	binder     *session.Binder
	controller *game.Controller
	roller     *dice.Service
	transport  Transport
	recorder   Recorder
	clock      clock.Clock
	timings    Timings
	logger     *slog.Logger

	inbox chan envelope
	done  chan struct{}
}

// NewEngine creates an Engine. Call Run to start processing.
func NewEngine(
	registry *lobby.Registry,
	binder *session.Binder,
	controller *game.Controller,
	roller *dice.Service,
	transport Transport,
	recorder Recorder,
	clock clock.Clock,
	timings Timings,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		registry:   registry,
		binder:     binder,
		controller: controller,
		roller:     roller,
		transport:  transport,
		recorder:   recorder,
		clock:      clock,
		timings:    timings,
		logger:     logger.With(slog.String("component", "engine")),
		inbox:      make(chan envelope, DefaultInboxSize),
		done:       make(chan struct{}),
	}
}

// envelope is one unit of work for the engine goroutine
type envelope struct {
	conn       model.ConnID
	cmd        protocol.Command
	disconnect bool
	task       *task
}

// Run processes envelopes until ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine started")
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return nil
		case env := <-e.inbox:
			e.process(env)
		}
	}
}

// Submit queues a command from conn. It returns false once the engine has stopped.
func (e *Engine) Submit(conn model.ConnID, cmd protocol.Command) bool {
	return e.enqueue(envelope{conn: conn, cmd: cmd})
}

// Disconnect queues the teardown of every seat conn holds
func (e *Engine) Disconnect(conn model.ConnID) bool {
	return e.enqueue(envelope{conn: conn, disconnect: true})
}

func (e *Engine) enqueue(env envelope) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.inbox <- env:
		return true
	case <-e.done:
		return false
	}
}

// process runs one envelope to completion. A panic is logged and the engine keeps going.
func (e *Engine) process(env envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("panic while processing envelope",
				slog.String("conn", string(env.conn)),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	switch {
	case env.task != nil:
		e.runTask(env.task)
	case env.disconnect:
		e.handleDisconnect(env.conn)
	case env.cmd != nil:
		if err := e.handleCommand(env.conn, env.cmd); err != nil {
			e.logger.Debug("command rejected",
				slog.String("conn", string(env.conn)),
				slog.String("command", string(env.cmd.Type())),
				slog.String("error", err.Error()),
			)
			e.transport.SendTo(env.conn, protocol.ErrorEvent(env.cmd.Variant(), err))
		}
	}
}
