// Package ws carries the game protocol over websockets: one Hub fans events
// out to room groups and each connection runs a read and a write pump.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/protocol"
)

// CommandSink accepts decoded commands and disconnects
type CommandSink interface {
	Submit(conn model.ConnID, cmd protocol.Command) bool
	Disconnect(conn model.ConnID) bool
}

// HistoryReader answers read-only history queries
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]*model.GameRecord, error)
	Stats(ctx context.Context) ([]*model.PlayerStats, error)
}

// Handler upgrades HTTP requests to websocket connections
type Handler struct {
	hub      *Hub
	sink     CommandSink
	history  HistoryReader
	config   Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
	newID    func() string
}

// NewHandler creates a websocket Handler
func NewHandler(hub *Hub, sink CommandSink, history HistoryReader, config Config, logger *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		sink:    sink,
		history: history,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
		newID:  uuid.NewString,
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(model.ConnID(h.newID()), conn, h.config)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump(h.config)
	h.readPump(r.Context(), client)
}

// readPump decodes frames and hands commands to the sink until the peer goes away
func (h *Handler) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.hub.Unregister(c)
		h.sink.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(h.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws connection closed unexpectedly",
					slog.String("conn", string(c.id)),
					slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if !c.limiter.Allow() {
			h.hub.SendTo(c.id, protocol.ErrorEvent("", protocol.ErrRateLimited))
			continue
		}

		cmd, err := protocol.DecodeCommand(data)
		if err != nil {
			h.hub.SendTo(c.id, protocol.ErrorEvent("", err))
			continue
		}

		if protocol.IsQuery(cmd) {
			h.answerQuery(ctx, c, cmd)
			continue
		}
		if !h.sink.Submit(c.id, cmd) {
			return
		}
	}
}

// answerQuery replies to a history query from the read cache.
// Failures are logged and answered with an empty list.
func (h *Handler) answerQuery(ctx context.Context, c *Client, cmd protocol.Command) {
	evt := model.Event{Variant: cmd.Variant()}

	switch q := cmd.(type) {
	case protocol.GetGameHistory:
		evt.Type = model.EventGameHistory
		games, err := h.history.History(ctx, q.Limit)
		if err != nil {
			h.logger.Error("ws game history query failed", slog.String("error", err.Error()))
		}
		if games == nil {
			games = []*model.GameRecord{}
		}
		evt.Payload = games

	case protocol.GetPlayerStats:
		evt.Type = model.EventPlayerStats
		stats, err := h.history.Stats(ctx)
		if err != nil {
			h.logger.Error("ws player stats query failed", slog.String("error", err.Error()))
		}
		if stats == nil {
			stats = []*model.PlayerStats{}
		}
		evt.Payload = stats

	default:
		return
	}

	h.hub.SendTo(c.id, evt)
}
