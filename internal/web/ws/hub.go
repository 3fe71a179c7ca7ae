package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/tresmil/internal/dispatch"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/protocol"
)

// groupKey names a room's broadcast group. Codes are only unique per variant.
type groupKey struct {
	variant model.Variant
	code    model.RoomCode
}

// Hub tracks every live connection and the room groups they belong to
type Hub struct {
	clients map[model.ConnID]*Client
	groups  map[groupKey]map[model.ConnID]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// Ensure Hub can deliver engine events
var _ dispatch.Transport = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[model.ConnID]*Client),
		groups:     make(map[groupKey]map[model.ConnID]struct{}),
		logger:     logger.With(slog.String("component", "ws-hub")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. Every client is closed when ctx ends.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Info("ws hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client registered",
				slog.String("conn", string(client.id)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			clientCount := len(h.clients)
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.groups = make(map[groupKey]map[model.ConnID]struct{})
			h.mu.Unlock()
			close(h.done)
			h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
			return nil
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	for key, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, key)
		}
	}
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client unregistered",
		slog.String("conn", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Register adds a client to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub and every group
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendTo delivers an event to one connection
func (h *Hub) SendTo(conn model.ConnID, evt model.Event) {
	msg, ok := h.encode(evt)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[conn]; ok {
		h.deliver(client, msg, evt.Type)
	}
}

// Broadcast delivers an event to every member of the event's room group
func (h *Hub) Broadcast(evt model.Event) {
	msg, ok := h.encode(evt)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sentCount := 0
	droppedCount := 0
	for id := range h.groups[groupKey{evt.Variant, evt.RoomCode}] {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		if h.deliver(client, msg, evt.Type) {
			sentCount++
		} else {
			droppedCount++
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.String("room", string(evt.RoomCode)),
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// deliver queues msg without blocking. The caller holds at least a read lock.
func (h *Hub) deliver(client *Client, msg []byte, typ model.EventType) bool {
	select {
	case client.send <- msg:
		return true
	default:
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("conn", string(client.id)),
			slog.String("event", string(typ)))
		return false
	}
}

func (h *Hub) encode(evt model.Event) ([]byte, bool) {
	msg, err := protocol.EncodeEvent(evt)
	if err != nil {
		h.logger.Error("ws failed to encode event",
			slog.String("event", string(evt.Type)),
			slog.String("error", err.Error()))
		return nil, false
	}
	return msg, true
}

// JoinGroup adds a live connection to a room group
func (h *Hub) JoinGroup(conn model.ConnID, variant model.Variant, code model.RoomCode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	key := groupKey{variant, code}
	members, ok := h.groups[key]
	if !ok {
		members = make(map[model.ConnID]struct{})
		h.groups[key] = members
	}
	members[conn] = struct{}{}
}

// LeaveGroup removes a connection from a room group
func (h *Hub) LeaveGroup(conn model.ConnID, variant model.Variant, code model.RoomCode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := groupKey{variant, code}
	members, ok := h.groups[key]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, key)
	}
}

// CloseGroup drops a room group. Its members stay connected.
func (h *Hub) CloseGroup(variant model.Variant, code model.RoomCode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, groupKey{variant, code})
	h.logger.Info("ws group closed",
		slog.String("room", string(code)),
		slog.String("variant", string(variant)))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of connections in a room group
func (h *Hub) GroupSize(variant model.Variant, code model.RoomCode) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupKey{variant, code}])
}
