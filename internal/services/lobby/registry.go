package lobby

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/tresmil/internal/dependencies/clock"
	"github.com/mcoot/tresmil/internal/dependencies/random"
	"github.com/mcoot/tresmil/internal/model"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is uppercase base-36
	RoomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Registry maps room codes to rooms, one namespace per variant.
// It holds no locks: the owner must serialise access.
type Registry struct {
	rooms  map[model.Variant]map[model.RoomCode]*model.Room
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(clock clock.Clock, random random.Random, logger *slog.Logger) *Registry {
	rooms := make(map[model.Variant]map[model.RoomCode]*model.Room, len(model.Variants))
	for _, v := range model.Variants {
		rooms[v] = make(map[model.RoomCode]*model.Room)
	}
	return &Registry{
		rooms:  rooms,
		clock:  clock,
		random: random,
		logger: logger,
	}
}

// DefaultPlayerName is used when a create or join request carries no name
func DefaultPlayerName(conn model.ConnID) string {
	id := string(conn)
	if len(id) > 4 {
		id = id[:4]
	}
	return "Player " + id
}

// CreateRoom registers a new waiting room with conn seated as creator.
// Codes are random and are not checked against existing rooms; a collision
// replaces the older room in the namespace.
func (r *Registry) CreateRoom(variant model.Variant, conn model.ConnID, name string, maxPlayers int) *model.Room {
	if name == "" {
		name = DefaultPlayerName(conn)
	}
	code := model.RoomCode(r.random.String(RoomCodeLength, RoomCodeAlphabet))
	room := model.NewRoom(code, variant, model.NewPlayer(conn, name), maxPlayers, r.clock.Now())

	if _, exists := r.rooms[variant][code]; exists {
		r.logger.Warn("room code collision, replacing room",
			slog.String("room", string(code)),
			slog.String("variant", string(variant)),
		)
	}
	r.rooms[variant][code] = room

	r.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("variant", string(variant)),
		slog.String("creator", name),
		slog.Int("max_players", room.MaxPlayers),
	)
	return room
}

// GetRoom looks up a room
func (r *Registry) GetRoom(variant model.Variant, code model.RoomCode) (*model.Room, error) {
	room, ok := r.rooms[variant][code]
	if !ok {
		return nil, fmt.Errorf("%s room %s: %w", variant, code, model.ErrRoomNotFound)
	}
	return room, nil
}

// JoinRoom seats conn at the end of the turn order
func (r *Registry) JoinRoom(variant model.Variant, code model.RoomCode, conn model.ConnID, name string) (*model.Room, *model.Player, error) {
	room, err := r.GetRoom(variant, code)
	if err != nil {
		return nil, nil, err
	}
	if room.Started {
		return nil, nil, model.ErrGameAlreadyStarted
	}
	if room.IsFull() {
		return nil, nil, model.ErrRoomFull
	}
	if room.PlayerIndex(conn) >= 0 {
		return nil, nil, model.ErrAlreadyInRoom
	}
	if name == "" {
		name = DefaultPlayerName(conn)
	}

	player := model.NewPlayer(conn, name)
	room.Players = append(room.Players, player)

	r.logger.Info("player joined",
		slog.String("room", string(code)),
		slog.String("variant", string(variant)),
		slog.String("player", name),
	)
	return room, player, nil
}

// DeleteRoom removes a room; deleting a missing room is a no-op
func (r *Registry) DeleteRoom(variant model.Variant, code model.RoomCode) {
	if _, ok := r.rooms[variant][code]; !ok {
		return
	}
	delete(r.rooms[variant], code)
	r.logger.Info("room deleted",
		slog.String("room", string(code)),
		slog.String("variant", string(variant)),
	)
}

// DeleteRoomIf removes the room only if code still maps to room.
// Returns whether it was removed.
func (r *Registry) DeleteRoomIf(room *model.Room) bool {
	current, ok := r.rooms[room.Variant][room.Code]
	if !ok || current != room {
		return false
	}
	r.DeleteRoom(room.Variant, room.Code)
	return true
}

// Count returns the number of live rooms of a variant
func (r *Registry) Count(variant model.Variant) int {
	return len(r.rooms[variant])
}
