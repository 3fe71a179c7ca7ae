package session

import (
	"github.com/mcoot/tresmil/internal/model"
)

// Binding is a connection's seat in one room
type Binding struct {
	Code        model.RoomCode
	PlayerIndex int
}

// Binder associates live connections with at most one room per variant.
// It holds no locks: the owner must serialise access.
type Binder struct {
	bindings map[model.ConnID]map[model.Variant]Binding
}

// NewBinder creates an empty Binder
func NewBinder() *Binder {
	return &Binder{
		bindings: make(map[model.ConnID]map[model.Variant]Binding),
	}
}

// Bind records conn's seat in a room, failing if conn already has one in that variant
func (b *Binder) Bind(conn model.ConnID, variant model.Variant, code model.RoomCode, index int) error {
	if _, ok := b.Lookup(conn, variant); ok {
		return model.ErrAlreadyInRoom
	}
	byVariant, ok := b.bindings[conn]
	if !ok {
		byVariant = make(map[model.Variant]Binding, len(model.Variants))
		b.bindings[conn] = byVariant
	}
	byVariant[variant] = Binding{Code: code, PlayerIndex: index}
	return nil
}

// Lookup returns conn's binding in a variant
func (b *Binder) Lookup(conn model.ConnID, variant model.Variant) (Binding, bool) {
	binding, ok := b.bindings[conn][variant]
	return binding, ok
}

// Resolve returns conn's binding or ErrNotInRoom
func (b *Binder) Resolve(conn model.ConnID, variant model.Variant) (Binding, error) {
	binding, ok := b.Lookup(conn, variant)
	if !ok {
		return Binding{}, model.ErrNotInRoom
	}
	return binding, nil
}

// Unbind drops conn's binding in a variant
func (b *Binder) Unbind(conn model.ConnID, variant model.Variant) {
	byVariant, ok := b.bindings[conn]
	if !ok {
		return
	}
	delete(byVariant, variant)
	if len(byVariant) == 0 {
		delete(b.bindings, conn)
	}
}

// Variants returns the variants conn is bound in, in a stable order
func (b *Binder) Variants(conn model.ConnID) []model.Variant {
	var out []model.Variant
	for _, v := range model.Variants {
		if _, ok := b.bindings[conn][v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Reindex refreshes every seated player's index after the room's order changed
func (b *Binder) Reindex(room *model.Room) {
	for i, p := range room.Players {
		byVariant, ok := b.bindings[p.ConnID]
		if !ok {
			continue
		}
		if binding, ok := byVariant[room.Variant]; ok && binding.Code == room.Code {
			byVariant[room.Variant] = Binding{Code: room.Code, PlayerIndex: i}
		}
	}
}

// UnbindRoom drops the binding of every player still seated in room
func (b *Binder) UnbindRoom(room *model.Room) {
	for _, p := range room.Players {
		if binding, ok := b.Lookup(p.ConnID, room.Variant); ok && binding.Code == room.Code {
			b.Unbind(p.ConnID, room.Variant)
		}
	}
}

// Count returns the number of connections with at least one binding
func (b *Binder) Count() int {
	return len(b.bindings)
}
