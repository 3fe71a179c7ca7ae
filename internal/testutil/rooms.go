package testutil

import (
	"fmt"
	"time"

	"github.com/mcoot/tresmil/internal/model"
)

// Epoch is the fixed start time used by mock clocks in tests
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewRoom builds a waiting room with n players seated as conn-0..conn-(n-1).
// conn-0 is the creator.
func NewRoom(variant model.Variant, n int) *model.Room {
	room := model.NewRoom("ROOM01", variant, model.NewPlayer("conn-0", "Player 0"), model.DefaultMaxPlayers, Epoch)
	for i := 1; i < n; i++ {
		room.Players = append(room.Players, model.NewPlayer(ConnID(i), fmt.Sprintf("Player %d", i)))
	}
	return room
}

// ConnID returns the connection id NewRoom gives seat i
func ConnID(i int) model.ConnID {
	return model.ConnID(fmt.Sprintf("conn-%d", i))
}

// SetBanked overwrites a player's banked scores, keeping the total consistent
func SetBanked(p *model.Player, scores ...int) {
	p.ResetScores()
	for _, s := range scores {
		p.Bank(s)
	}
}
