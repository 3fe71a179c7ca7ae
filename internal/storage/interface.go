package storage

import (
	"context"

	"github.com/mcoot/tresmil/internal/model"
)

// Storage persists finished games and aggregate player statistics.
// It is never on the gameplay path: only the history recorder and the
// read side of the HTTP API touch it.
type Storage interface {
	// Game history operations
	SaveGame(ctx context.Context, game *model.GameRecord) error
	// ListGames returns up to limit games of one mode, newest first
	ListGames(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameRecord, error)

	// Player stats operations, keyed by encoded player name
	SavePlayerStats(ctx context.Context, key string, stats *model.PlayerStats) error
	GetPlayerStats(ctx context.Context, key string) (*model.PlayerStats, error)
	ListPlayerStats(ctx context.Context) ([]*model.PlayerStats, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}
