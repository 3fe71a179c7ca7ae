package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are stored as copies so callers cannot mutate stored records.
type Storage struct {
	mu sync.RWMutex

	games       map[model.GameMode][]*model.GameRecord
	playerStats map[string]*model.PlayerStats
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:       make(map[model.GameMode][]*model.GameRecord),
		playerStats: make(map[string]*model.PlayerStats),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game history operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	cp, err := clone(game)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.GameMode] = append(s.games[game.GameMode], cp)
	return nil
}

func (s *Storage) ListGames(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]*model.GameRecord, 0, len(s.games[mode]))
	for _, g := range s.games[mode] {
		cp, err := clone(g)
		if err != nil {
			return nil, err
		}
		games = append(games, cp)
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Timestamp > games[j].Timestamp
	})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

// Player stats operations

func (s *Storage) SavePlayerStats(ctx context.Context, key string, stats *model.PlayerStats) error {
	cp, err := clone(stats)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerStats[key] = cp
	return nil
}

func (s *Storage) GetPlayerStats(ctx context.Context, key string) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.playerStats[key]
	if !ok {
		return nil, model.ErrPlayerStatsNotFound
	}
	return clone(stats)
}

func (s *Storage) ListPlayerStats(ctx context.Context) ([]*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.PlayerStats, 0, len(s.playerStats))
	for _, stats := range s.playerStats {
		cp, err := clone(stats)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Storage) Close() error {
	return nil
}

// clone deep-copies through JSON, matching what the other backends round-trip
func clone[T any](v *T) (*T, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
