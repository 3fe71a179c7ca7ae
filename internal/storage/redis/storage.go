package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game history operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	pipe.ZAdd(ctx, gamesByModeIndexKey(game.GameMode), redis.Z{
		Score:  float64(game.Timestamp),
		Member: game.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGames(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	indexKey := gamesByModeIndexKey(mode)
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.GameRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, gameKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	games := make([]*model.GameRecord, 0, len(ids))
	var expired []any
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				expired = append(expired, ids[i])
				continue
			}
			return nil, err
		}
		var game model.GameRecord
		if err := json.Unmarshal(data, &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}

	if len(expired) > 0 {
		// Best-effort; the entries are skipped either way
		_ = s.client.ZRem(ctx, indexKey, expired...).Err()
	}
	return games, nil
}

// Player stats operations

func (s *Storage) SavePlayerStats(ctx context.Context, key string, stats *model.PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerStatsKey(key), data, 0) // No TTL
	pipe.SAdd(ctx, playerStatsIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayerStats(ctx context.Context, key string) (*model.PlayerStats, error) {
	data, err := s.client.Get(ctx, playerStatsKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerStatsNotFound
		}
		return nil, err
	}

	var stats model.PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Storage) ListPlayerStats(ctx context.Context) ([]*model.PlayerStats, error) {
	keys, err := s.client.SMembers(ctx, playerStatsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.PlayerStats{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, playerStatsKey(key))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]*model.PlayerStats, 0, len(keys))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var stats model.PlayerStats
		if err := json.Unmarshal(data, &stats); err != nil {
			return nil, err
		}
		out = append(out, &stats)
	}
	return out, nil
}
