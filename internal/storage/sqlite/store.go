// Package sqlite provides a SQLite-backed history storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists game history and player stats in SQLite.
// Records are kept as JSON documents next to the columns used for ordering.
type Store struct {
	sqlDB *sql.DB
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite store and applies the embedded schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// SaveGame inserts or replaces one game record.
func (s *Store) SaveGame(ctx context.Context, game *model.GameRecord) error {
	if strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO games (id, mode, ts, data) VALUES (?, ?, ?, ?)`,
		game.ID, string(game.GameMode), game.Timestamp, string(data),
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// ListGames returns up to limit games of one mode, newest first.
func (s *Store) ListGames(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT data FROM games WHERE mode = ? ORDER BY ts DESC LIMIT ?`,
		string(mode), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []*model.GameRecord{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		var game model.GameRecord
		if err := json.Unmarshal([]byte(data), &game); err != nil {
			return nil, fmt.Errorf("decode game: %w", err)
		}
		games = append(games, &game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// SavePlayerStats upserts one player's stats.
func (s *Store) SavePlayerStats(ctx context.Context, key string, stats *model.PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode player stats: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO player_stats (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, string(data), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save player stats: %w", err)
	}
	return nil
}

// GetPlayerStats returns one player's stats.
func (s *Store) GetPlayerStats(ctx context.Context, key string) (*model.PlayerStats, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM player_stats WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerStatsNotFound
		}
		return nil, fmt.Errorf("get player stats: %w", err)
	}
	var stats model.PlayerStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, fmt.Errorf("decode player stats: %w", err)
	}
	return &stats, nil
}

// ListPlayerStats returns every player's stats.
func (s *Store) ListPlayerStats(ctx context.Context) ([]*model.PlayerStats, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT data FROM player_stats ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}
	defer rows.Close()

	out := []*model.PlayerStats{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan player stats: %w", err)
		}
		var stats model.PlayerStats
		if err := json.Unmarshal([]byte(data), &stats); err != nil {
			return nil, fmt.Errorf("decode player stats: %w", err)
		}
		out = append(out, &stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player stats: %w", err)
	}
	return out, nil
}
