package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/storage"
)

// Service records finished games and aggregates per-player statistics
type Service struct {
	store  storage.Storage
	logger *slog.Logger
	newID  func() string
}

// NewService creates a history Service over the given store
func NewService(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

var playerKeyReplacer = strings.NewReplacer(
	".", "_",
	"#", "_",
	"$", "_",
	"/", "_",
	"[", "_",
	"]", "_",
)

// EncodePlayerName turns a display name into a storage key
func EncodePlayerName(name string) string {
	return playerKeyReplacer.Replace(name)
}

// RecordGame stores a finished simple-variant game and updates player stats.
// It returns the assigned game id.
func (s *Service) RecordGame(ctx context.Context, rec *model.GameRecord) (string, error) {
	if rec.GameMode == "" {
		rec.GameMode = model.GameModeStandard
	}
	return s.record(ctx, rec)
}

// RecordDiceGame stores a finished dice game and updates player stats
func (s *Service) RecordDiceGame(ctx context.Context, rec *model.GameRecord) (string, error) {
	rec.GameMode = model.GameModeDice
	return s.record(ctx, rec)
}

func (s *Service) record(ctx context.Context, rec *model.GameRecord) (string, error) {
	rec.ID = s.newID()
	if err := s.store.SaveGame(ctx, rec); err != nil {
		return "", fmt.Errorf("save game %s: %w: %w", rec.ID, model.ErrPersistenceFailure, err)
	}

	s.logger.Info("game recorded",
		slog.String("game_id", rec.ID),
		slog.String("mode", string(rec.GameMode)),
		slog.String("room", string(rec.RoomCode)),
	)

	if err := s.updatePlayerStats(ctx, rec); err != nil {
		return rec.ID, err
	}
	return rec.ID, nil
}

func (s *Service) updatePlayerStats(ctx context.Context, rec *model.GameRecord) error {
	for _, player := range rec.Players {
		if player.Name == "" {
			continue
		}
		isWinner := player.ID == rec.Winner.ID
		score := player.TotalScore
		key := EncodePlayerName(player.Name)

		stats, err := s.store.GetPlayerStats(ctx, key)
		switch {
		case errors.Is(err, model.ErrPlayerStatsNotFound):
			stats = &model.PlayerStats{
				Name:        player.Name,
				LowestScore: max(score, 0),
			}
		case err != nil:
			return fmt.Errorf("load stats for %q: %w: %w", player.Name, model.ErrPersistenceFailure, err)
		}

		applyResult(stats, rec, isWinner, score)

		if err := s.store.SavePlayerStats(ctx, key, stats); err != nil {
			return fmt.Errorf("save stats for %q: %w: %w", player.Name, model.ErrPersistenceFailure, err)
		}
	}
	return nil
}

func applyResult(stats *model.PlayerStats, rec *model.GameRecord, isWinner bool, score int) {
	stats.TotalGames++
	if isWinner {
		stats.Wins++
	}
	stats.TotalScore += score
	stats.HighestScore = max(stats.HighestScore, score)
	if score > 0 && (stats.LowestScore == 0 || score < stats.LowestScore) {
		stats.LowestScore = score
	}
	stats.GamesPlayed = append(stats.GamesPlayed, rec.ID)

	if stats.GameTypes == nil {
		stats.GameTypes = make(map[model.GameMode]model.ModeStats)
	}
	mode := rec.GameMode
	if mode == "" {
		mode = model.GameModeStandard
	}
	agg := stats.GameTypes[mode]
	agg.Games++
	if isWinner {
		agg.Wins++
	}
	agg.TotalScore += score
	stats.GameTypes[mode] = agg
}

// FetchGameHistory returns up to limit games across both modes, newest first
func (s *Service) FetchGameHistory(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	var all []*model.GameRecord
	for _, mode := range []model.GameMode{model.GameModeStandard, model.GameModeDice} {
		games, err := s.store.ListGames(ctx, mode, limit)
		if err != nil {
			return nil, fmt.Errorf("list %s games: %w: %w", mode, model.ErrPersistenceFailure, err)
		}
		all = append(all, games...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp > all[j].Timestamp
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// FetchDiceGameHistory returns up to limit dice games, newest first
func (s *Service) FetchDiceGameHistory(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	games, err := s.store.ListGames(ctx, model.GameModeDice, limit)
	if err != nil {
		return nil, fmt.Errorf("list dice games: %w: %w", model.ErrPersistenceFailure, err)
	}
	return games, nil
}

// FetchPlayerStats returns every player's stats, most wins first
func (s *Service) FetchPlayerStats(ctx context.Context) ([]*model.PlayerStats, error) {
	players, err := s.store.ListPlayerStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w: %w", model.ErrPersistenceFailure, err)
	}
	for _, p := range players {
		p.DeriveDiceTotals()
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Wins > players[j].Wins
	})
	return players, nil
}

// Ping checks the underlying store
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
