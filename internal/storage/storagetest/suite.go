// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/storage"
)

// Suite runs the shared storage contract. Backends embed it and set Storage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func record(id string, mode model.GameMode, ts int64) *model.GameRecord {
	winner := model.PlayerSnapshot{ID: "conn-a", Name: "Alice", Scores: []int{3000}, TotalScore: 3000}
	return &model.GameRecord{
		ID:        id,
		RoomCode:  "ROOM01",
		Players:   []model.PlayerSnapshot{winner, {ID: "conn-b", Name: "Bob", Scores: []int{100}, TotalScore: 100}},
		Winner:    winner,
		Rounds:    7,
		Timestamp: ts,
		GameMode:  mode,
	}
}

// Game history tests

func (s *Suite) TestSaveAndListGames() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, record("g1", model.GameModeStandard, 1000)))

	games, err := s.Storage.ListGames(s.Ctx, model.GameModeStandard, 10)
	s.Require().NoError(err)
	s.Require().Len(games, 1)

	g := games[0]
	s.Equal("g1", g.ID)
	s.Equal(model.RoomCode("ROOM01"), g.RoomCode)
	s.Equal(7, g.Rounds)
	s.Equal(int64(1000), g.Timestamp)
	s.Equal("Alice", g.Winner.Name)
	s.Len(g.Players, 2)
	s.Equal([]int{100}, g.Players[1].Scores)
}

func (s *Suite) TestListGamesNewestFirstWithLimit() {
	for i, ts := range []int64{3000, 1000, 5000, 2000} {
		id := string(rune('a' + i))
		s.Require().NoError(s.Storage.SaveGame(s.Ctx, record(id, model.GameModeDice, ts)))
	}

	games, err := s.Storage.ListGames(s.Ctx, model.GameModeDice, 3)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(int64(5000), games[0].Timestamp)
	s.Equal(int64(3000), games[1].Timestamp)
	s.Equal(int64(2000), games[2].Timestamp)
}

func (s *Suite) TestListGamesSeparatesModes() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, record("std", model.GameModeStandard, 1)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, record("dice", model.GameModeDice, 2)))

	games, err := s.Storage.ListGames(s.Ctx, model.GameModeDice, 10)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal("dice", games[0].ID)
}

func (s *Suite) TestListGamesEmpty() {
	games, err := s.Storage.ListGames(s.Ctx, model.GameModeStandard, 10)
	s.Require().NoError(err)
	s.Empty(games)
}

// Player stats tests

func (s *Suite) TestSaveAndGetPlayerStats() {
	stats := &model.PlayerStats{
		Name:         "Alice",
		TotalGames:   2,
		Wins:         1,
		TotalScore:   4200,
		HighestScore: 3100,
		LowestScore:  1100,
		GamesPlayed:  []string{"g1", "g2"},
		GameTypes: map[model.GameMode]model.ModeStats{
			model.GameModeDice: {Games: 1, Wins: 1, TotalScore: 3100},
		},
	}
	s.Require().NoError(s.Storage.SavePlayerStats(s.Ctx, "Alice", stats))

	got, err := s.Storage.GetPlayerStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(stats.TotalGames, got.TotalGames)
	s.Equal(stats.GamesPlayed, got.GamesPlayed)
	s.Equal(stats.GameTypes, got.GameTypes)
}

func (s *Suite) TestSavePlayerStatsOverwrites() {
	s.Require().NoError(s.Storage.SavePlayerStats(s.Ctx, "Bob", &model.PlayerStats{Name: "Bob", Wins: 1}))
	s.Require().NoError(s.Storage.SavePlayerStats(s.Ctx, "Bob", &model.PlayerStats{Name: "Bob", Wins: 2}))

	got, err := s.Storage.GetPlayerStats(s.Ctx, "Bob")
	s.Require().NoError(err)
	s.Equal(2, got.Wins)

	all, err := s.Storage.ListPlayerStats(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestGetPlayerStatsNotFound() {
	_, err := s.Storage.GetPlayerStats(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerStatsNotFound)
}

func (s *Suite) TestListPlayerStats() {
	s.Require().NoError(s.Storage.SavePlayerStats(s.Ctx, "Alice", &model.PlayerStats{Name: "Alice"}))
	s.Require().NoError(s.Storage.SavePlayerStats(s.Ctx, "Bob", &model.PlayerStats{Name: "Bob"}))

	all, err := s.Storage.ListPlayerStats(s.Ctx)
	s.Require().NoError(err)
	var names []string
	for _, p := range all {
		names = append(names, p.Name)
	}
	s.ElementsMatch([]string{"Alice", "Bob"}, names)
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}
