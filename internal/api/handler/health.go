package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/tresmil/internal/api/response"
	"github.com/mcoot/tresmil/internal/model"
)

// StoreChecker reads straight from the game store, bypassing any cache
type StoreChecker interface {
	Ping(ctx context.Context) error
	FetchGameHistory(ctx context.Context, limit int) ([]*model.GameRecord, error)
	FetchPlayerStats(ctx context.Context) ([]*model.PlayerStats, error)
}

// HealthHandler handles liveness and store diagnostics
type HealthHandler struct {
	store  StoreChecker
	logger *slog.Logger
	now    func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store StoreChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

// CheckDatabase handles GET /api/check-database
func (h *HealthHandler) CheckDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("game store ping failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusServiceUnavailable, response.DatabaseCheck{
			Connected: false,
			Message:   "Could not connect to the game store",
			Error:     err.Error(),
		})
		return
	}

	response.JSON(w, http.StatusOK, response.DatabaseCheck{
		Connected: true,
		Message:   "Game store connection established",
	})
}

// CheckDataRetrieval handles GET /api/check-data-retrieval.
// The newest game and all player stats are read concurrently.
func (h *HealthHandler) CheckDataRetrieval(w http.ResponseWriter, r *http.Request) {
	start := h.now()

	var (
		games   []*model.GameRecord
		players []*model.PlayerStats
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		games, err = h.store.FetchGameHistory(ctx, 1)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = h.store.FetchPlayerStats(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("data retrieval check failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusInternalServerError, response.DataRetrievalCheck{
			Success: false,
			Message: "Could not read from the game store",
			Error:   err.Error(),
		})
		return
	}

	elapsed := h.now().Sub(start)
	response.JSON(w, http.StatusOK, response.DataRetrievalCheck{
		Success: true,
		Message: "Data retrieval succeeded",
		Timing:  &response.Timing{Total: fmt.Sprintf("%dms", elapsed.Milliseconds())},
		Stats: &response.RetrievalStats{
			GamesRetrieved:   len(games),
			PlayersRetrieved: len(players),
		},
	})
}
