package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/tresmil/internal/api/request"
	"github.com/mcoot/tresmil/internal/api/response"
	"github.com/mcoot/tresmil/internal/model"
)

// HistoryCache serves history reads and can be refreshed on demand
type HistoryCache interface {
	History(ctx context.Context, limit int) ([]*model.GameRecord, error)
	Stats(ctx context.Context) ([]*model.PlayerStats, error)
	Refresh(ctx context.Context) error
}

// HistoryHandler handles game history and player stats endpoints
type HistoryHandler struct {
	cache  HistoryCache
	logger *slog.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(cache HistoryCache, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		cache:  cache,
		logger: logger,
	}
}

// Games handles GET /api/games/history
func (h *HistoryHandler) Games(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseHistoryQuery(r)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	games, err := h.cache.History(r.Context(), q.Limit)
	if err != nil {
		h.logger.Error("game history request failed", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	response.List(w, games)
}

// Players handles GET /api/players/stats
func (h *HistoryHandler) Players(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		h.logger.Error("player stats request failed", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	response.List(w, stats)
}

// Refresh handles POST /api/refresh-cache
func (h *HistoryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Refresh(r.Context()); err != nil {
		h.logger.Error("forced cache refresh failed", slog.String("error", err.Error()))
		response.JSON(w, http.StatusInternalServerError, response.Refresh{OK: false, Message: "Refresh failed"})
		return
	}

	response.JSON(w, http.StatusOK, response.Refresh{OK: true, Message: "Cache refreshed"})
}
