package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/tresmil/internal/model"
)

const (
	// CacheHistoryLimit is the number of games kept warm
	CacheHistoryLimit = 50
	// DefaultCacheRefresh is the interval between background refreshes
	DefaultCacheRefresh = 60 * time.Second
)

// Cache keeps recent history and player stats in memory for the read endpoints.
// Reads fall through to the Service while the cache is empty.
type Cache struct {
	service *Service
	logger  *slog.Logger

	mu    sync.RWMutex
	games []*model.GameRecord
	stats []*model.PlayerStats
}

// NewCache creates an empty Cache
func NewCache(service *Service, logger *slog.Logger) *Cache {
	return &Cache{
		service: service,
		logger:  logger,
	}
}

// Refresh reloads history and stats from the store
func (c *Cache) Refresh(ctx context.Context) error {
	games, err := c.service.FetchGameHistory(ctx, CacheHistoryLimit)
	if err != nil {
		return err
	}
	stats, err := c.service.FetchPlayerStats(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.games = games
	c.stats = stats
	c.mu.Unlock()

	c.logger.Debug("cache refreshed",
		slog.Int("games", len(games)),
		slog.Int("players", len(stats)),
	)
	return nil
}

// History returns up to limit recent games
func (c *Cache) History(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	c.mu.RLock()
	cached := c.games
	c.mu.RUnlock()

	if len(cached) > 0 {
		if limit >= 0 && limit < len(cached) {
			cached = cached[:limit]
		}
		return cached, nil
	}
	return c.service.FetchGameHistory(ctx, limit)
}

// Stats returns every player's stats, most wins first
func (c *Cache) Stats(ctx context.Context) ([]*model.PlayerStats, error) {
	c.mu.RLock()
	cached := c.stats
	c.mu.RUnlock()

	if len(cached) > 0 {
		return cached, nil
	}
	return c.service.FetchPlayerStats(ctx)
}

// Run refreshes immediately and then on every interval until ctx is cancelled.
// Refresh failures are logged and the previous contents kept.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultCacheRefresh
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial cache load failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Error("cache refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
