package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/tresmil/internal/api"
	apimiddleware "github.com/mcoot/tresmil/internal/api/middleware"
	"github.com/mcoot/tresmil/internal/dependencies/clock"
	"github.com/mcoot/tresmil/internal/dependencies/random"
	"github.com/mcoot/tresmil/internal/dispatch"
	"github.com/mcoot/tresmil/internal/services/dice"
	"github.com/mcoot/tresmil/internal/services/game"
	"github.com/mcoot/tresmil/internal/services/history"
	"github.com/mcoot/tresmil/internal/services/lobby"
	"github.com/mcoot/tresmil/internal/services/session"
	"github.com/mcoot/tresmil/internal/storage"
	"github.com/mcoot/tresmil/internal/storage/memory"
	redisstorage "github.com/mcoot/tresmil/internal/storage/redis"
	"github.com/mcoot/tresmil/internal/storage/sqlite"
	"github.com/mcoot/tresmil/internal/web"
	"github.com/mcoot/tresmil/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game state, owned by the engine goroutine
	Registry       *lobby.Registry
	Binder         *session.Binder
	GameController *game.Controller
	DiceService    *dice.Service
	Engine         *dispatch.Engine

	// History
	HistoryService *history.Service
	Recorder       *history.Recorder
	Cache          *history.Cache

	// Transport
	Hub       *ws.Hub
	WSHandler *ws.Handler

	refreshSecretHash []byte
	logger            *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// RecorderBuffer bounds the queue of finished games awaiting persistence
	RecorderBuffer int
	// RefreshSecret guards POST /api/refresh-cache when set
	RefreshSecret string
	// Timings overrides the engine's animation and teardown delays (optional)
	Timings *dispatch.Timings
	// WSConfig overrides websocket limits (optional)
	WSConfig *ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	hash, err := apimiddleware.HashSecret(cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("hash refresh secret: %w", err)
	}

	timings := dispatch.DefaultTimings()
	if cfg.Timings != nil {
		timings = *cfg.Timings
	}
	wsConfig := ws.DefaultConfig()
	if cfg.WSConfig != nil {
		wsConfig = *cfg.WSConfig
	}

	// Create services
	historyService := history.NewService(store, logger)
	recorder := history.NewRecorder(historyService, cfg.RecorderBuffer, logger)
	cache := history.NewCache(historyService, logger)

	registry := lobby.NewRegistry(clk, rnd, logger)
	binder := session.NewBinder()
	gameController := game.NewController(clk, logger)
	diceService := dice.New(rnd)

	hub := ws.NewHub(logger)
	engine := dispatch.NewEngine(registry, binder, gameController, diceService, hub, recorder, clk, timings, logger)
	wsHandler := ws.NewHandler(hub, engine, cache, wsConfig, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Registry:          registry,
		Binder:            binder,
		GameController:    gameController,
		DiceService:       diceService,
		Engine:            engine,
		HistoryService:    historyService,
		Recorder:          recorder,
		Cache:             cache,
		Hub:               hub,
		WSHandler:         wsHandler,
		refreshSecretHash: hash,
		logger:            logger,
	}, nil
}

// Handler combines the API router with the websocket and static file router
func (a *App) Handler(staticDir string) http.Handler {
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:            a.logger,
		Cache:             a.Cache,
		Store:             a.HistoryService,
		RefreshSecretHash: a.refreshSecretHash,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:    a.logger,
		WebSocket: a.WSHandler,
		StaticDir: staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}

// Run drives the hub, engine, recorder and cache refresh loop until ctx is
// cancelled or one of them fails
func (a *App) Run(ctx context.Context, cacheRefresh time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Hub.Run(ctx) })
	g.Go(func() error { return a.Engine.Run(ctx) })
	g.Go(func() error { return a.Recorder.Run(ctx) })
	g.Go(func() error { return a.Cache.Run(ctx, cacheRefresh) })
	return g.Wait()
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
