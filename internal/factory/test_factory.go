package factory

import (
	"io"
	"log/slog"

	"github.com/mcoot/tresmil/internal/dependencies/mocks"
	"github.com/mcoot/tresmil/internal/storage/memory"
	"github.com/mcoot/tresmil/internal/testutil"
	"github.com/mcoot/tresmil/internal/web/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Websocket rate limits are lifted so tests can send commands back to back.
func NewTestApp(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(testutil.Epoch)
	mockRandom := mocks.NewMockRandom()

	if cfg.WSConfig == nil {
		wsConfig := ws.DefaultConfig()
		wsConfig.CommandRate = 1000
		wsConfig.CommandBurst = 1000
		cfg.WSConfig = &wsConfig
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, logger)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
