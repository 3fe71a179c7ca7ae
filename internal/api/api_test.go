package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tresmil/internal/api"
	"github.com/mcoot/tresmil/internal/api/apierr"
	"github.com/mcoot/tresmil/internal/api/middleware"
	"github.com/mcoot/tresmil/internal/api/response"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/services/history"
	"github.com/mcoot/tresmil/internal/storage"
	"github.com/mcoot/tresmil/internal/storage/memory"
	"github.com/mcoot/tresmil/internal/testutil"
)

// flakyStore fails reads and pings while down is set
type flakyStore struct {
	storage.Storage
	down bool
}

var errStoreDown = errors.New("store down")

func (f *flakyStore) Ping(ctx context.Context) error {
	if f.down {
		return errStoreDown
	}
	return f.Storage.Ping(ctx)
}

func (f *flakyStore) ListGames(ctx context.Context, mode model.GameMode, limit int) ([]*model.GameRecord, error) {
	if f.down {
		return nil, errStoreDown
	}
	return f.Storage.ListGames(ctx, mode, limit)
}

func (f *flakyStore) ListPlayerStats(ctx context.Context) ([]*model.PlayerStats, error) {
	if f.down {
		return nil, errStoreDown
	}
	return f.Storage.ListPlayerStats(ctx)
}

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	store   *flakyStore
	service *history.Service
	cache   *history.Cache
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	store := &flakyStore{Storage: memory.New()}
	service := history.NewService(store, logger)
	cache := history.NewCache(service, logger)

	hash, err := middleware.HashSecret(secret)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Cache:             cache,
		Store:             service,
		RefreshSecretHash: hash,
	})

	return &testServer{
		handler: router,
		store:   store,
		service: service,
		cache:   cache,
	}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) recordGame(t *testing.T, mode model.GameMode, ts64 int64, winner string, score int) {
	t.Helper()
	snap := model.PlayerSnapshot{ID: "c-" + winner, Name: winner, Scores: []int{score}, TotalScore: score}
	_, err := ts.service.RecordGame(context.Background(), &model.GameRecord{
		RoomCode:  "ROOM01",
		Players:   []model.PlayerSnapshot{snap},
		Winner:    snap,
		Rounds:    3,
		Timestamp: ts64,
		GameMode:  mode,
	})
	require.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestGameHistoryEmpty(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/games/history")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGameHistoryMergesModesNewestFirst(t *testing.T) {
	ts := newTestServer(t, "")
	ts.recordGame(t, model.GameModeStandard, 1000, "Ana", 3100)
	ts.recordGame(t, model.GameModeDice, 3000, "Bea", 3050)
	ts.recordGame(t, model.GameModeStandard, 2000, "Cris", 3200)

	rr := ts.request(http.MethodGet, "/api/games/history?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)

	var games []*model.GameRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &games))
	require.Len(t, games, 2)
	assert.Equal(t, "Bea", games[0].Winner.Name)
	assert.Equal(t, model.GameModeDice, games[0].GameMode)
	assert.Equal(t, "Cris", games[1].Winner.Name)
}

func TestGameHistoryServedFromCache(t *testing.T) {
	ts := newTestServer(t, "")
	ts.recordGame(t, model.GameModeStandard, 1000, "Ana", 3100)
	require.NoError(t, ts.cache.Refresh(context.Background()))

	ts.store.down = true
	rr := ts.request(http.MethodGet, "/api/games/history")
	require.Equal(t, http.StatusOK, rr.Code)

	var games []*model.GameRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &games))
	assert.Len(t, games, 1)
}

func TestGameHistoryBadLimit(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/games/history?limit=lots")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeInvalidRequest, resp.Error.Code)
}

func TestGameHistoryStoreFailure(t *testing.T) {
	ts := newTestServer(t, "")
	ts.store.down = true

	rr := ts.request(http.MethodGet, "/api/games/history")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeStoreUnavailable, resp.Error.Code)
}

func TestPlayerStatsSortedByWins(t *testing.T) {
	ts := newTestServer(t, "")
	ts.recordGame(t, model.GameModeStandard, 1000, "Ana", 3100)
	ts.recordGame(t, model.GameModeStandard, 2000, "Bea", 3200)
	ts.recordGame(t, model.GameModeDice, 3000, "Bea", 3050)

	rr := ts.request(http.MethodGet, "/api/players/stats")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats []*model.PlayerStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "Bea", stats[0].Name)
	assert.Equal(t, 2, stats[0].Wins)
	assert.Equal(t, 1, stats[0].DiceWins)
	assert.Equal(t, "Ana", stats[1].Name)
}

func TestRefreshCacheOpenWithoutSecret(t *testing.T) {
	ts := newTestServer(t, "")
	ts.recordGame(t, model.GameModeStandard, 1000, "Ana", 3100)

	rr := ts.request(http.MethodPost, "/api/refresh-cache")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.Refresh
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)

	ts.store.down = true
	games, err := ts.cache.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestRefreshCacheRequiresSecret(t *testing.T) {
	ts := newTestServer(t, "hunter2")

	rr := ts.request(http.MethodPost, "/api/refresh-cache")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Unauthorized"}`, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/refresh-cache?secret=wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/refresh-cache?secret=hunter2")
	assert.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-cache", nil)
	req.Header.Set("X-Refresh-Secret", "hunter2")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshCacheFailure(t *testing.T) {
	ts := newTestServer(t, "")
	ts.store.down = true

	rr := ts.request(http.MethodPost, "/api/refresh-cache")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp response.Refresh
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
}

func TestWrongMethodIsNotRouted(t *testing.T) {
	ts := newTestServer(t, "")

	// Every route is registered for one method; anything else falls through to 404
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/refresh-cache"},
		{http.MethodPost, "/api/games/history"},
		{http.MethodPost, "/api/check-database"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := ts.request(tt.method, tt.path)
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestCheckDatabase(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/check-database")
	require.Equal(t, http.StatusOK, rr.Code)
	var ok response.DatabaseCheck
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ok))
	assert.True(t, ok.Connected)

	ts.store.down = true
	rr = ts.request(http.MethodGet, "/api/check-database")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var down response.DatabaseCheck
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &down))
	assert.False(t, down.Connected)
	assert.NotEmpty(t, down.Error)
}

func TestCheckDataRetrieval(t *testing.T) {
	ts := newTestServer(t, "")
	ts.recordGame(t, model.GameModeStandard, 1000, "Ana", 3100)
	ts.recordGame(t, model.GameModeDice, 2000, "Bea", 3050)

	rr := ts.request(http.MethodGet, "/api/check-data-retrieval")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.DataRetrievalCheck
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Timing)
	assert.Regexp(t, `^\d+ms$`, resp.Timing.Total)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 1, resp.Stats.GamesRetrieved)
	assert.Equal(t, 2, resp.Stats.PlayersRetrieved)
}

func TestCheckDataRetrievalFailure(t *testing.T) {
	ts := newTestServer(t, "")
	ts.store.down = true

	rr := ts.request(http.MethodGet, "/api/check-data-retrieval")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp response.DataRetrievalCheck
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Stats)
}

func TestUnknownRouteNotFound(t *testing.T) {
	ts := newTestServer(t, "")

	rr := ts.request(http.MethodGet, "/api/lobbies")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestResponsesAreNotCached(t *testing.T) {
	ts := newTestServer(t, "")

	for _, path := range []string{"/api/games/history", "/api/players/stats", "/api/health"} {
		rr := ts.request(http.MethodGet, path)
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"), path)
	}
}

func TestPanicAnsweredWithRequestID(t *testing.T) {
	handler := middleware.Logging(testutil.NopLogger())(
		middleware.Recovery(testutil.NopLogger())(
			http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeInternalError, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestWithRequestIDKeepsStatus(t *testing.T) {
	err := apierr.WithRequestID(apierr.NewUnauthorizedError(), "req-7")
	assert.Equal(t, http.StatusUnauthorized, apierr.Status(err))

	rr := httptest.NewRecorder()
	apierr.WriteError(rr, err)
	assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Authentication required","requestId":"req-7"}}`, rr.Body.String())

	plain := apierr.NewUnauthorizedError()
	assert.Same(t, plain, apierr.WithRequestID(plain, ""))
}
