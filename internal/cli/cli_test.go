package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tresmil/internal/factory"
	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/protocol"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want protocol.InboundFrame
	}{
		{
			name: "bare command",
			line: "start-game",
			want: protocol.InboundFrame{Type: protocol.CmdStartGame},
		},
		{
			name: "create with fields",
			line: "create-room variant=dice name=Ana max=4",
			want: protocol.InboundFrame{
				Type:       protocol.CmdCreateRoom,
				Variant:    model.VariantDice,
				PlayerName: "Ana",
				MaxPlayers: 4,
			},
		},
		{
			name: "long key names",
			line: "join-room roomCode=ab12cd playerName=Bea",
			want: protocol.InboundFrame{Type: protocol.CmdJoinRoom, RoomCode: "ab12cd", PlayerName: "Bea"},
		},
		{
			name: "raw json",
			line: `{"type":"get-game-history","limit":5}`,
			want: protocol.InboundFrame{Type: protocol.CmdGetGameHistory, Limit: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandLineErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"unknown command", "shuffle", "unknown command"},
		{"missing equals", "join-room AB12CD", "expected key=value"},
		{"unknown key", "create-room colour=red", "unknown key"},
		{"non-numeric max", "create-room max=lots", "must be a number"},
		{"join without room", "join-room name=Bea", "roomCode is required"},
		{"wrong variant", "request-dice-roll variant=simple", "dice command"},
		{"broken json", `{"type":`, "malformed JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommandLine(tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:3002/ws", NewClient("http://localhost:3002/").WebSocketURL())
	assert.Equal(t, "wss://tresmil.example/ws", NewClient("https://tresmil.example").WebSocketURL())
}

func TestOutputText(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo("text", &buf, io.Discard)

	out.Print([]*model.PlayerStats{{Name: "Ana", TotalGames: 3, Wins: 2, HighestScore: 3150, DiceGames: 1, DiceWins: 1}})
	assert.Contains(t, buf.String(), "PLAYER")
	assert.Contains(t, buf.String(), "Ana")
	assert.Contains(t, buf.String(), "3150")

	buf.Reset()
	out.Print([]*model.GameRecord{})
	assert.Equal(t, "No games recorded\n", buf.String())

	buf.Reset()
	long := json.RawMessage(`"` + strings.Repeat("x", 300) + `"`)
	out.Print(SocketEvent{Time: time.Now(), Type: model.EventGameHistory, Payload: long})
	assert.Contains(t, buf.String(), "game-history: ")
	assert.Contains(t, buf.String(), "...")

	buf.Reset()
	out.Verbose(true).Print(SocketEvent{Time: time.Now(), Type: model.EventGameHistory, Payload: long})
	assert.NotContains(t, buf.String(), "...")
}

func TestOutputErrorJSON(t *testing.T) {
	var errBuf bytes.Buffer
	NewOutputTo("json", io.Discard, &errBuf).PrintError(errors.New("boom"))
	assert.JSONEq(t, `{"error":{"message":"boom"}}`, errBuf.String())
}

// cliHarness runs the root command in-process against a test server
type cliHarness struct {
	app    *factory.TestApp
	server *httptest.Server
}

func newCLIHarness(t *testing.T, appCfg factory.Config) *cliHarness {
	t.Helper()

	app := factory.NewTestApp(appCfg)
	server := httptest.NewServer(app.Handler(""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, time.Hour) }()

	t.Cleanup(func() {
		server.Close()
		cancel()
		assert.NoError(t, <-done)
		assert.NoError(t, app.Close())
	})
	return &cliHarness{app: app, server: server}
}

func (h *cliHarness) run(stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--server", h.server.URL, "--output", "json"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *cliHarness) recordGame(t *testing.T, winner string, score int) {
	t.Helper()
	snap := model.PlayerSnapshot{ID: "c-" + winner, Name: winner, Scores: []int{score}, TotalScore: score}
	_, err := h.app.HistoryService.RecordGame(context.Background(), &model.GameRecord{
		RoomCode:  "ROOM01",
		Players:   []model.PlayerSnapshot{snap},
		Winner:    snap,
		Rounds:    4,
		Timestamp: testEpochMillis,
		GameMode:  model.GameModeStandard,
	})
	require.NoError(t, err)
}

var testEpochMillis = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

func TestHealthCommand(t *testing.T) {
	h := newCLIHarness(t, factory.Config{})

	out, _, err := h.run("", "health")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, out)
}

func TestHistoryAndStatsCommands(t *testing.T) {
	h := newCLIHarness(t, factory.Config{})
	h.recordGame(t, "Ana", 3100)
	h.recordGame(t, "Bea", 3050)

	out, _, err := h.run("", "history", "--limit", "1")
	require.NoError(t, err)
	var games []*model.GameRecord
	require.NoError(t, json.Unmarshal([]byte(out), &games))
	assert.Len(t, games, 1)

	out, _, err = h.run("", "stats")
	require.NoError(t, err)
	var stats []*model.PlayerStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Len(t, stats, 2)
}

func TestRefreshCacheCommand(t *testing.T) {
	h := newCLIHarness(t, factory.Config{RefreshSecret: "hunter2"})

	_, _, err := h.run("", "refresh-cache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")

	out, _, err := h.run("", "refresh-cache", "--secret", "hunter2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"message":"Cache refreshed"}`, out)
}

func TestCheckCommands(t *testing.T) {
	h := newCLIHarness(t, factory.Config{})
	h.recordGame(t, "Ana", 3100)

	out, _, err := h.run("", "check", "database")
	require.NoError(t, err)
	assert.Contains(t, out, `"connected": true`)

	out, _, err = h.run("", "check", "data")
	require.NoError(t, err)
	assert.Contains(t, out, `"gamesRetrieved": 1`)
}

func TestPlayCommand(t *testing.T) {
	h := newCLIHarness(t, factory.Config{})
	h.app.MockRandom.QueueString("ROOM01")

	stdin := "# set up a room\ncreate-room name=Ana max=3\nshuffle\nget-player-stats\n"
	out, stderr, err := h.run(stdin, "play", "--linger", "300ms")
	require.NoError(t, err)
	assert.Contains(t, stderr, "unknown command")

	var types []model.EventType
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var evt SocketEvent
		require.NoError(t, dec.Decode(&evt))
		types = append(types, evt.Type)
		if evt.Type == model.EventRoomCreated {
			var payload model.RoomCreatedPayload
			require.NoError(t, json.Unmarshal(evt.Payload, &payload))
			assert.Equal(t, model.RoomCode("ROOM01"), payload.RoomCode)
			assert.Equal(t, 3, payload.MaxPlayers)
		}
	}
	assert.Contains(t, types, model.EventRoomCreated)
	assert.Contains(t, types, model.EventPlayerStats)
}
