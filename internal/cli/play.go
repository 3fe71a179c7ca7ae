package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/tresmil/internal/model"
	"github.com/mcoot/tresmil/internal/protocol"
)

func newPlayCmd() *cobra.Command {
	var linger time.Duration

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open a game socket and send commands typed on stdin",
		Long: `Connect to the server's websocket and play interactively.

Each input line is one command: the command type followed by key=value
fields, or a raw JSON frame. For example:

  create-room variant=dice name=Ana max=4
  join-room room=AB12CD name=Bea
  start-game
  request-dice-roll
  dice-finish-turn
  get-game-history limit=5

Recognised keys are variant, name, room, max and limit. Every event the
server sends is printed as it arrives. Press Ctrl+C or close stdin to
disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return play(ctx, cmd.InOrStdin(), newOutput(cmd), linger)
		},
	}

	cmd.Flags().DurationVar(&linger, "linger", 500*time.Millisecond, "How long to keep printing events after stdin closes")

	return cmd
}

// SocketEvent is one server event as printed by the play command
type SocketEvent struct {
	Time    time.Time       `json:"time"`
	Type    model.EventType `json:"type"`
	Variant model.Variant   `json:"variant,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func play(ctx context.Context, in io.Reader, out *Output, linger time.Duration) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, client.WebSocketURL(), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if out.format != "json" {
		out.PrintMessage("Connected to " + client.WebSocketURL())
	}

	g, ctx := errgroup.WithContext(ctx)
	readDone := make(chan struct{})

	g.Go(func() error {
		defer close(readDone)
		return readEvents(ctx, conn, out)
	})

	g.Go(func() error {
		if err := sendCommands(ctx, conn, in, out); err != nil {
			return err
		}
		// Give in-flight events a chance to arrive before hanging up
		select {
		case <-time.After(linger):
		case <-ctx.Done():
		case <-readDone:
			return nil
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return conn.Close()
	})

	// Unblock the reader on Ctrl+C
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	err = g.Wait()
	if out.format != "json" {
		out.PrintMessage("Disconnected")
	}
	return err
}

func readEvents(ctx context.Context, conn *websocket.Conn, out *Output) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		frame, err := protocol.DecodeEvent(data)
		if err != nil {
			out.PrintError(err)
			continue
		}
		out.Print(SocketEvent{
			Time:    time.Now(),
			Type:    frame.Type,
			Variant: frame.Variant,
			Payload: frame.Payload,
		})
	}
}

func sendCommands(ctx context.Context, conn *websocket.Conn, in io.Reader, out *Output) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		frame, err := ParseCommandLine(line)
		if err != nil {
			out.PrintError(err)
			continue
		}
		data, err := json.Marshal(frame)
		if err != nil {
			return fmt.Errorf("encode command: %w", err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return fmt.Errorf("send command: %w", err)
		}
	}
	return scanner.Err()
}

// ParseCommandLine turns "type key=value ..." or a raw JSON frame into a
// client frame, validating it the way the server will.
func ParseCommandLine(line string) (protocol.InboundFrame, error) {
	var frame protocol.InboundFrame

	if strings.HasPrefix(line, "{") {
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			return frame, fmt.Errorf("malformed JSON frame: %w", err)
		}
	} else {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return frame, errors.New("empty command")
		}
		frame.Type = protocol.CommandType(fields[0])
		for _, field := range fields[1:] {
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				return frame, fmt.Errorf("expected key=value, got %q", field)
			}
			if err := setField(&frame, key, value); err != nil {
				return frame, err
			}
		}
	}

	if _, err := frame.Command(); err != nil {
		return frame, err
	}
	return frame, nil
}

func setField(frame *protocol.InboundFrame, key, value string) error {
	switch key {
	case "variant":
		frame.Variant = model.Variant(value)
	case "name", "playerName":
		frame.PlayerName = value
	case "room", "roomCode":
		frame.RoomCode = value
	case "max", "maxPlayers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number, got %q", key, value)
		}
		frame.MaxPlayers = n
	case "limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number, got %q", key, value)
		}
		frame.Limit = n
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
