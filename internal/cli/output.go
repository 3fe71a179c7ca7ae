package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/tresmil/internal/api/response"
	"github.com/mcoot/tresmil/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format  string
	verbose bool
	w       io.Writer
	errW    io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout, os.Stderr)
}

// NewOutputTo creates a new Output formatter writing to the given streams
func NewOutputTo(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Verbose toggles untruncated event payloads
func (o *Output) Verbose(v bool) *Output {
	o.verbose = v
	return o
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	case response.Refresh:
		o.printf("%s\n", v.Message)
	case response.DatabaseCheck:
		o.printDatabaseCheck(v)
	case response.DataRetrievalCheck:
		o.printDataRetrievalCheck(v)
	case []*model.GameRecord:
		o.printGames(v)
	case []*model.PlayerStats:
		o.printStats(v)
	case SocketEvent:
		o.printSocketEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printDatabaseCheck(c response.DatabaseCheck) {
	o.printf("Connected: %t\n", c.Connected)
	o.printf("%s\n", c.Message)
	if c.Error != "" {
		o.printf("Error: %s\n", c.Error)
	}
}

func (o *Output) printDataRetrievalCheck(c response.DataRetrievalCheck) {
	o.printf("Success: %t\n", c.Success)
	o.printf("%s\n", c.Message)
	if c.Error != "" {
		o.printf("Error: %s\n", c.Error)
	}
	if c.Timing != nil {
		o.printf("Took: %s\n", c.Timing.Total)
	}
	if c.Stats != nil {
		o.printf("Games read: %d\n", c.Stats.GamesRetrieved)
		o.printf("Players read: %d\n", c.Stats.PlayersRetrieved)
	}
}

func (o *Output) printGames(games []*model.GameRecord) {
	if len(games) == 0 {
		o.printf("No games recorded\n")
		return
	}
	for _, g := range games {
		played := time.UnixMilli(g.Timestamp).Format("2006-01-02 15:04")
		o.printf("[%s] %s %s: %s won with %d after %d rounds\n",
			played, g.GameMode, g.RoomCode, g.Winner.Name, g.Winner.TotalScore, g.Rounds)
		names := make([]string, 0, len(g.Players))
		for _, p := range g.Players {
			names = append(names, fmt.Sprintf("%s %d", p.Name, p.TotalScore))
		}
		o.printf("  %s\n", strings.Join(names, ", "))
	}
}

func (o *Output) printStats(stats []*model.PlayerStats) {
	if len(stats) == 0 {
		o.printf("No players recorded\n")
		return
	}
	o.printf("%-20s %6s %6s %8s %8s\n", "PLAYER", "GAMES", "WINS", "BEST", "DICE")
	for _, s := range stats {
		o.printf("%-20s %6d %6d %8d %3d/%-4d\n",
			s.Name, s.TotalGames, s.Wins, s.HighestScore, s.DiceWins, s.DiceGames)
	}
}

func (o *Output) printSocketEvent(e SocketEvent) {
	timestamp := e.Time.Format("15:04:05")
	// Truncate payload if it's too long for display
	display := string(e.Payload)
	if len(display) > 160 && !o.verbose {
		display = display[:160] + "..."
	}
	if e.Variant != "" {
		o.printf("[%s] %s (%s): %s\n", timestamp, e.Type, e.Variant, display)
		return
	}
	o.printf("[%s] %s: %s\n", timestamp, e.Type, display)
}
