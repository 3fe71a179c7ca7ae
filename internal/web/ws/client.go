package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/tresmil/internal/model"
)

// Config tunes connection keepalive, limits and command rate
type Config struct {
	WriteWait      time.Duration // time allowed to write a message to the peer
	PongWait       time.Duration // time allowed to read the next pong
	PingPeriod     time.Duration // must be less than PongWait
	MaxMessageSize int64
	SendBufferSize int

	// Commands per second and burst allowed per connection
	CommandRate  float64
	CommandBurst int
}

// DefaultConfig returns sensible defaults for websocket connections
func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 4096,
		SendBufferSize: 256,
		CommandRate:    10,
		CommandBurst:   20,
	}
}

// Client is one websocket connection
type Client struct {
	id          model.ConnID
	conn        *websocket.Conn
	send        chan []byte
	limiter     *rate.Limiter
	connectedAt time.Time
}

// NewClient creates a client with its own send buffer and rate limiter
func NewClient(id model.ConnID, conn *websocket.Conn, cfg Config) *Client {
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan []byte, cfg.SendBufferSize),
		limiter:     rate.NewLimiter(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
		connectedAt: time.Now(),
	}
}

// ID returns the connection id
func (c *Client) ID() model.ConnID {
	return c.id
}

// writePump sends queued messages and keepalive pings until the hub closes send
func (c *Client) writePump(cfg Config) {
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
