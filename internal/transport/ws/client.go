package ws

import (
	"context"
	"log/slog"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"mazerace/internal/model"
	"mazerace/internal/transport"
)

// sendBufferSize bounds the per-client outbound queue; the hub drops
// events for a client whose buffer stays full.
const sendBufferSize = 64

// writeTimeout bounds a single frame write to a slow socket.
const writeTimeout = 10 * time.Second

// Client is one live websocket connection bound to a resolved identity.
type Client struct {
	id          transport.ConnID
	username    string
	conn        *websocket.Conn
	send        chan model.Event
	connectedAt time.Time
	logger      *slog.Logger
}

// NewClient wraps an accepted websocket connection
func NewClient(id transport.ConnID, username string, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:          id,
		username:    username,
		conn:        conn,
		send:        make(chan model.Event, sendBufferSize),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("conn", string(id)),
			slog.String("username", username)),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() transport.ConnID { return c.id }

// Username returns the identity the connection was resolved to.
func (c *Client) Username() string { return c.username }

// WritePump drains the send buffer to the socket until the buffer is
// closed by the hub or a write fails. Runs in its own goroutine.
func (c *Client) WritePump(ctx context.Context) {
	for event := range c.send {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(writeCtx, c.conn, event)
		cancel()
		if err != nil {
			c.logger.Debug("ws write failed", slog.Any("error", err))
			return
		}
	}
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

// ReadEvent blocks for the next inbound client event.
func (c *Client) ReadEvent(ctx context.Context) (model.ClientEvent, error) {
	var event model.ClientEvent
	err := wsjson.Read(ctx, c.conn, &event)
	return event, err
}
