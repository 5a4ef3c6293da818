package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/player"
	"github.com/pmercer01gh/easy-tic-tac-toe/pkg/proto"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one websocket connection to the table.
type Client struct {
	hub    *Hub
	player *player.Player
	send   chan []byte
}

// readPump forwards commands from the connection to the room. Spectators
// may only ask for the state.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.player.Conn.Close()
	}()

	conn := c.player.Conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.WarnContext(ctx, "WebSocket error", "player.id", c.player.ID, "error", err)
			}
			return
		}
		c.handle(ctx, raw)
	}
}

// handle runs one command and answers the sender when nobody else will.
func (c *Client) handle(ctx context.Context, raw []byte) {
	ctx, span := tracer.Start(ctx, "hub.handleMessage", trace.WithAttributes(
		attribute.String("player.id", c.player.ID),
	))
	defer span.End()

	if !c.controls() && !isStateRequest(raw) {
		slog.WarnContext(ctx, "Ignoring command from a client without the seat", "player.id", c.player.ID)
		span.SetAttributes(attribute.Bool("player.controller", false))
		c.reply(ctx, proto.NewError(errNoSeat))
		return
	}

	reply, err := c.hub.room.HandleMessage(ctx, raw)
	if err != nil {
		span.RecordError(err)
	}
	// Updates reach the sender through the broadcast.
	if reply != nil && (reply.Type == proto.TypeError || reply.Type == proto.TypeState) {
		c.reply(ctx, reply)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	conn := c.player.Conn
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.WarnContext(ctx, "error writing message to player", "player.id", c.player.ID, "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
