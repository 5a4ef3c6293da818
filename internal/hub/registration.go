package hub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/player"
)

// sendBufferSize is how many messages may queue for one client.
const sendBufferSize = 64

// Serve attaches p to the table: it receives the current state at once and
// every update after that. It returns after the client's pumps are started.
func (h *Hub) Serve(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "hub.Serve", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.Bool("player.spectator", p.IsSpectator()),
	))
	defer span.End()

	c := &Client{
		hub:    h,
		player: p,
		send:   make(chan []byte, sendBufferSize),
	}
	select {
	case h.register <- c:
	case <-h.done:
		p.Conn.Close()
		return
	}

	// The pumps outlive the request that created them.
	pumpCtx := context.WithoutCancel(ctx)
	go c.writePump(pumpCtx)
	go c.readPump(pumpCtx)
}

// registerClient adds a client to the table and queues the current state for
// it. Reading the state on the Run goroutine means the client's last message
// is always the latest state.
func (h *Hub) registerClient(ctx context.Context, c *Client) {
	if data, ok := encode(ctx, h.room.StateMessage(ctx)); ok {
		c.send <- data
	}
	h.clients[c] = true
	h.count.Store(int64(len(h.clients)))
	slog.InfoContext(ctx, "Client registered",
		"player.id", c.player.ID,
		"player.spectator", c.player.IsSpectator(),
		"clients.count", len(h.clients))
}

// unregisterClient removes a client and closes its send channel, which stops
// its write pump.
func (h *Hub) unregisterClient(ctx context.Context, c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
	slog.InfoContext(ctx, "Client unregistered", "player.id", c.player.ID, "clients.count", len(h.clients))
}
