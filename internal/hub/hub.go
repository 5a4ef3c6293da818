// Package hub keeps the websocket clients of the table and fans room updates
// out to them.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
	"github.com/pmercer01gh/easy-tic-tac-toe/pkg/proto"
)

var tracer = otel.Tracer("hub")

// SeatChecker reports whether seatID still holds the controller seat.
type SeatChecker interface {
	IsCurrent(seatID string) bool
}

// Hub manages the clients watching or playing the room.
type Hub struct {
	room       *room.Room
	seats      SeatChecker
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan envelope
	done       chan struct{}
	count      atomic.Int64
}

// NewHub creates a new hub for r.
func NewHub(r *room.Room, seats SeatChecker) *Hub {
	return &Hub{
		room:       r,
		seats:      seats,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		direct:     make(chan envelope),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns when ctx is done, closing every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.unregisterClient(ctx, c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Hub stopping", "clients.count", len(h.clients))
			return

		case c := <-h.register:
			h.registerClient(ctx, c)

		case c := <-h.unregister:
			h.unregisterClient(ctx, c)

		case e := <-h.direct:
			if h.clients[e.client] {
				h.deliver(ctx, e.client, e.data)
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				h.deliver(ctx, c, data)
			}
		}
	}
}

// envelope is a message for a single client.
type envelope struct {
	client *Client
	data   []byte
}

// deliver runs on the Run goroutine.
func (h *Hub) deliver(ctx context.Context, c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		// The client's send buffer is full, drop it.
		slog.WarnContext(ctx, "Client too slow, disconnecting", "player.id", c.player.ID)
		h.unregisterClient(ctx, c)
	}
}

// Broadcast implements room.Broadcaster.
func (h *Hub) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	_, span := tracer.Start(ctx, "hub.Broadcast", trace.WithAttributes(
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	case <-ctx.Done():
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
