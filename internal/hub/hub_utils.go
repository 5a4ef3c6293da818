package hub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pmercer01gh/easy-tic-tac-toe/pkg/proto"
)

const errNoSeat = "only the seat holder can play; claim the seat first"

// controls reports whether the client currently holds the seat.
func (c *Client) controls() bool {
	if c.player.IsSpectator() || c.hub.seats == nil {
		return false
	}
	return c.hub.seats.IsCurrent(c.player.SeatID)
}

func isStateRequest(raw []byte) bool {
	var msg proto.ClientToServerMessage
	return json.Unmarshal(raw, &msg) == nil && msg.Type == proto.TypeState
}

func encode(ctx context.Context, message *proto.ServerToClientMessage) ([]byte, bool) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return nil, false
	}
	return data, true
}

// reply sends message to this client only, through the hub so a client that
// was dropped meanwhile is skipped.
func (c *Client) reply(ctx context.Context, message *proto.ServerToClientMessage) {
	data, ok := encode(ctx, message)
	if !ok {
		return
	}
	select {
	case c.hub.direct <- envelope{client: c, data: data}:
	case <-c.hub.done:
	}
}
