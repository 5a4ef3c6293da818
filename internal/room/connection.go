package room

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/pkg/proto"
)

// Broadcaster delivers a message to every connected client.
type Broadcaster interface {
	Broadcast(ctx context.Context, message *proto.ServerToClientMessage)
}

// broadcast sends message to all clients, if anyone is listening.
func (r *Room) broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	r.mu.RLock()
	b := r.broadcaster
	r.mu.RUnlock()
	if b == nil {
		return
	}

	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("message.type", message.Type),
	))
	defer span.End()
	b.Broadcast(ctx, message)
}

// StateMessage is the reply to a state request, also sent to every client
// when it connects.
func (r *Room) StateMessage(ctx context.Context) *proto.ServerToClientMessage {
	msg := updateMessage(r.State(ctx))
	msg.Type = proto.TypeState
	return msg
}

func updateMessage(res Result) *proto.ServerToClientMessage {
	state := res.State
	return &proto.ServerToClientMessage{
		Type:       proto.TypeUpdate,
		GameID:     res.GameID,
		State:      &state,
		Difficulty: res.Difficulty,
		Winner:     state.Winner(),
		Skipped:    res.Skipped,
	}
}
