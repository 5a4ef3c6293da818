package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/validator"
	"github.com/pmercer01gh/easy-tic-tac-toe/pkg/proto"
)

// ErrBadMessage is returned for commands that cannot be decoded or fail
// validation.
var ErrBadMessage = errors.New("bad message")

// HandleMessage decodes a client command and runs it. The reply is an error
// message when err is non-nil, a state message for "state", and otherwise
// the same update every client receives through the broadcaster.
func (r *Room) HandleMessage(ctx context.Context, rawMessage []byte) (*proto.ServerToClientMessage, error) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage")
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		err = fmt.Errorf("%w: %v", ErrBadMessage, err)
		return proto.NewError(err.Error()), err
	}

	if err := validateMessage(&message); err != nil {
		slog.WarnContext(ctx, "invalid message", "message.type", message.Type, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		return proto.NewError(err.Error()), err
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	var (
		res Result
		err error
	)
	switch message.Type {
	case proto.TypeState:
		return r.StateMessage(ctx), nil
	case proto.TypeMove:
		res, err = r.Move(ctx, *message.Index)
	case proto.TypePlay:
		res, err = r.PlayTurn(ctx, *message.Index)
	case proto.TypeComputerMove:
		res, err = r.ComputerMove(ctx)
	case proto.TypeReset:
		res = r.Reset(ctx)
	case proto.TypeDifficulty:
		// validateMessage has parsed it already.
		difficulty, _ := game.ParseDifficulty(message.Difficulty)
		res = r.SetDifficulty(ctx, difficulty)
	}
	if err != nil {
		return proto.NewError(err.Error()), err
	}
	return updateMessage(res), nil
}

// validateMessage applies the struct tags plus the per-type presence rules.
func validateMessage(message *proto.ClientToServerMessage) error {
	if err := validator.GetValidator().Struct(message); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	switch message.Type {
	case proto.TypeMove, proto.TypePlay:
		if message.Index == nil {
			return fmt.Errorf("%w: %s needs an index", ErrBadMessage, message.Type)
		}
	case proto.TypeDifficulty:
		if message.Difficulty == "" {
			return fmt.Errorf("%w: difficulty needs a value", ErrBadMessage)
		}
	}
	return nil
}
