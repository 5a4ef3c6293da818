package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("events")

// RedisPublisher publishes JSON events on EventsChannel.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends one event.
func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	ctx, span := tracer.Start(ctx, "events.Publish", trace.WithAttributes(
		attribute.String("event.type", eventType),
	))
	defer span.End()

	event, err := NewEvent(eventType, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not build event")
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Subscribe reads EventsChannel until ctx is done, passing each decoded event
// to handle. Malformed payloads are logged and skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, handle func(context.Context, Event)) error {
	pubsub := rdb.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	// Wait for the subscription to be confirmed before reading.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", EventsChannel, err)
	}
	slog.InfoContext(ctx, "Event subscriber started", "channel", EventsChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			eventCtx, span := tracer.Start(ctx, "events.handle", trace.WithAttributes(
				attribute.String("event.channel", msg.Channel),
			))

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(eventCtx, "Could not unmarshal event", "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Could not unmarshal event")
				span.End()
				continue
			}
			span.SetAttributes(attribute.String("event.type", event.Type))
			handle(eventCtx, event)
			span.End()
		}
	}
}
