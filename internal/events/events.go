package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeGameStarted       = "game_started"
	TypeMoveMade          = "move_made"
	TypeGameFinished      = "game_finished"
	TypeDifficultyChanged = "difficulty_changed"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameStartedPayload is the payload for the "game_started" event.
type GameStartedPayload struct {
	GameID     string          `json:"game_id"`
	Difficulty game.Difficulty `json:"difficulty"`
}

// MoveMadePayload is the payload for the "move_made" event. Index is
// game.NoMove when the computer skipped its turn.
type MoveMadePayload struct {
	GameID string          `json:"game_id"`
	Mark   game.PlayerMark `json:"mark"`
	Index  int             `json:"index"`
	Status game.Status     `json:"status"`
}

// GameFinishedPayload is the payload for the "game_finished" event.
type GameFinishedPayload struct {
	GameID             string          `json:"game_id"`
	Difficulty         game.Difficulty `json:"difficulty"`
	Status             game.Status     `json:"status"`
	Winner             game.PlayerMark `json:"winner"`
	WinningCombination []int           `json:"winning_combination"`
}

// DifficultyChangedPayload is the payload for the "difficulty_changed" event.
type DifficultyChangedPayload struct {
	GameID     string          `json:"game_id"`
	Difficulty game.Difficulty `json:"difficulty"`
}

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks . Publisher

// Publisher delivers events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// NewEvent wraps payload under eventType.
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
