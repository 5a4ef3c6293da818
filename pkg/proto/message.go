package proto

import "github.com/pmercer01gh/easy-tic-tac-toe/internal/game"

// Client command types.
const (
	TypeMove         = "move"
	TypeComputerMove = "computer_move"
	TypePlay         = "play"
	TypeReset        = "reset"
	TypeDifficulty   = "difficulty"
	TypeState        = "state"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
// Index is required for move and play, Difficulty for difficulty.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move computer_move play reset difficulty state"`
	Index      *int   `json:"index,omitempty" validate:"omitempty,min=0,max=8"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type       string          `json:"type" validate:"required"`
	Reason     string          `json:"reason,omitempty"`
	GameID     string          `json:"gameId,omitempty"`
	State      *game.State     `json:"state,omitempty"`
	Difficulty game.Difficulty `json:"difficulty,omitempty"`
	Winner     game.PlayerMark `json:"winner,omitempty"`
	Skipped    bool            `json:"skipped,omitempty"`
}

// NewError builds an error reply.
func NewError(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
