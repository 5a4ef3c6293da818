package models

import (
	"time"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
)

// MoveRequest defines the structure for a move or play request.
type MoveRequest struct {
	Index *int `json:"index" binding:"required,min=0,max=8"`
}

// DifficultyRequest defines the structure for a difficulty change.
type DifficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required,difficulty"`
}

// SeatRequest asks for the controller seat. Force takes it from whoever
// holds it.
type SeatRequest struct {
	Force bool `json:"force"`
}

// HistoryQuery bounds the history listing.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// StateResponse is the body of every game endpoint.
type StateResponse struct {
	GameID     string          `json:"gameId"`
	State      game.State      `json:"state"`
	Difficulty game.Difficulty `json:"difficulty"`
	Winner     game.PlayerMark `json:"winner"`
	Skipped    bool            `json:"skipped"`
}

// NewStateResponse converts a room result.
func NewStateResponse(res room.Result) StateResponse {
	return StateResponse{
		GameID:     res.GameID,
		State:      res.State,
		Difficulty: res.Difficulty,
		Winner:     res.State.Winner(),
		Skipped:    res.Skipped,
	}
}

// SeatResponse carries a seat token.
type SeatResponse struct {
	SeatID    string    `json:"seatId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
