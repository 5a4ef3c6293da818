package player

import "time"

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Player is a client attached to the table. SeatID is the seat token subject
// the client connected with; an empty SeatID marks a spectator.
type Player struct {
	ID     string
	Conn   Connection
	SeatID string
}

// NewPlayer creates a player.
func NewPlayer(id string, conn Connection, seatID string) *Player {
	return &Player{
		ID:     id,
		Conn:   conn,
		SeatID: seatID,
	}
}

// IsSpectator reports whether the player connected without a seat.
func (p *Player) IsSpectator() bool {
	return p.SeatID == ""
}
