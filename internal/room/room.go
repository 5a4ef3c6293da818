// Package room hosts the single live game and is the only caller of the
// engine outside tests. Every shell (websocket, REST, MCP, terminal) goes
// through a Room.
package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/events"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/repository"
)

const defaultThinkingDelay = time.Second

var (
	tracer = otel.Tracer("room")
	meter  = otel.Meter("room")
)

var (
	// ErrInvalidMove is returned for an index off the board or an occupied cell.
	ErrInvalidMove = errors.New("invalid move")
	// ErrGameOver is returned for any move once the game is won or drawn.
	ErrGameOver = errors.New("game is over")
	// ErrNotYourTurn is returned when the requested side is not to move.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrNoMove is returned when the computer has no cell to play.
	ErrNoMove = errors.New("no move available")
)

// Result is what a shell shows after an operation.
type Result struct {
	GameID     string
	State      game.State
	Difficulty game.Difficulty
	// Skipped is set when the computer's turn ended without a new mark.
	Skipped bool
}

// Room represents the one table a process serves.
type Room struct {
	// turnMu serializes mutations, including the computer's thinking time.
	turnMu sync.Mutex
	// mu guards the fields below; reads never wait for the computer.
	mu       sync.RWMutex
	game     *game.Game
	gameID   string
	version  int64
	recorded bool

	thinkingDelay time.Duration
	results       repository.ResultRepository
	scores        repository.ScoreRepository
	snapshots     repository.GameRepository
	publisher     events.Publisher
	broadcaster   Broadcaster

	moves    metric.Int64Counter
	finished metric.Int64Counter
	skipped  metric.Int64Counter
}

// Option configures a Room.
type Option func(*Room)

// WithThinkingDelay sets the pause before each computer move.
func WithThinkingDelay(d time.Duration) Option {
	return func(r *Room) { r.thinkingDelay = d }
}

// WithResultRepository stores every finished game.
func WithResultRepository(repo repository.ResultRepository) Option {
	return func(r *Room) { r.results = repo }
}

// WithScoreRepository counts every finished game on the scoreboard.
func WithScoreRepository(repo repository.ScoreRepository) Option {
	return func(r *Room) { r.scores = repo }
}

// WithGameRepository mirrors every change into a snapshot store.
func WithGameRepository(repo repository.GameRepository) Option {
	return func(r *Room) { r.snapshots = repo }
}

// WithPublisher publishes game events.
func WithPublisher(p events.Publisher) Option {
	return func(r *Room) { r.publisher = p }
}

// WithBroadcaster pushes every change to connected clients.
func WithBroadcaster(b Broadcaster) Option {
	return func(r *Room) { r.broadcaster = b }
}

// New creates a room with a fresh game.
func New(difficulty game.Difficulty, calculator game.MoveCalculator, opts ...Option) *Room {
	r := &Room{
		game:          game.NewGame(difficulty, calculator),
		gameID:        uuid.NewString(),
		thinkingDelay: defaultThinkingDelay,
		publisher:     events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.initMetrics()
	return r
}

func (r *Room) initMetrics() {
	var err error
	if r.moves, err = meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Marks placed, by player")); err != nil {
		slog.Warn("Could not create moves counter", "error", err)
	}
	if r.finished, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that reached won or draw")); err != nil {
		slog.Warn("Could not create finished counter", "error", err)
	}
	if r.skipped, err = meter.Int64Counter("tictactoe.computer.skipped",
		metric.WithDescription("Computer turns that placed no mark")); err != nil {
		slog.Warn("Could not create skipped counter", "error", err)
	}
}

// SetBroadcaster attaches b after construction. The hub and the room refer
// to each other, so one of them has to be wired late.
func (r *Room) SetBroadcaster(b Broadcaster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcaster = b
}

// State returns the current snapshot.
func (r *Room) State(ctx context.Context) Result {
	_, span := tracer.Start(ctx, "room.State")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resultLocked(false)
}

func (r *Room) Difficulty() game.Difficulty {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game.GetDifficulty()
}

func (r *Room) GameID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameID
}

func (r *Room) resultLocked(skipped bool) Result {
	return Result{
		GameID:     r.gameID,
		State:      r.game.GetState(),
		Difficulty: r.game.GetDifficulty(),
		Skipped:    skipped,
	}
}
