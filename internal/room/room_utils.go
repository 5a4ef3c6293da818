package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/events"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/repository"
)

// afterChange fans a new state out: snapshot, clients, and on the first
// terminal state the result store and scoreboard. Failures are logged and
// never undo the move.
func (r *Room) afterChange(ctx context.Context, res Result, version int64) {
	if r.snapshots != nil {
		err := r.snapshots.Save(ctx, repository.Snapshot{
			GameID:        res.GameID,
			Difficulty:    res.Difficulty,
			State:         res.State,
			ComputerMoves: r.computerMoveCount(),
			Version:       version,
		})
		if err != nil && !errors.Is(err, repository.ErrStaleSnapshot) {
			slog.ErrorContext(ctx, "Failed to save snapshot", "game.id", res.GameID, "error", err)
		}
	}

	r.broadcast(ctx, updateMessage(res))

	if res.State.Status.IsTerminal() && r.markRecorded(res.GameID) {
		r.recordResult(ctx, res)
	}
}

// markRecorded reports whether gameID still had to be recorded.
func (r *Room) markRecorded(gameID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recorded || r.gameID != gameID {
		return false
	}
	r.recorded = true
	return true
}

func (r *Room) computerMoveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game.ComputerMoveCount()
}

// recordResult stores a finished game exactly once.
func (r *Room) recordResult(ctx context.Context, res Result) {
	ctx, span := tracer.Start(ctx, "room.recordResult", trace.WithAttributes(
		attribute.String("game.id", res.GameID),
		attribute.String("game.status", string(res.State.Status)),
	))
	defer span.End()

	winner := res.State.Winner()
	slog.InfoContext(ctx, "Game finished", "game.id", res.GameID, "game.status", res.State.Status, "game.winner", winner)

	if r.finished != nil {
		r.finished.Add(ctx, 1, metric.WithAttributes(
			attribute.String("game.difficulty", string(res.Difficulty)),
			attribute.String("game.status", string(res.State.Status)),
			attribute.String("game.winner", string(winner)),
		))
	}

	if r.results != nil {
		err := r.results.Save(ctx, repository.GameResult{
			ID:                 res.GameID,
			Difficulty:         res.Difficulty,
			Status:             res.State.Status,
			Winner:             winner,
			Board:              res.State.Board,
			WinningCombination: res.State.WinningCombination,
			ComputerMoves:      r.computerMoveCount(),
			FinishedAt:         time.Now().UTC(),
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to save game result", "game.id", res.GameID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to save game result")
		}
	}

	if r.scores != nil {
		if err := r.scores.Record(ctx, res.Difficulty, res.State.Status, winner); err != nil {
			slog.ErrorContext(ctx, "Failed to update scoreboard", "game.id", res.GameID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to update scoreboard")
		}
	}

	r.publish(ctx, events.TypeGameFinished, events.GameFinishedPayload{
		GameID:             res.GameID,
		Difficulty:         res.Difficulty,
		Status:             res.State.Status,
		Winner:             winner,
		WinningCombination: res.State.WinningCombination,
	})
}

func (r *Room) publish(ctx context.Context, eventType string, payload any) {
	if err := r.publisher.Publish(ctx, eventType, payload); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "event.type", eventType, "error", err)
	}
}

func (r *Room) countMove(ctx context.Context, mark game.PlayerMark) {
	if r.moves != nil {
		r.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("move.player", string(mark))))
	}
}

func (r *Room) countSkip(ctx context.Context, difficulty game.Difficulty) {
	if r.skipped != nil {
		r.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("game.difficulty", string(difficulty))))
	}
}
