package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/events"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// Move places the human's mark at index. The computer does not reply; use
// PlayTurn for a full round.
func (r *Room) Move(ctx context.Context, index int) (Result, error) {
	ctx, span := tracer.Start(ctx, "room.Move", trace.WithAttributes(
		attribute.Int("move.index", index),
	))
	defer span.End()

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	res, err := r.humanMove(ctx, index)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
	}
	return res, err
}

// ComputerMove waits the thinking delay and lets the computer play. Skipped
// is reported when the computer passed or is locked out on easy.
func (r *Room) ComputerMove(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "room.ComputerMove")
	defer span.End()

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	res, err := r.computerMove(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer move failed")
	}
	span.SetAttributes(attribute.Bool("move.skipped", res.Skipped))
	return res, err
}

// PlayTurn places the human's mark and, if the game goes on, lets the
// computer reply. Nobody else can move in between.
func (r *Room) PlayTurn(ctx context.Context, index int) (Result, error) {
	ctx, span := tracer.Start(ctx, "room.PlayTurn", trace.WithAttributes(
		attribute.Int("move.index", index),
	))
	defer span.End()

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	res, err := r.humanMove(ctx, index)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		return res, err
	}
	if res.State.Status != game.StatusPlaying || res.State.CurrentPlayer != game.Computer {
		return res, nil
	}

	res, err = r.computerMove(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer move failed")
	}
	return res, err
}

// Reset starts a new game under a new id. The difficulty is kept.
func (r *Room) Reset(ctx context.Context) Result {
	ctx, span := tracer.Start(ctx, "room.Reset")
	defer span.End()

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	r.mu.Lock()
	r.game.ResetGame()
	r.gameID = uuid.NewString()
	r.recorded = false
	r.version++
	res := r.resultLocked(false)
	version := r.version
	r.mu.Unlock()

	span.SetAttributes(attribute.String("game.id", res.GameID))
	slog.InfoContext(ctx, "Game reset", "game.id", res.GameID, "game.difficulty", res.Difficulty)

	r.publish(ctx, events.TypeGameStarted, events.GameStartedPayload{
		GameID:     res.GameID,
		Difficulty: res.Difficulty,
	})
	r.afterChange(ctx, res, version)
	return res
}

// SetDifficulty switches strategy mid-game. The board is kept and the easy
// move counter starts over.
func (r *Room) SetDifficulty(ctx context.Context, difficulty game.Difficulty) Result {
	ctx, span := tracer.Start(ctx, "room.SetDifficulty", trace.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
	))
	defer span.End()

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	r.mu.Lock()
	r.game.SetDifficulty(difficulty)
	r.version++
	res := r.resultLocked(false)
	version := r.version
	r.mu.Unlock()

	slog.InfoContext(ctx, "Difficulty changed", "game.id", res.GameID, "game.difficulty", difficulty)

	r.publish(ctx, events.TypeDifficultyChanged, events.DifficultyChangedPayload{
		GameID:     res.GameID,
		Difficulty: difficulty,
	})
	r.afterChange(ctx, res, version)
	return res
}

// humanMove runs with turnMu held.
func (r *Room) humanMove(ctx context.Context, index int) (Result, error) {
	r.mu.Lock()
	current := r.game.GetState()
	switch {
	case current.Status.IsTerminal():
		res := r.resultLocked(false)
		r.mu.Unlock()
		return res, ErrGameOver
	case current.CurrentPlayer != game.Human:
		res := r.resultLocked(false)
		r.mu.Unlock()
		return res, ErrNotYourTurn
	case !r.game.MakeMove(index):
		res := r.resultLocked(false)
		r.mu.Unlock()
		slog.WarnContext(ctx, "Invalid move", "game.id", res.GameID, "move.index", index)
		return res, ErrInvalidMove
	}
	r.version++
	res := r.resultLocked(false)
	version := r.version
	r.mu.Unlock()

	r.countMove(ctx, game.Human)
	slog.InfoContext(ctx, "Human moved", "game.id", res.GameID, "move.index", index, "game.status", res.State.Status)

	r.publish(ctx, events.TypeMoveMade, events.MoveMadePayload{
		GameID: res.GameID,
		Mark:   game.Human,
		Index:  index,
		Status: res.State.Status,
	})
	r.afterChange(ctx, res, version)
	return res, nil
}

// computerMove runs with turnMu held.
func (r *Room) computerMove(ctx context.Context) (Result, error) {
	r.mu.RLock()
	current := r.game.GetState()
	res := r.resultLocked(false)
	r.mu.RUnlock()

	if current.Status.IsTerminal() {
		return res, ErrGameOver
	}
	if current.CurrentPlayer != game.Computer {
		return res, ErrNotYourTurn
	}

	if err := r.think(ctx); err != nil {
		return res, err
	}

	r.mu.Lock()
	before := r.game.GetState()
	if !r.game.MakeComputerMove() {
		res := r.resultLocked(false)
		r.mu.Unlock()
		slog.WarnContext(ctx, "Computer found no move", "game.id", res.GameID)
		return res, ErrNoMove
	}
	after := r.game.GetState()
	skipped := before.Board == after.Board
	r.version++
	res = r.resultLocked(skipped)
	version := r.version
	r.mu.Unlock()

	index := game.NoMove
	if skipped {
		r.countSkip(ctx, res.Difficulty)
		slog.InfoContext(ctx, "Computer skipped its turn", "game.id", res.GameID, "game.difficulty", res.Difficulty)
	} else {
		index = changedCell(before.Board, after.Board)
		r.countMove(ctx, game.Computer)
		slog.InfoContext(ctx, "Computer moved", "game.id", res.GameID, "move.index", index, "game.status", res.State.Status)
	}

	r.publish(ctx, events.TypeMoveMade, events.MoveMadePayload{
		GameID: res.GameID,
		Mark:   game.Computer,
		Index:  index,
		Status: res.State.Status,
	})
	r.afterChange(ctx, res, version)
	return res, nil
}

// think waits the thinking delay unless ctx ends first.
func (r *Room) think(ctx context.Context) error {
	if r.thinkingDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.thinkingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func changedCell(before, after game.Board) int {
	for i := range after {
		if before[i] != after[i] {
			return i
		}
	}
	return game.NoMove
}
