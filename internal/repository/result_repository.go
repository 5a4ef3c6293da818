package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// GameResult is the record of one finished game.
type GameResult struct {
	ID                 string          `json:"id"`
	Difficulty         game.Difficulty `json:"difficulty"`
	Status             game.Status     `json:"status"`
	Winner             game.PlayerMark `json:"winner"`
	Board              game.Board      `json:"board"`
	WinningCombination []int           `json:"winningCombination"`
	ComputerMoves      int             `json:"computerMoves"`
	FinishedAt         time.Time       `json:"finishedAt"`
}

type resultRow struct {
	ID                 string `db:"id"`
	Difficulty         string `db:"difficulty"`
	Status             string `db:"status"`
	Winner             string `db:"winner"`
	Board              string `db:"board"`
	WinningCombination string `db:"winning_combination"`
	ComputerMoves      int    `db:"computer_moves"`
	FinishedAt         int64  `db:"finished_at"`
}

func (r resultRow) toResult() (GameResult, error) {
	res := GameResult{
		ID:            r.ID,
		Difficulty:    game.Difficulty(r.Difficulty),
		Status:        game.Status(r.Status),
		Winner:        game.PlayerMark(r.Winner),
		ComputerMoves: r.ComputerMoves,
		FinishedAt:    time.UnixMilli(r.FinishedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(r.Board), &res.Board); err != nil {
		return GameResult{}, fmt.Errorf("failed to unmarshal board of %s: %w", r.ID, err)
	}
	if r.WinningCombination != "" {
		if err := json.Unmarshal([]byte(r.WinningCombination), &res.WinningCombination); err != nil {
			return GameResult{}, fmt.Errorf("failed to unmarshal winning combination of %s: %w", r.ID, err)
		}
	}
	return res, nil
}

// ResultRepository stores finished games.
type ResultRepository interface {
	Save(ctx context.Context, result GameResult) error
	FindByID(ctx context.Context, id string) (*GameResult, error)
	ListRecent(ctx context.Context, limit int) ([]GameResult, error)
}

type sqliteResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new SQLite-based ResultRepository.
func NewResultRepository(db *sqlx.DB) ResultRepository {
	return &sqliteResultRepository{db: db}
}

// Save inserts a result. Saving the same game twice keeps the first record.
func (r *sqliteResultRepository) Save(ctx context.Context, result GameResult) error {
	ctx, span := tracer.Start(ctx, "ResultRepository.Save", trace.WithAttributes(
		attribute.String("game.id", result.ID),
		attribute.String("game.status", string(result.Status)),
	))
	defer span.End()

	board, err := json.Marshal(result.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}
	var combination []byte
	if result.WinningCombination != nil {
		if combination, err = json.Marshal(result.WinningCombination); err != nil {
			return fmt.Errorf("failed to marshal winning combination: %w", err)
		}
	}
	finishedAt := result.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	query := `INSERT OR IGNORE INTO game_results
		(id, difficulty, status, winner, board, winning_combination, computer_moves, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		result.ID,
		string(result.Difficulty),
		string(result.Status),
		string(result.Winner),
		string(board),
		string(combination),
		result.ComputerMoves,
		finishedAt.UnixMilli(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save result")
		return fmt.Errorf("failed to save game result: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when no game with that id has finished.
func (r *sqliteResultRepository) FindByID(ctx context.Context, id string) (*GameResult, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.FindByID", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	var row resultRow
	query := `SELECT id, difficulty, status, winner, board, winning_combination, computer_moves, finished_at
		FROM game_results WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get game result: %w", err)
	}
	res, err := row.toResult()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListRecent returns up to limit results, newest first.
func (r *sqliteResultRepository) ListRecent(ctx context.Context, limit int) ([]GameResult, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.ListRecent", trace.WithAttributes(
		attribute.Int("query.limit", limit),
	))
	defer span.End()

	var rows []resultRow
	query := `SELECT id, difficulty, status, winner, board, winning_combination, computer_moves, finished_at
		FROM game_results ORDER BY finished_at DESC, rowid DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}

	results := make([]GameResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.toResult()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
