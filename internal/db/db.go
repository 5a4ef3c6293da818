package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// resultSchema stores one row per finished game.
const resultSchema = `
CREATE TABLE IF NOT EXISTS game_results (
	id TEXT PRIMARY KEY,
	difficulty TEXT NOT NULL,
	status TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	board TEXT NOT NULL,
	winning_combination TEXT NOT NULL DEFAULT '',
	computer_moves INTEGER NOT NULL DEFAULT 0,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_results_finished_at ON game_results (finished_at);`

// OpenSQLite opens the SQLite database at path and makes sure the schema
// exists. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is its own database.
		pool.SetMaxOpenConns(1)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database at %s: %w", path, err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "Connected to database", "db.path", path)
	return pool, nil
}

// Migrate creates the tables used by the result repository.
func Migrate(ctx context.Context, pool *sqlx.DB) error {
	if _, err := pool.ExecContext(ctx, resultSchema); err != nil {
		return fmt.Errorf("failed to create game_results table: %w", err)
	}
	return nil
}
