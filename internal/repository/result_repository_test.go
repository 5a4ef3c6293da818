package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/db/dbtest"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

func TestResultRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(dbtest.SQLite(t))
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	won := GameResult{
		ID:                 "won",
		Difficulty:         game.Easy,
		Status:             game.StatusWon,
		Winner:             game.PlayerX,
		Board:              game.Board{"X", "O", "", "O", "X", "", "", "", "X"},
		WinningCombination: []int{0, 4, 8},
		ComputerMoves:      2,
		FinishedAt:         base,
	}
	draw := GameResult{
		ID:         "draw",
		Difficulty: game.Hard,
		Status:     game.StatusDraw,
		Board:      game.Board{"X", "O", "X", "X", "O", "O", "O", "X", "X"},
		FinishedAt: base.Add(time.Minute),
	}

	require.NoError(t, repo.Save(ctx, won))
	require.NoError(t, repo.Save(ctx, draw))

	t.Run("FindByID", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "won")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, won, *got)
	})

	t.Run("FindByID unknown", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Draw has no combination", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "draw")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.WinningCombination)
		assert.Equal(t, game.None, got.Winner)
	})

	t.Run("Save keeps the first record", func(t *testing.T) {
		again := won
		again.Status = game.StatusDraw
		require.NoError(t, repo.Save(ctx, again))
		got, err := repo.FindByID(ctx, "won")
		require.NoError(t, err)
		assert.Equal(t, game.StatusWon, got.Status)
	})

	t.Run("ListRecent newest first", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "draw", got[0].ID)
		assert.Equal(t, "won", got[1].ID)

		got, err = repo.ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "draw", got[0].ID)
	})
}
