package terminal

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/bot"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
)

// cellsCalculator plays the first empty cell from a fixed list.
type cellsCalculator []int

func (c cellsCalculator) CalculateNextMove(board game.Board, _ game.PlayerMark, _ game.Difficulty, _ int) int {
	for _, idx := range c {
		if board[idx] == game.None {
			return idx
		}
	}
	return game.NoMove
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, difficulty game.Difficulty, calc game.MoveCalculator) Model {
	t.Helper()
	r := room.New(difficulty, calc, room.WithThinkingDelay(0))
	return NewModel(context.Background(), r)
}

// press sends a key and runs the command it returns, feeding the result back.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(keyPress(s))
	m = next.(Model)
	if cmd != nil {
		if msg, ok := cmd().(computerMovedMsg); ok {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestMoveStartsComputerTurn(t *testing.T) {
	m := newModel(t, game.Hard, bot.NewMoveCalculator(nil))

	next, cmd := m.Update(keyPress("1"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.thinking)
	assert.Contains(t, m.View(), "Computer is thinking...")

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.thinking)
	assert.Equal(t, game.PlayerX, m.result.State.Board[0])
	assert.Equal(t, game.PlayerO, m.result.State.Board[game.Center])
	assert.Contains(t, m.View(), "Your turn (X)")
}

func TestKeysIgnoredWhileThinking(t *testing.T) {
	m := newModel(t, game.Hard, bot.NewMoveCalculator(nil))
	next, _ := m.Update(keyPress("1"))
	m = next.(Model)
	require.True(t, m.thinking)

	next, cmd := m.Update(keyPress("2"))
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, game.None, m.room.State(context.Background()).State.Board[1])
}

func TestOccupiedCell(t *testing.T) {
	m := press(t, newModel(t, game.Hard, bot.NewMoveCalculator(nil)), "5")
	m = press(t, m, "5")
	assert.Contains(t, m.View(), "Cell 5 is taken.")
}

func TestSkipNotice(t *testing.T) {
	m := newModel(t, game.Easy, cellsCalculator{4})
	skipped := m.result
	skipped.Skipped = true
	next, _ := m.Update(computerMovedMsg{result: skipped})
	m = next.(Model)
	assert.True(t, m.result.Skipped)
	assert.Equal(t, game.PlayerX, m.result.State.CurrentPlayer)
	assert.Contains(t, m.View(), skippedNotice)

	m = press(t, m, "r")
	assert.NotContains(t, m.View(), skippedNotice)
}

func TestPlayerWins(t *testing.T) {
	m := newModel(t, game.Easy, cellsCalculator{4, 5})
	for _, k := range []string{"1", "2", "3"} {
		m = press(t, m, k)
	}
	assert.Equal(t, game.StatusWon, m.result.State.Status)
	assert.Contains(t, m.View(), "Player wins!")

	m = press(t, m, "4")
	assert.Contains(t, m.View(), "The game is over.")
}

func TestResetAndDifficultyKeys(t *testing.T) {
	m := press(t, newModel(t, game.Hard, bot.NewMoveCalculator(nil)), "1")
	firstID := m.result.GameID

	m = press(t, m, "e")
	assert.Equal(t, game.Easy, m.room.Difficulty())
	assert.Contains(t, m.View(), "Tic-Tac-Toe - easy")

	m = press(t, m, "h")
	assert.Equal(t, game.Hard, m.room.Difficulty())

	m = press(t, m, "r")
	assert.NotEqual(t, firstID, m.result.GameID)
	assert.Equal(t, game.Board{}, m.result.State.Board)
}

func TestQuit(t *testing.T) {
	m := newModel(t, game.Hard, bot.NewMoveCalculator(nil))
	_, cmd := m.Update(keyPress("q"))
	assert.NotNil(t, cmd)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		state game.State
		want  string
	}{
		{name: "Human win", state: game.State{Status: game.StatusWon, CurrentPlayer: game.PlayerO}, want: "Player wins!"},
		{name: "Computer win", state: game.State{Status: game.StatusWon, CurrentPlayer: game.PlayerX}, want: "Computer wins!"},
		{name: "Draw", state: game.State{Status: game.StatusDraw}, want: "It's a draw!"},
		{name: "Human to move", state: game.State{Status: game.StatusPlaying, CurrentPlayer: game.PlayerX}, want: "Your turn (X)"},
		{name: "Computer to move", state: game.State{Status: game.StatusPlaying, CurrentPlayer: game.PlayerO}, want: "Computer's turn (O)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Model{result: room.Result{State: tt.state}}
			assert.Equal(t, tt.want, m.status())
		})
	}
}
