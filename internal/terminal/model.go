// Package terminal is the interactive board for a single player at a
// terminal.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	env "github.com/muesli/termenv"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/room"
)

const skippedNotice = "Computer skipped its turn. Your turn again!"

// Model drives one room from the keyboard.
type Model struct {
	ctx      context.Context
	room     *room.Room
	KeyMap   KeyMap
	help     help.Model
	result   room.Result
	thinking bool
	notice   string
	Err      error

	width, height   int
	originalBgColor env.Color
	output          *env.Output
}

type computerMovedMsg struct {
	result room.Result
	err    error
}

type setBackgroundColorMsg struct {
	color env.Color
}

func setBackgroundColor(c env.Color) tea.Cmd {
	return func() tea.Msg {
		return setBackgroundColorMsg{color: c}
	}
}

// NewModel creates the board screen for r. ctx bounds the computer's turns.
func NewModel(ctx context.Context, r *room.Room) Model {
	return Model{
		ctx:             ctx,
		room:            r,
		KeyMap:          Keys,
		help:            help.New(),
		result:          r.State(ctx),
		originalBgColor: env.BackgroundColor(),
		output:          env.DefaultOutput(),
	}
}

func (m Model) Init() tea.Cmd {
	return setBackgroundColor(env.RGBColor("#1e1e1e"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setBackgroundColorMsg:
		m.output.SetBackgroundColor(msg.color)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case computerMovedMsg:
		m.thinking = false
		m.Err = msg.err
		if msg.err == nil {
			m.result = msg.result
			if msg.result.Skipped {
				m.notice = skippedNotice
			}
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.Quit):
			return m, tea.Sequence(
				setBackgroundColor(m.originalBgColor),
				tea.Quit,
			)

		// The room serializes turns, so input waits for the computer.
		case m.thinking:
			return m, nil

		case key.Matches(msg, m.KeyMap.Cell):
			return m.move(int(msg.String()[0] - '1'))

		case key.Matches(msg, m.KeyMap.Reset):
			m.result = m.room.Reset(m.ctx)
			m.notice = ""
			m.Err = nil

		case key.Matches(msg, m.KeyMap.Easy):
			m.result = m.room.SetDifficulty(m.ctx, game.Easy)
			m.notice = "Difficulty: easy"

		case key.Matches(msg, m.KeyMap.Hard):
			m.result = m.room.SetDifficulty(m.ctx, game.Hard)
			m.notice = "Difficulty: hard"
		}
	}
	return m, nil
}

// move places X and, when the game goes on, starts the computer's turn.
func (m Model) move(index int) (tea.Model, tea.Cmd) {
	m.notice = ""
	res, err := m.room.Move(m.ctx, index)
	switch {
	case errors.Is(err, room.ErrInvalidMove):
		m.notice = fmt.Sprintf("Cell %d is taken.", index+1)
		return m, nil
	case errors.Is(err, room.ErrGameOver):
		m.notice = "The game is over. Press r for a new one."
		return m, nil
	case err != nil:
		m.Err = err
		return m, nil
	}

	m.Err = nil
	m.result = res
	if res.State.Status.IsTerminal() || res.State.CurrentPlayer != game.Computer {
		return m, nil
	}
	m.thinking = true
	return m, m.computerMove()
}

func (m Model) computerMove() tea.Cmd {
	ctx, r := m.ctx, m.room
	return func() tea.Msg {
		res, err := r.ComputerMove(ctx)
		return computerMovedMsg{result: res, err: err}
	}
}

func (m Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("Tic-Tac-Toe - %s", m.result.Difficulty))
	lines := []string{title, "", m.renderBoard(), "", statusStyle.Render(m.status())}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	if m.Err != nil {
		lines = append(lines, errorStyle.Render("Error: "+m.Err.Error()))
	}
	lines = append(lines, "", helpStyle.Render(m.help.ShortHelpView(m.KeyMap.help())))

	view := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width == 0 || m.height == 0 {
		return view
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
}

func (m Model) status() string {
	state := m.result.State
	switch state.Status {
	case game.StatusWon:
		if state.Winner() == game.Human {
			return "Player wins!"
		}
		return "Computer wins!"
	case game.StatusDraw:
		return "It's a draw!"
	}
	if m.thinking {
		return "Computer is thinking..."
	}
	if state.CurrentPlayer == game.Human {
		return "Your turn (X)"
	}
	return "Computer's turn (O)"
}

func (m Model) renderBoard() string {
	winning := make(map[int]bool, len(m.result.State.WinningCombination))
	for _, idx := range m.result.State.WinningCombination {
		winning[idx] = true
	}

	rows := make([]string, 0, 3)
	for row := range 3 {
		cells := make([]string, 0, 3)
		for col := range 3 {
			idx := row*3 + col
			cells = append(cells, cellStyle.Render(renderMark(m.result.State.Board[idx], idx, winning[idx])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func renderMark(mark game.PlayerMark, idx int, winning bool) string {
	switch {
	case mark == game.None:
		return emptyStyle.Render(fmt.Sprint(idx + 1))
	case winning:
		return winStyle.Render(string(mark))
	case mark == game.PlayerX:
		return xStyle.Render("X")
	}
	return oStyle.Render("O")
}
