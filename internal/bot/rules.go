package bot

import (
	"slices"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// Rule proposes the legal cells it would play on board. An empty result means
// the rule does not apply.
type Rule struct {
	Name       string
	Candidates func(board game.Board) []int
}

// cascade returns the first rule, in order, that yields candidates.
func cascade(board game.Board, rules []Rule) (string, []int) {
	for _, r := range rules {
		if candidates := r.Candidates(board); len(candidates) > 0 {
			return r.Name, candidates
		}
	}
	return "", nil
}

// findWinningMove checks if mark has two in a line with the third cell empty.
// Patterns are scanned in canonical order and, within a pattern, the empty
// cell is looked for at c, then b, then a.
func findWinningMove(board game.Board, mark game.PlayerMark) (int, bool) {
	for _, p := range game.WinPatterns {
		a, b, c := p[0], p[1], p[2]
		if board[a] == mark && board[b] == mark && board[c] == game.None {
			return c, true
		}
		if board[a] == mark && board[c] == mark && board[b] == game.None {
			return b, true
		}
		if board[b] == mark && board[c] == mark && board[a] == game.None {
			return a, true
		}
	}
	return game.NoMove, false
}

// wins reports whether mark holds a complete line.
func wins(board game.Board, mark game.PlayerMark) bool {
	for _, p := range game.WinPatterns {
		if p.Count(board, mark) == 3 {
			return true
		}
	}
	return false
}

func with(board game.Board, idx int, mark game.PlayerMark) game.Board {
	board[idx] = mark
	return board
}

// without filters drop out of cells, keeping order.
func without(cells []int, drop ...int) []int {
	out := make([]int, 0, len(cells))
	for _, c := range cells {
		if !slices.Contains(drop, c) {
			out = append(out, c)
		}
	}
	return out
}

// emptyAmong keeps the cells of set that are empty on board.
func emptyAmong(board game.Board, set []int) []int {
	var out []int
	for _, idx := range set {
		if board[idx] == game.None {
			out = append(out, idx)
		}
	}
	return out
}
