package bot

import (
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// hardRules is the competitive heuristic: win, block, center, corner, edge.
// It is not minimax and can be beaten.
func hardRules(mark game.PlayerMark) []Rule {
	opponent := game.Opponent(mark)
	return []Rule{
		{Name: "win", Candidates: completeLine(mark)},
		{Name: "block", Candidates: completeLine(opponent)},
		{Name: "center", Candidates: func(b game.Board) []int {
			return emptyAmong(b, []int{game.Center})
		}},
		{Name: "corner", Candidates: func(b game.Board) []int {
			return emptyAmong(b, game.Corners[:])
		}},
		{Name: "edge", Candidates: func(b game.Board) []int {
			return emptyAmong(b, game.Edges[:])
		}},
	}
}

// completeLine yields the single cell that finishes a line for mark.
func completeLine(mark game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		if idx, ok := findWinningMove(b, mark); ok {
			return []int{idx}
		}
		return nil
	}
}
