package bot

import (
	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

const (
	// forcedLossThreshold is the number of empty cells at or below which the
	// computer starts looking for moves that hand the human a line.
	forcedLossThreshold = 6
	// anyMoveLosesThreshold is the point from which every move counts as a
	// forced loss.
	anyMoveLosesThreshold = 5
	// lateAvoidWinChance is the probability of still steering away from the
	// computer's own winning cell when no forced loss exists.
	lateAvoidWinChance = 0.7
)

// adjacentEdges maps each corner to the edges it shares a line with.
var adjacentEdges = map[int][]int{
	0: {1, 3},
	2: {1, 5},
	6: {3, 7},
	8: {5, 7},
}

// easyRules builds the rigged cascade for the computer's ordinal-th move.
func (c *BotMoveCalculator) easyRules(mark game.PlayerMark, ordinal int) []Rule {
	human := game.Opponent(mark)

	var rules []Rule
	if ordinal == 3 || ordinal == 4 {
		worst := worstMoveRules(mark, human)
		rules = append(rules, Rule{Name: "worst-move", Candidates: func(b game.Board) []int {
			_, candidates := cascade(b, worst)
			return candidates
		}})
	}

	rules = append(rules,
		Rule{Name: "let-human-win", Candidates: letHumanWin(human)},
		Rule{Name: "avoid-own-win", Candidates: avoidOwnWin(mark)},
		Rule{Name: "forced-loss", Candidates: forcedLoss(mark, human)},
		Rule{Name: "late-avoid-own-win", Candidates: c.lateAvoidOwnWin(mark)},
		Rule{Name: "setup-human-win", Candidates: setupHumanWin(mark, human)},
		Rule{Name: "non-strategic", Candidates: nonStrategic},
		Rule{Name: "least-competitive", Candidates: leastCompetitive(human)},
	)
	return rules
}

// worstMoveRules is used for the computer's third and fourth moves.
func worstMoveRules(mark, human game.PlayerMark) []Rule {
	return []Rule{
		{Name: "multi-path", Candidates: func(b game.Board) []int {
			return multiPathMoves(b, mark, human)
		}},
		{Name: "setup-human-win", Candidates: setupHumanWin(mark, human)},
		{Name: "edge", Candidates: func(b game.Board) []int {
			return emptyAmong(b, game.Edges[:])
		}},
		{Name: "any", Candidates: game.EmptyCells},
	}
}

// multiPathMoves returns the moves after which at least two patterns hold a
// human mark and still have an empty cell.
func multiPathMoves(board game.Board, mark, human game.PlayerMark) []int {
	var moves []int
	for _, idx := range game.EmptyCells(board) {
		next := with(board, idx, mark)
		paths := 0
		for _, p := range game.WinPatterns {
			if p.Count(next, human) >= 1 && p.Count(next, game.None) >= 1 {
				paths++
			}
		}
		if paths >= 2 {
			moves = append(moves, idx)
		}
	}
	return moves
}

// letHumanWin never blocks the human's winning cell. When that cell is the
// only one left it is taken anyway.
func letHumanWin(human game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		target, ok := findWinningMove(b, human)
		if !ok {
			return nil
		}
		empty := game.EmptyCells(b)
		if len(empty) == 1 {
			return empty
		}
		return without(empty, target)
	}
}

func avoidOwnWin(mark game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		target, ok := findWinningMove(b, mark)
		if !ok {
			return nil
		}
		return without(game.EmptyCells(b), target)
	}
}

// forcedLoss returns, once few cells remain, the moves after which every
// human reply either wins or leaves the human two in a line with the third
// cell open.
func forcedLoss(mark, human game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		empty := game.EmptyCells(b)
		if len(empty) > forcedLossThreshold {
			return nil
		}
		if len(empty) <= anyMoveLosesThreshold {
			return empty
		}

		var moves []int
		for _, idx := range empty {
			next := with(b, idx, mark)
			forced := true
			for _, reply := range game.EmptyCells(next) {
				if !threatens(with(next, reply, human), human) {
					forced = false
					break
				}
			}
			if forced {
				moves = append(moves, idx)
			}
		}
		return moves
	}
}

// threatens reports whether mark has won or holds two cells of a pattern whose
// third is empty.
func threatens(board game.Board, mark game.PlayerMark) bool {
	if wins(board, mark) {
		return true
	}
	for _, p := range game.WinPatterns {
		if p.Count(board, mark) == 2 && p.Count(board, game.None) == 1 {
			return true
		}
	}
	return false
}

func (c *BotMoveCalculator) lateAvoidOwnWin(mark game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		if len(game.EmptyCells(b)) > forcedLossThreshold {
			return nil
		}
		if c.rng.Float64() >= lateAvoidWinChance {
			return nil
		}
		return avoidOwnWin(mark)(b)
	}
}

// setupHumanWin returns the moves after which some human reply completes a
// line.
func setupHumanWin(mark, human game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		var moves []int
		for _, idx := range game.EmptyCells(b) {
			next := with(b, idx, mark)
			for _, reply := range game.EmptyCells(next) {
				if wins(with(next, reply, human), human) {
					moves = append(moves, idx)
					break
				}
			}
		}
		return moves
	}
}

// nonStrategic keeps away from the center and corners while there is a
// choice.
func nonStrategic(b game.Board) []int {
	if len(game.EmptyCells(b)) <= 1 {
		return nil
	}
	return emptyAmong(b, game.Edges[:])
}

// leastCompetitive plays next to the human: edges beside human corners, then
// corners around a human center, then anything.
func leastCompetitive(human game.PlayerMark) func(game.Board) []int {
	return func(b game.Board) []int {
		seen := make(map[int]bool)
		var edges []int
		for _, corner := range game.Corners {
			if b[corner] != human {
				continue
			}
			for _, edge := range adjacentEdges[corner] {
				if b[edge] == game.None && !seen[edge] {
					seen[edge] = true
					edges = append(edges, edge)
				}
			}
		}
		if len(edges) > 0 {
			return edges
		}

		if b[game.Center] == human {
			if corners := emptyAmong(b, game.Corners[:]); len(corners) > 0 {
				return corners
			}
		}
		return game.EmptyCells(b)
	}
}
