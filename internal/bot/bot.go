package bot

import (
	"log/slog"
	"math/rand/v2"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

// Rand is the source of the uniform tie-breaks. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// BotMoveCalculator implements game.MoveCalculator.
type BotMoveCalculator struct {
	rng Rand
}

// NewMoveCalculator returns a calculator drawing from rng, or from the
// process-wide generator when rng is nil.
func NewMoveCalculator(rng Rand) *BotMoveCalculator {
	if rng == nil {
		rng = globalRand{}
	}
	return &BotMoveCalculator{rng: rng}
}

// CalculateNextMove determines the computer's next cell for the given
// difficulty. On easy, computerMoves is the ordinal of the move being chosen.
// It returns game.NoMove on a full board.
func (c *BotMoveCalculator) CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty game.Difficulty, computerMoves int) int {
	if len(game.EmptyCells(board)) == 0 {
		return game.NoMove
	}

	var rules []Rule
	switch difficulty {
	case game.Easy:
		rules = c.easyRules(mark, computerMoves)
	default:
		rules = hardRules(mark)
	}

	rule, candidates := cascade(board, rules)
	if len(candidates) == 0 {
		return game.NoMove
	}

	move := candidates[c.rng.IntN(len(candidates))]
	slog.Debug("computer move chosen",
		"bot.difficulty", difficulty,
		"bot.rule", rule,
		"bot.candidates", candidates,
		"bot.move", move,
	)
	return move
}
