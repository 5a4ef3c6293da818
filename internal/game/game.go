package game

// Status is the game's position in the playing -> won|draw state machine.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusDraw    Status = "draw"
)

// Difficulty selects the computer's move strategy.
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// NoMove is returned by a MoveCalculator when the board is full.
const NoMove = -1

// maxEasyComputerMoves is the number of marks the computer places on easy
// before every further turn is passed back to the human.
const maxEasyComputerMoves = 4

// MoveCalculator chooses the computer's next cell. computerMoves is the
// ordinal of the move being chosen on easy (1..4) and zero on hard.
type MoveCalculator interface {
	CalculateNextMove(board Board, mark PlayerMark, difficulty Difficulty, computerMoves int) int
}

// State is a snapshot of a game. WinningCombination is nil unless Status is
// StatusWon.
type State struct {
	Board              Board      `json:"board"`
	CurrentPlayer      PlayerMark `json:"currentPlayer"`
	Status             Status     `json:"status"`
	WinningCombination []int      `json:"winningCombination"`
}

// Winner derives the declared winner of a finished game. A combination the
// board actually holds names its own mark. On easy the combination may be
// fabricated for the human after O moved last, so a combination the board
// does not hold is credited to X rather than to the mark that is not to play.
func (s State) Winner() PlayerMark {
	if s.Status != StatusWon {
		return None
	}
	if len(s.WinningCombination) != 3 {
		return Opponent(s.CurrentPlayer)
	}
	mark := s.Board[s.WinningCombination[0]]
	if mark != None && s.Board[s.WinningCombination[1]] == mark && s.Board[s.WinningCombination[2]] == mark {
		return mark
	}
	return Human
}

func (s State) clone() State {
	cp := s
	if s.WinningCombination != nil {
		cp.WinningCombination = append([]int(nil), s.WinningCombination...)
	}
	return cp
}

// Game is a single tic-tac-toe match between the human (X) and the computer
// (O). It is not safe for concurrent use.
type Game struct {
	state         State
	difficulty    Difficulty
	computerMoves int
	calculator    MoveCalculator
}

// NewGame creates a game with an empty board and X to move.
func NewGame(difficulty Difficulty, calculator MoveCalculator) *Game {
	g := &Game{
		difficulty: difficulty,
		calculator: calculator,
	}
	g.ResetGame()
	return g
}

// GetState returns a copy of the current state.
func (g *Game) GetState() State {
	return g.state.clone()
}

// MakeMove places the current player's mark at index. It returns false,
// without changing anything, when the index is off the board, the cell is
// taken or the game is over.
func (g *Game) MakeMove(index int) bool {
	if index < IndexMin || index > IndexMax {
		return false
	}
	if g.state.Board[index] != None || g.state.Status != StatusPlaying {
		return false
	}

	mover := g.state.CurrentPlayer
	board := g.state.Board
	board[index] = mover

	outcome := ReconcileOutcome(DetectOutcome(board), board, g.difficulty, mover)

	var combination []int
	if outcome.Kind == OutcomeWin {
		combination = outcome.Pattern.Slice()
	}

	g.state = State{
		Board:              board,
		CurrentPlayer:      Opponent(mover),
		Status:             outcome.Status(),
		WinningCombination: combination,
	}
	return true
}

// MakeComputerMove lets the calculator play the current turn. On easy, once
// the computer has used four turns the rest are skipped: control goes back to
// X and the board is left untouched. It returns false when the game is over
// or no move is available.
func (g *Game) MakeComputerMove() bool {
	if g.state.Status != StatusPlaying {
		return false
	}

	if g.difficulty == Easy {
		if g.computerMoves >= maxEasyComputerMoves {
			g.state.CurrentPlayer = Human
			return true
		}
		g.computerMoves++
	}

	move := g.calculator.CalculateNextMove(g.state.Board, g.state.CurrentPlayer, g.difficulty, g.computerMoves)
	if move == NoMove {
		return false
	}
	return g.MakeMove(move)
}

// ResetGame starts a new game; the difficulty is kept.
func (g *Game) ResetGame() {
	g.state = State{
		Board:         Board{},
		CurrentPlayer: PlayerX,
		Status:        StatusPlaying,
	}
	g.computerMoves = 0
}

// SetDifficulty switches strategy and clears the computer move counter. The
// board is not touched.
func (g *Game) SetDifficulty(difficulty Difficulty) {
	g.difficulty = difficulty
	g.computerMoves = 0
}

// GetDifficulty returns the active difficulty.
func (g *Game) GetDifficulty() Difficulty {
	return g.difficulty
}

// ComputerMoveCount is the number of marks the computer has placed on easy in
// the current game.
func (g *Game) ComputerMoveCount() int {
	return g.computerMoves
}
