package game

import (
	"encoding/json"
	"slices"
	"testing"
)

// scriptedCalculator replays a fixed list of moves and records what it saw.
type scriptedCalculator struct {
	moves []int
	calls []int
}

func (s *scriptedCalculator) CalculateNextMove(board Board, mark PlayerMark, difficulty Difficulty, computerMoves int) int {
	s.calls = append(s.calls, computerMoves)
	for len(s.moves) > 0 {
		next := s.moves[0]
		s.moves = s.moves[1:]
		if next < 0 || board[next] == None {
			return next
		}
	}
	for i, cell := range board {
		if cell == None {
			return i
		}
	}
	return NoMove
}

func playMoves(t *testing.T, g *Game, moves ...int) {
	t.Helper()
	for i, m := range moves {
		if !g.MakeMove(m) {
			t.Fatalf("move %d (index %d) was rejected", i, m)
		}
	}
}

func TestNewGameInitialState(t *testing.T) {
	g := NewGame(Hard, &scriptedCalculator{})
	s := g.GetState()

	if s.Board != (Board{}) {
		t.Errorf("expected empty board, got %v", s.Board)
	}
	if s.CurrentPlayer != PlayerX {
		t.Errorf("expected X to start, got %v", s.CurrentPlayer)
	}
	if s.Status != StatusPlaying {
		t.Errorf("expected status playing, got %v", s.Status)
	}
	if s.WinningCombination != nil {
		t.Errorf("expected no winning combination, got %v", s.WinningCombination)
	}
	if g.GetDifficulty() != Hard {
		t.Errorf("expected difficulty hard, got %v", g.GetDifficulty())
	}
}

func TestMakeMoveRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup []int
		index int
	}{
		{name: "Negative index", index: -1},
		{name: "Index past the board", index: 9},
		{name: "Occupied cell", setup: []int{4}, index: 4},
		{name: "Game already won", setup: []int{0, 3, 1, 4, 2}, index: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame(Hard, &scriptedCalculator{})
			playMoves(t, g, tt.setup...)
			before := g.GetState()

			if g.MakeMove(tt.index) {
				t.Fatalf("MakeMove(%d) got = true, want false", tt.index)
			}
			after := g.GetState()
			if after.Board != before.Board || after.CurrentPlayer != before.CurrentPlayer || after.Status != before.Status {
				t.Errorf("rejected move mutated state: before %+v, after %+v", before, after)
			}
		})
	}
}

func TestMakeMoveTogglesPlayer(t *testing.T) {
	g := NewGame(Hard, &scriptedCalculator{})
	playMoves(t, g, 0)
	if got := g.GetState().CurrentPlayer; got != PlayerO {
		t.Fatalf("after X moves, got current player %v, want O", got)
	}
	playMoves(t, g, 1)
	if got := g.GetState().CurrentPlayer; got != PlayerX {
		t.Fatalf("after O moves, got current player %v, want X", got)
	}
}

func TestMakeMoveWinAndDraw(t *testing.T) {
	tests := []struct {
		name       string
		difficulty Difficulty
		moves      []int
		wantStatus Status
		wantCombo  []int
		wantWinner PlayerMark
	}{
		{
			name:       "Hard - X wins top row",
			difficulty: Hard,
			moves:      []int{0, 3, 1, 4, 2},
			wantStatus: StatusWon,
			wantCombo:  []int{0, 1, 2},
			wantWinner: PlayerX,
		},
		{
			name:       "Hard - O wins middle column",
			difficulty: Hard,
			moves:      []int{0, 1, 3, 4, 8, 7},
			wantStatus: StatusWon,
			wantCombo:  []int{1, 4, 7},
			wantWinner: PlayerO,
		},
		{
			name:       "Hard - full board draws",
			difficulty: Hard,
			moves:      []int{0, 1, 2, 4, 3, 5, 7, 6, 8},
			wantStatus: StatusDraw,
			wantCombo:  nil,
			wantWinner: None,
		},
		{
			name:       "Easy - human win is genuine",
			difficulty: Easy,
			moves:      []int{0, 3, 1, 4, 2},
			wantStatus: StatusWon,
			wantCombo:  []int{0, 1, 2},
			wantWinner: PlayerX,
		},
		{
			name:       "Easy - computer line is re-attributed to the human",
			difficulty: Easy,
			// X: 0, 2, 8  O: 1, 4, 7 completes the middle column
			moves:      []int{0, 1, 2, 4, 8, 7},
			wantStatus: StatusWon,
			// X holds 0 and 2 in the top row
			wantCombo:  []int{0, 1, 2},
			wantWinner: PlayerX,
		},
		{
			name:       "Easy - draw is rewritten for the human",
			difficulty: Easy,
			moves:      []int{0, 1, 2, 4, 3, 5, 7, 6, 8},
			wantStatus: StatusWon,
			// X holds 0 and 2 in the top row
			wantCombo:  []int{0, 1, 2},
			wantWinner: PlayerX,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame(tt.difficulty, &scriptedCalculator{})
			playMoves(t, g, tt.moves...)
			s := g.GetState()

			if s.Status != tt.wantStatus {
				t.Errorf("status got = %v, want %v", s.Status, tt.wantStatus)
			}
			if !slices.Equal(s.WinningCombination, tt.wantCombo) {
				t.Errorf("winning combination got = %v, want %v", s.WinningCombination, tt.wantCombo)
			}
			if got := s.Winner(); got != tt.wantWinner {
				t.Errorf("Winner() got = %v, want %v", got, tt.wantWinner)
			}
		})
	}
}

func TestMixedLineIsNotAWin(t *testing.T) {
	g := NewGame(Hard, &scriptedCalculator{})
	// X,O,X / O,X,O / _,_,_
	playMoves(t, g, 0, 1, 2, 3, 4, 5)
	if IsBoardFull(g.GetState().Board) {
		t.Fatal("board should not be full")
	}

	// O plays 6: column 0,3,6 holds X,O,O.
	g.state.CurrentPlayer = PlayerO
	playMoves(t, g, 6)
	s := g.GetState()
	if s.Status != StatusPlaying {
		t.Errorf("mixed column reported status %v, want playing", s.Status)
	}
	if s.WinningCombination != nil {
		t.Errorf("mixed column reported combination %v", s.WinningCombination)
	}
}

func TestStatusNeverGoesBackward(t *testing.T) {
	sequences := [][]int{
		{0, 3, 1, 4, 2, 5, 6},
		{4, 0, 8, 2, 1, 7, 6, 3, 5},
		{0, 1, 2, 4, 3, 5, 7, 6, 8},
	}
	for _, difficulty := range []Difficulty{Easy, Hard} {
		for _, seq := range sequences {
			g := NewGame(difficulty, &scriptedCalculator{})
			terminal := false
			for _, m := range seq {
				g.MakeMove(m)
				s := g.GetState()
				if terminal && s.Status == StatusPlaying {
					t.Fatalf("%s %v: status went back to playing", difficulty, seq)
				}
				if s.Status.IsTerminal() {
					terminal = true
				}
				if (s.Status == StatusWon) != (len(s.WinningCombination) == 3) {
					t.Fatalf("%s %v: status %v with combination %v", difficulty, seq, s.Status, s.WinningCombination)
				}
			}
		}
	}
}

func TestGetStateIsACopy(t *testing.T) {
	g := NewGame(Hard, &scriptedCalculator{})
	playMoves(t, g, 0, 3, 1, 4, 2)

	s := g.GetState()
	s.Board[8] = PlayerO
	s.WinningCombination[0] = 7

	again := g.GetState()
	if again.Board[8] != None {
		t.Errorf("mutating snapshot board leaked into game: %v", again.Board)
	}
	if again.WinningCombination[0] != 0 {
		t.Errorf("mutating snapshot combination leaked into game: %v", again.WinningCombination)
	}
}

func TestResetGame(t *testing.T) {
	calc := &scriptedCalculator{}
	g := NewGame(Easy, calc)
	playMoves(t, g, 0)
	g.MakeComputerMove()
	playMoves(t, g, 4)
	if g.ComputerMoveCount() == 0 {
		t.Fatal("expected the computer move counter to advance")
	}

	g.ResetGame()
	s := g.GetState()
	if s.Board != (Board{}) || s.CurrentPlayer != PlayerX || s.Status != StatusPlaying || s.WinningCombination != nil {
		t.Errorf("ResetGame() left state %+v", s)
	}
	if g.ComputerMoveCount() != 0 {
		t.Errorf("ResetGame() left counter at %d", g.ComputerMoveCount())
	}
	if g.GetDifficulty() != Easy {
		t.Errorf("ResetGame() changed difficulty to %v", g.GetDifficulty())
	}
}

func TestSetDifficultyResetsCounterOnly(t *testing.T) {
	g := NewGame(Easy, &scriptedCalculator{})
	playMoves(t, g, 0)
	g.MakeComputerMove()
	board := g.GetState().Board

	g.SetDifficulty(Hard)
	if g.ComputerMoveCount() != 0 {
		t.Errorf("counter got = %d, want 0", g.ComputerMoveCount())
	}
	if g.GetState().Board != board {
		t.Errorf("SetDifficulty touched the board")
	}
	if g.GetDifficulty() != Hard {
		t.Errorf("difficulty got = %v, want hard", g.GetDifficulty())
	}
}

func TestMakeComputerMove(t *testing.T) {
	t.Run("Game over", func(t *testing.T) {
		g := NewGame(Hard, &scriptedCalculator{})
		playMoves(t, g, 0, 3, 1, 4, 2)
		if g.MakeComputerMove() {
			t.Error("MakeComputerMove() after a win got = true, want false")
		}
	})

	t.Run("No move available", func(t *testing.T) {
		g := NewGame(Hard, &scriptedCalculator{moves: []int{NoMove}})
		playMoves(t, g, 0)
		if g.MakeComputerMove() {
			t.Error("MakeComputerMove() with NoMove got = true, want false")
		}
	})

	t.Run("Easy computer line is credited to the human", func(t *testing.T) {
		// X: 1, 3, 5, 7  O: 0, 4, 6 then 2 completes the 2-4-6 diagonal
		g := NewGame(Easy, &scriptedCalculator{moves: []int{0, 4, 6, 2}})
		for _, human := range []int{1, 3, 5, 7} {
			if !g.MakeMove(human) {
				t.Fatalf("MakeMove(%d) got = false, want true", human)
			}
			if !g.MakeComputerMove() {
				t.Fatalf("MakeComputerMove() after %d got = false, want true", human)
			}
		}

		s := g.GetState()
		if s.Board[2] != PlayerO {
			t.Fatalf("cell 2 got = %v, want O", s.Board[2])
		}
		if s.Status != StatusWon {
			t.Fatalf("status got = %v, want won", s.Status)
		}
		// X holds 3 and 5 in the middle row, the first pattern with two X.
		if !slices.Equal(s.WinningCombination, []int{3, 4, 5}) {
			t.Errorf("winning combination got = %v, want [3 4 5]", s.WinningCombination)
		}
		if s.CurrentPlayer != PlayerX {
			t.Errorf("current player got = %v, want X", s.CurrentPlayer)
		}
		if got := s.Winner(); got != PlayerX {
			t.Errorf("Winner() got = %v, want X", got)
		}
		if g.ComputerMoveCount() != 4 {
			t.Errorf("counter got = %d, want 4", g.ComputerMoveCount())
		}
	})

	t.Run("Hard mode does not count moves", func(t *testing.T) {
		calc := &scriptedCalculator{}
		g := NewGame(Hard, calc)
		playMoves(t, g, 0)
		if !g.MakeComputerMove() {
			t.Fatal("MakeComputerMove() got = false")
		}
		if g.ComputerMoveCount() != 0 || calc.calls[0] != 0 {
			t.Errorf("hard mode counted moves: counter %d, calls %v", g.ComputerMoveCount(), calc.calls)
		}
	})

	t.Run("Easy mode locks out after four moves", func(t *testing.T) {
		calc := &scriptedCalculator{moves: []int{1, 3, 5, 7}}
		g := NewGame(Easy, calc)
		// X takes cells that never line up with each other's remaining gaps
		// before the computer has placed its four marks.
		humanMoves := []int{0, 8, 2, 6}
		for _, m := range humanMoves {
			playMoves(t, g, m)
			if !g.MakeComputerMove() {
				t.Fatalf("computer move after %d rejected", m)
			}
		}
		if !slices.Equal(calc.calls, []int{1, 2, 3, 4}) {
			t.Fatalf("calculator saw ordinals %v, want [1 2 3 4]", calc.calls)
		}

		g.state.CurrentPlayer = PlayerO
		before := g.GetState()
		if !g.MakeComputerMove() {
			t.Fatal("locked out computer move got = false, want true")
		}
		after := g.GetState()
		if after.Board != before.Board {
			t.Errorf("locked out computer filled a cell: %v", after.Board)
		}
		if after.CurrentPlayer != PlayerX {
			t.Errorf("locked out turn left current player %v", after.CurrentPlayer)
		}
		if len(calc.calls) != 4 {
			t.Errorf("calculator consulted during lockout: %v", calc.calls)
		}
	})
}

func TestStateJSON(t *testing.T) {
	g := NewGame(Hard, &scriptedCalculator{})
	playMoves(t, g, 4)

	data, err := json.Marshal(g.GetState())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"board":[null,null,null,null,"X",null,null,null,null],"currentPlayer":"O","status":"playing","winningCombination":null}`
	if string(data) != want {
		t.Errorf("Marshal() got = %s, want %s", data, want)
	}

	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Board != g.GetState().Board {
		t.Errorf("decoded board got = %v, want %v", decoded.Board, g.GetState().Board)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{in: "easy", want: Easy},
		{in: " Hard ", want: Hard},
		{in: "medium", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDifficulty(%q) got = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
