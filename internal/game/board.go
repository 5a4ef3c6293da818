package game

import (
	"encoding/json"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"
)

// Human and Computer are fixed: X is always the human, O always the computer.
const (
	Human    = PlayerX
	Computer = PlayerO
)

// Board boundaries
const (
	BoardSize = 9
	IndexMin  = 0
	IndexMax  = BoardSize - 1
)

// Board is a 3x3 grid stored row-major: 0,1,2 / 3,4,5 / 6,7,8.
type Board [BoardSize]PlayerMark

// Pattern is one row, column or diagonal as a triple of board indices.
type Pattern [3]int

// WinPatterns is scanned in this order everywhere; the first match wins.
var WinPatterns = [8]Pattern{
	// Rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// Columns
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// Diagonals
	{0, 4, 8}, {2, 4, 6},
}

const Center = 4

var (
	Corners = [4]int{0, 2, 6, 8}
	Edges   = [4]int{1, 3, 5, 7}
)

// MarshalJSON encodes an empty cell as null.
func (m PlayerMark) MarshalJSON() ([]byte, error) {
	if m == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

func (m *PlayerMark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = PlayerMark(s)
	return nil
}

// Opponent returns the other mark.
func Opponent(mark PlayerMark) PlayerMark {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// CheckForWin returns the first pattern, in canonical order, whose three cells
// hold the same non-empty mark.
func CheckForWin(board Board) (Pattern, bool) {
	for _, p := range WinPatterns {
		a, b, c := p[0], p[1], p[2]
		if board[a] != None && board[a] == board[b] && board[a] == board[c] {
			return p, true
		}
	}
	return Pattern{}, false
}

// IsBoardFull checks that no cell is empty.
func IsBoardFull(board Board) bool {
	for _, cell := range board {
		if cell == None {
			return false
		}
	}
	return true
}

// EmptyCells lists the empty indices in ascending order.
func EmptyCells(board Board) []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range board {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// Count returns how many cells of the pattern hold mark.
func (p Pattern) Count(board Board, mark PlayerMark) int {
	n := 0
	for _, idx := range p {
		if board[idx] == mark {
			n++
		}
	}
	return n
}

// Contains reports whether idx is one of the pattern's cells.
func (p Pattern) Contains(idx int) bool {
	return p[0] == idx || p[1] == idx || p[2] == idx
}

// Slice copies the pattern into a fresh slice.
func (p Pattern) Slice() []int {
	return []int{p[0], p[1], p[2]}
}

// String renders the board as three text rows, empty cells shown as their
// 1-based cell number.
func (b Board) String() string {
	var sb strings.Builder
	for row := range [3]int{} {
		for col := range [3]int{} {
			idx := row*3 + col
			if b[idx] == None {
				sb.WriteByte(byte('1' + idx))
			} else {
				sb.WriteString(string(b[idx]))
			}
			if col < 2 {
				sb.WriteString(" | ")
			}
		}
		if row < 2 {
			sb.WriteString("\n---------\n")
		}
	}
	return sb.String()
}
