package game

// OutcomeKind classifies a board after a move.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeWin
	OutcomeDraw
)

// Outcome is the result of evaluating a board. Pattern is only meaningful
// when Kind is OutcomeWin.
type Outcome struct {
	Kind    OutcomeKind
	Pattern Pattern
}

// Status maps an outcome onto the game status machine.
func (o Outcome) Status() Status {
	switch o.Kind {
	case OutcomeWin:
		return StatusWon
	case OutcomeDraw:
		return StatusDraw
	default:
		return StatusPlaying
	}
}

// DetectOutcome reports what the board actually shows.
func DetectOutcome(board Board) Outcome {
	if p, ok := CheckForWin(board); ok {
		return Outcome{Kind: OutcomeWin, Pattern: p}
	}
	if IsBoardFull(board) {
		return Outcome{Kind: OutcomeDraw}
	}
	return Outcome{Kind: OutcomeNone}
}

// ReconcileOutcome applies the difficulty policy to a detected outcome. On
// easy the computer can never win and a full board never draws: both are
// rewritten into a human win over a fabricated pattern.
func ReconcileOutcome(detected Outcome, board Board, difficulty Difficulty, mover PlayerMark) Outcome {
	if difficulty != Easy {
		return detected
	}
	switch {
	case detected.Kind == OutcomeWin && mover == Computer:
		return Outcome{Kind: OutcomeWin, Pattern: CreateWinningCombination(board, Human)}
	case detected.Kind == OutcomeDraw:
		return Outcome{Kind: OutcomeWin, Pattern: CreateWinningCombination(board, Human)}
	}
	return detected
}

// CreateWinningCombination picks a pattern to declare as player's win without
// requiring it to be complete on the board. Preference: a pattern where player
// already holds two or more cells, then one where player holds any cell, then
// the pattern whose six outside cells hold the most player marks.
func CreateWinningCombination(board Board, player PlayerMark) Pattern {
	for _, p := range WinPatterns {
		if p.Count(board, player) >= 2 {
			return p
		}
	}

	for _, p := range WinPatterns {
		if p.Count(board, player) >= 1 {
			return p
		}
	}

	best := WinPatterns[0]
	bestOutside := -1
	for _, p := range WinPatterns {
		outside := 0
		for idx, cell := range board {
			if !p.Contains(idx) && cell == player {
				outside++
			}
		}
		if outside > bestOutside {
			bestOutside = outside
			best = p
		}
	}
	return best
}
