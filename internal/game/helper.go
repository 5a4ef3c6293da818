package game

import (
	"fmt"
	"strings"
)

// ParseDifficulty converts user input such as "Easy" or " hard " into a
// Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// IsTerminal reports whether no further moves are accepted.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusDraw
}
