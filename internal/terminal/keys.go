package terminal

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings of the board screen.
type KeyMap struct {
	Cell  key.Binding
	Reset key.Binding
	Easy  key.Binding
	Hard  key.Binding
	Quit  key.Binding
}

// Keys is the default KeyMap. Cells are numbered 1-9 like a phone keypad read
// top to bottom.
var Keys = KeyMap{
	Cell: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "place X"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "new game"),
	),
	Easy: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "easy"),
	),
	Hard: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "hard"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Cell, k.Reset, k.Easy, k.Hard, k.Quit}
}
