package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the main screen
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	First   key.Binding
	Last    key.Binding
	Switch  key.Binding
	Toggle  key.Binding
	Lock    key.Binding
	History key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		First:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		Last:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Switch:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		Toggle:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "disable/enable page")),
		Lock:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "lock view")),
		History: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "event log")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Switch, k.History, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.First, k.Last, k.Switch},
		{k.Toggle, k.Lock, k.Reset},
		{k.History, k.Help, k.Quit},
	}
}
