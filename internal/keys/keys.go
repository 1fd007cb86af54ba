// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// PlaygroundKeyMap defines the keybindings of the component playground.
type PlaygroundKeyMap struct {
	// Focus
	Next key.Binding
	Prev key.Binding

	// Actions
	Enter   key.Binding
	Up      key.Binding
	Down    key.Binding
	Escape  key.Binding
	Disable key.Binding
	Theme   key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// Playground holds the default playground bindings.
var Playground = DefaultPlaygroundKeyMap()

// DefaultPlaygroundKeyMap returns the default playground keybindings.
func DefaultPlaygroundKeyMap() PlaygroundKeyMap {
	return PlaygroundKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next component"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous component"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "press / open / select"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "option up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "option down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close menu"),
		),
		Disable: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle disabled"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k PlaygroundKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Enter, k.Disable, k.Theme, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k PlaygroundKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Enter, k.Escape},
		{k.Up, k.Down},
		{k.Disable, k.Theme, k.Help, k.Quit},
	}
}

// Typing reports whether a key press belongs to a focused text input rather
// than to a playground binding. Focus movement, enter, esc and ctrl+c escape
// the input.
func Typing(msg string) bool {
	switch msg {
	case "tab", "shift+tab", "enter", "esc", "ctrl+c":
		return false
	}
	return true
}
