package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the overlay.
type KeyMap struct {
	Toggle    key.Binding
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	OpenTab   key.Binding
	SaveQuery key.Binding
	Delete    key.Binding
	YankURL   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
//
// Terminals cannot report ctrl+enter or shift+enter, so the save chord is
// ctrl+s and "open in new tab" is alt+enter.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(`ctrl+\`),
			key.WithHelp(`ctrl+\`, "toggle"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		OpenTab: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("Alt+Enter", "new tab"),
		),
		SaveQuery: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^S", "save query"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("^D", "delete query"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("^Y", "copy url"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("^C", "quit"),
		),
	}
}
