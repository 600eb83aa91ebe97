package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the confirmation prompt
type KeyMap struct {
	Confirm key.Binding
	Abort   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send transaction"),
		),
		Abort: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "abort"),
		),
	}
}

// ShortHelp returns key help text for the prompt
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Abort}
}
