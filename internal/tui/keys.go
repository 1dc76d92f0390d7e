package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add     key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Undo    key.Binding
	Clear   key.Binding
	Theme   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeys() *keyMap {
	return &keyMap{
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Delete:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo"), key.WithDisabled()),
		Clear:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Disabled bindings drop out of the help line, so the undo hint tracks
// availability on its own.
func (k *keyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Undo}
}

func (k *keyMap) full() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Undo, k.Clear, k.Theme, k.Refresh}
}
