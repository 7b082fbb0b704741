package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	First     key.Binding
	Prev      key.Binding
	Next      key.Binding
	Last      key.Binding
	NextGroup key.Binding
	PrevGroup key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		First:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
		Prev:      key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "previous")),
		Next:      key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next")),
		Last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
		NextGroup: key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next tool")),
		PrevGroup: key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "previous tool")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.NextGroup, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.First, k.Prev, k.Next, k.Last},
		{k.NextGroup, k.PrevGroup, k.Quit},
	}
}
