package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit   key.Binding
	Find   key.Binding
	Start  key.Binding
	Next   key.Binding
	Prev   key.Binding
	Regex  key.Binding
	Save   key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
		Find:   key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "find")),
		Start:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Next:   key.NewBinding(key.WithKeys("ctrl+n", "f3"), key.WithHelp("ctrl+n", "next")),
		Prev:   key.NewBinding(key.WithKeys("ctrl+p", "shift+f3", "f15"), key.WithHelp("ctrl+p", "prev")),
		Regex:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "regex")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "edit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Find, k.Next, k.Prev, k.Regex, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Start, k.Escape}}
}
