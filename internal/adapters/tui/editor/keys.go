package editor

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Edit    key.Binding
	Undo    key.Binding
	Redo    key.Binding
	Save    key.Binding
	Cancel  key.Binding
	Replace key.Binding
	Assist  key.Binding
	Copy    key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit:    key.NewBinding(key.WithKeys("ctrl+e", "enter"), key.WithHelp("enter", "edit")),
		Undo:    key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:    key.NewBinding(key.WithKeys("ctrl+y", "ctrl+shift+z"), key.WithHelp("ctrl+y", "redo")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard edits")),
		Replace: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "replace line")),
		Assist:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "assist line")),
		Copy:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "copy")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "save & quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Undo, k.Redo, k.Save, k.Cancel, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Edit, k.Undo, k.Redo, k.Save, k.Cancel},
		{k.Replace, k.Assist, k.Copy, k.Quit},
	}
}
