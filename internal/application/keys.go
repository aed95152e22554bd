package application

import "github.com/charmbracelet/bubbles/key"

/* ----------------------------------------
	KEY MAP
---------------------------------------- */

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Load     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Jump     key.Binding
	JumpBack key.Binding
	Handle   key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Load:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load file")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev column")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next column")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "handle -1")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "handle +1")),
		JumpBack: key.NewBinding(key.WithKeys("pgdown", "H"), key.WithHelp("H", "handle -10")),
		Jump:     key.NewBinding(key.WithKeys("pgup", "L"), key.WithHelp("L", "handle +10")),
		Handle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "switch handle")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Load, k.Up, k.Left, k.Handle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Load},
		{k.Up, k.Down},
		{k.Left, k.Right, k.JumpBack, k.Jump, k.Handle},
		{k.Quit},
	}
}
