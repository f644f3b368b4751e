package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit    key.Binding
	refresh key.Binding
	copy    key.Binding
	info    key.Binding
	close   key.Binding
}

var keys = keyMap{
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	refresh: key.NewBinding(key.WithKeys("r")),
	copy:    key.NewBinding(key.WithKeys("c")),
	info:    key.NewBinding(key.WithKeys("i")),
	close:   key.NewBinding(key.WithKeys("esc", "enter")),
}
