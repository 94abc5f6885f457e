package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Next       key.Binding
	Previous   key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Quit       key.Binding
}

func playlistKeys() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Previous:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		SeekBack:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5s")),
		SeekFwd:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5s")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// singleKeys disables everything but toggle and quit.
func singleKeys() keyMap {
	k := playlistKeys()
	for _, b := range []*key.Binding{&k.Next, &k.Previous, &k.SeekBack, &k.SeekFwd, &k.VolumeUp, &k.VolumeDown} {
		b.SetEnabled(false)
	}
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Previous, k.Next, k.SeekBack, k.SeekFwd, k.VolumeDown, k.VolumeUp, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
