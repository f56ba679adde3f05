package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the editor's shortcuts. Plain keys go to the editor, so every
// action uses a control chord.
type keyMap struct {
	Run      key.Binding
	Submit   key.Binding
	Hint     key.Binding
	Solution key.Binding
	Next     key.Binding
	Prev     key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "chạy thử"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "nộp bài"),
		),
		Hint: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "gợi ý"),
		),
		Solution: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "đáp án"),
		),
		Next: key.NewBinding(
			key.WithKeys("ctrl+n", "pgdown"),
			key.WithHelp("ctrl+n", "bài sau"),
		),
		Prev: key.NewBinding(
			key.WithKeys("ctrl+p", "pgup"),
			key.WithHelp("ctrl+p", "bài trước"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "xóa kết quả"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "thoát"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Submit, k.Hint, k.Next, k.Prev, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Submit, k.Clear},
		{k.Hint, k.Solution},
		{k.Next, k.Prev, k.Quit},
	}
}
