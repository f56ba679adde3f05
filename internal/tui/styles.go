package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title     lipgloss.Style
	Progress  lipgloss.Style
	Prompt    lipgloss.Style
	Label     lipgloss.Style
	Correct   lipgloss.Style
	Incorrect lipgloss.Style
	Error     lipgloss.Style
	Hint      lipgloss.Style
	Solution  lipgloss.Style
	Muted     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Progress:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Prompt:    lipgloss.NewStyle().MarginTop(1),
		Label:     lipgloss.NewStyle().Bold(true),
		Correct:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Incorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Hint:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("14")).Padding(0, 1),
		Solution:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("13")).Padding(0, 1),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
