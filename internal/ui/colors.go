package ui

import "github.com/charmbracelet/lipgloss"

const (
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF0000")
	orange = lipgloss.Color("#FFA500")
	grey   = lipgloss.Color("#626262")
)

var styles = newTheme()

// theme holds the styles shared by every view.
type theme struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	phase lipgloss.Style
	box   lipgloss.Style
}

func newTheme() theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return theme{
		title: fg(purple).Bold(true).MarginBottom(1),
		ok:    fg(green).Bold(true),
		err:   fg(red).Bold(true),
		warn:  fg(orange),
		help:  fg(grey).Italic(true),
		phase: fg(purple),
		box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(grey).Padding(0, 1),
	}
}
