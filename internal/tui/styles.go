package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#101F38")
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#6b7685")
	colorLight   = lipgloss.Color("#f2f2f2")
	colorError   = lipgloss.Color("#e53935")
)

type styles struct {
	Header         lipgloss.Style
	Rule           lipgloss.Style
	UserLabel      lipgloss.Style
	AgentLabel     lipgloss.Style
	UserText       lipgloss.Style
	AgentText      lipgloss.Style
	ErrorText      lipgloss.Style
	Typing         lipgloss.Style
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLight).
			Background(colorPrimary).
			PaddingLeft(1),
		Rule:           lipgloss.NewStyle().Foreground(colorMuted),
		UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		AgentLabel:     lipgloss.NewStyle().Bold(true).Foreground(colorLight),
		UserText:       lipgloss.NewStyle().PaddingLeft(2),
		AgentText:      lipgloss.NewStyle().PaddingLeft(2),
		ErrorText:      lipgloss.NewStyle().PaddingLeft(2).Foreground(colorError),
		Typing:         lipgloss.NewStyle().PaddingLeft(2).Foreground(colorMuted),
		Button:         lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		ButtonDisabled: lipgloss.NewStyle().Foreground(colorMuted),
	}
}
