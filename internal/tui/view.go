package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"agentic-surfer/internal/domain"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Width(m.width).Render(title))
	sb.WriteString("\n")
	sb.WriteString(m.rule())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.rule())
	sb.WriteString("\n")
	sb.WriteString(m.inputRow())
	return sb.String()
}

func (m Model) rule() string {
	return m.styles.Rule.Render(strings.Repeat("─", m.width))
}

func (m Model) inputRow() string {
	cols := m.inputColumns()
	input := lipgloss.NewStyle().Width(cols).MaxWidth(cols).Render(m.input.View())

	button := m.styles.Button.Render(sendLabel)
	if m.state.Busy() {
		button = m.styles.ButtonDisabled.Render(sendLabel)
	}
	return input + " " + button
}

func (m Model) renderTranscript() string {
	width := m.viewport.Width
	var sb strings.Builder

	for _, msg := range m.state.Transcript() {
		switch msg.Sender {
		case domain.SenderUser:
			sb.WriteString(m.styles.UserLabel.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.UserText.Width(width).Render(msg.Text))
		case domain.SenderAgent:
			sb.WriteString(m.styles.AgentLabel.Render("Agent"))
			sb.WriteString("\n")
			sb.WriteString(m.renderAgentText(msg.Text, width))
		}
		sb.WriteString("\n\n")
	}

	if m.state.Busy() {
		sb.WriteString(m.styles.AgentLabel.Render("Agent"))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Typing.Render(m.spinner.View() + " thinking"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderAgentText(text string, width int) string {
	if text == domain.ConnectFailureText || strings.HasPrefix(text, "Error: ") {
		return m.styles.ErrorText.Width(width).Render(text)
	}
	if m.renderer != nil {
		if out, ok := m.safeRenderMarkdown(text); ok {
			return strings.TrimRight(out, "\n")
		}
	}
	return m.styles.AgentText.Width(width).Render(text)
}

// safeRenderMarkdown renders markdown, reporting false if the renderer fails
// or panics.
func (m Model) safeRenderMarkdown(text string) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("markdown render panicked", zap.Any("panic", r))
			out, ok = "", false
		}
	}()
	rendered, err := m.renderer.Render(text)
	if err != nil {
		m.logger.Debug("markdown render failed", zap.Error(err))
		return "", false
	}
	return rendered, true
}
