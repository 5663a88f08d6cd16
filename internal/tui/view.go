package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/linkify/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	if !a.mounted {
		return ""
	}

	var body string
	if a.view == ViewClosed {
		body = a.renderBase()
	} else {
		body = lipgloss.Place(
			a.width,
			a.bodyHeight(),
			lipgloss.Center,
			lipgloss.Center,
			a.renderModal(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderHelpBar())
}

func (a App) bodyHeight() int {
	h := a.height - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// renderBase draws the page underneath the overlay.
func (a App) renderBase() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("ly"))
	b.WriteString("\n\n")
	if a.location != "" {
		b.WriteString(a.styles.Help.Render("Last opened: "))
		b.WriteString(layout.Sanitize(a.location))
	} else {
		b.WriteString(a.styles.Empty.Render(`Press ctrl+\ to search your links`))
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.bodyHeight()).
		Render(a.styles.App.Render(b.String()))
}

// renderModal draws the overlay box for the current view.
func (a App) renderModal() string {
	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	rowWidth := modalWidth - a.layoutConfig.Modal.ContentPadding

	var content strings.Builder
	switch a.view {
	case ViewSaveQuery:
		title := a.styles.Title.Render("Save query")
		if a.save.Storing {
			title += " " + a.styles.Empty.Render("saving...")
		}
		content.WriteString(title)
		content.WriteString("\n\n")
		query := layout.Sanitize(a.search.Input.Value())
		query, _ = layout.TruncateText(query, rowWidth-7, a.layoutConfig.Text)
		content.WriteString(a.styles.Help.Render("query: ") + query)
		content.WriteString("\n")
		content.WriteString(a.save.NameInput.View())
		if a.save.Overwrite {
			content.WriteString("\n")
			content.WriteString(a.styles.Warning.Render("⚠ A saved query with this name exists and will be overwritten"))
		}

	default:
		title := a.styles.Title.Render("Links")
		if a.search.Loading {
			title += " " + a.spinner.View()
		} else if !a.search.Results.Empty() {
			title += "  " + a.styles.Empty.Render(resultCount(a.search.Results.Len()))
		}
		content.WriteString(title)
		content.WriteString("\n\n")
		content.WriteString(a.search.Input.View())
		content.WriteString("\n\n")
		if a.configured() {
			content.WriteString(RenderResults(a.search.Results, RenderOptions{
				Highlight: a.search.Highlight,
				Selection: a.search.Selection,
				Width:     rowWidth,
				Styles:    a.styles,
				Text:      a.layoutConfig.Text,
			}))
		} else {
			content.WriteString(a.styles.Warning.Render("Not configured"))
			content.WriteString("\n")
			content.WriteString(a.styles.Help.Render("run `ly config --server URL --token TOKEN`"))
		}
	}

	return a.styles.Modal.Width(modalWidth).Render(content.String())
}

// modalRect is where the modal currently sits on screen.
func (a App) modalRect() layout.Rect {
	modal := a.renderModal()
	return layout.CenteredRect(a.width, a.bodyHeight(), lipgloss.Width(modal), lipgloss.Height(modal))
}

func resultCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// renderHelpBar renders the status line and the contextual hints.
func (a App) renderHelpBar() string {
	lines := make([]string, 0, helpBarHeight)

	// Empty spacer OR message (message replaces the gap)
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, a.renderHints(a.contextualHints()))

	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default: // MessageInfo
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
		prefix = ""
	}

	text, _ := layout.TruncateText(a.messageText, a.width-2, a.layoutConfig.Text)
	return msgStyle.Render(prefix + text)
}
