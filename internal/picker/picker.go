// Package picker is a one-shot chooser for `ly open` when a query matches
// more than one link.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/search"
	"github.com/nikbrunner/linkify/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	matchStyle = lipgloss.NewStyle().
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true).
			MarginBottom(1)
)

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker with the given search results.
func New(results []search.SearchResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		cursor:  0,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit

		case tea.KeyEnter:
			if len(p.results) == 0 {
				return p, nil
			}
			p.selected = true
			return p, tea.Quit

		case tea.KeyDown, tea.KeyCtrlN:
			p.moveDown()
			return p, nil

		case tea.KeyUp, tea.KeyCtrlP:
			p.moveUp()
			return p, nil
		}

		if msg.Type == tea.KeyRunes {
			switch string(msg.Runes) {
			case "j":
				p.moveDown()
			case "k":
				p.moveUp()
			case "q":
				p.cancelled = true
				return p, tea.Quit
			}
		}
	}

	return p, nil
}

// moveDown and moveUp wrap around, like the overlay list.
func (p *Picker) moveDown() {
	if len(p.results) == 0 {
		return
	}
	p.cursor = (p.cursor + 1) % len(p.results)
}

func (p *Picker) moveUp() {
	if len(p.results) == 0 {
		return
	}
	p.cursor = (p.cursor - 1 + len(p.results)) % len(p.results)
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Open: %s (%d results)", layout.Sanitize(p.query), len(p.results))))
	b.WriteString("\n\n")

	text := layout.DefaultConfig().Text
	start, shown := p.visible()
	for j, result := range shown {
		i := start + j
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := highlight(layout.Sanitize(result.Link.Title()), result.MatchedIndexes, style)
		if result.Link.ToRead {
			title += urlStyle.Render("  read later")
		}
		url, _ := layout.TruncateText(layout.Sanitize(result.Link.Href), p.width-3, text)

		b.WriteString(cursor + title + "\n")
		b.WriteString("   " + urlStyle.Render(url) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(urlStyle.Render("j/k: move  Enter: open  q/Esc: cancel"))

	return b.String()
}

// visible returns the window of results that fits on screen, two lines
// each, keeping the cursor in view.
func (p Picker) visible() (int, []search.SearchResult) {
	rows := (p.height - 5) / 2
	if rows < 1 || rows >= len(p.results) {
		return 0, p.results
	}
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	return start, p.results[start : start+rows]
}

// highlight renders text with the matched byte offsets underlined.
func highlight(text string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(text)
	}
	marks := make(map[int]bool, len(matched))
	for _, i := range matched {
		marks[i] = true
	}
	var b strings.Builder
	for i, r := range text {
		if marks[i] {
			b.WriteString(base.Inherit(matchStyle).Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// SelectedLink returns the selected link, or nil if cancelled.
func (p Picker) SelectedLink() *model.Link {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Link
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
