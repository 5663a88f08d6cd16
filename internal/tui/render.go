package tui

import (
	"strings"

	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/search"
	"github.com/nikbrunner/linkify/internal/tui/layout"
)

// RenderOptions controls how RenderResults draws a list.
type RenderOptions struct {
	Highlight string // term to fuzzy-highlight in names
	Selection Selection
	Width     int // row width in cells; 0 disables truncation
	Styles    Styles
	Text      layout.TextConfig
}

// NoResultsText is shown in place of rows for an empty list.
const NoResultsText = "No results"

// RenderResults draws the rows of list. It depends only on its arguments.
//
// Each row is the name with the matched characters marked, a delete
// affordance for saved queries, the tags, a "read later" badge and a
// favourite star, followed by an indented description line when there is
// one. Every server string is sanitised before styling.
func RenderResults(list model.ResultList, opts RenderOptions) string {
	if list.Empty() {
		return opts.Styles.Empty.Render(NoResultsText)
	}

	selected, hasSelection := opts.Selection.Index()
	rows := make([]string, 0, list.Len())
	for i, item := range list.Items {
		rows = append(rows, renderRow(item, hasSelection && i == selected, opts))
	}
	return strings.Join(rows, "\n")
}

func renderRow(item model.ResultItem, selected bool, opts RenderOptions) string {
	s := opts.Styles
	name := layout.Sanitize(item.Name)
	if item.Kind == model.KindQuery {
		name = "@" + name
	}

	var line strings.Builder
	if selected {
		line.WriteString("▸ ")
	} else {
		line.WriteString("  ")
	}
	line.WriteString(highlightName(name, opts.Highlight, s))

	if item.Deletable() {
		line.WriteString("  " + s.DeleteMark.Render("✕ delete"))
	}
	if len(item.Tags) > 0 {
		tags := make([]string, 0, len(item.Tags))
		for _, t := range item.Tags {
			if t = layout.Sanitize(t); t != "" {
				tags = append(tags, "#"+t)
			}
		}
		if len(tags) > 0 {
			line.WriteString("  " + s.Tag.Render(strings.Join(tags, " ")))
		}
	}
	if item.ToRead {
		line.WriteString("  " + s.ReadLater.Render("read later"))
	}
	if item.Favourite {
		line.WriteString(" " + s.Favourite.Render("★"))
	}

	row := line.String()
	if opts.Width > 0 {
		row = layout.TruncateANSIAware(row, opts.Width, opts.Text)
	}
	if selected {
		row = s.ItemSelected.Render(row)
	} else {
		row = s.Item.Render(row)
	}

	desc := layout.Sanitize(item.Description)
	if desc == "" {
		return row
	}
	if opts.Width > 0 {
		desc, _ = layout.TruncateText(desc, opts.Width-s.Description.GetPaddingLeft(), opts.Text)
	}
	return row + "\n" + s.Description.Render(desc)
}

// highlightName marks the characters of name that fuzzy-match term.
func highlightName(name, term string, s Styles) string {
	idx := search.MatchIndexes(strings.TrimPrefix(term, "@"), name)
	if len(idx) == 0 {
		return name
	}

	marked := make(map[int]bool, len(idx))
	for _, i := range idx {
		marked[i] = true
	}

	var b strings.Builder
	for i, r := range name {
		if marked[i] {
			b.WriteString(s.Match.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
