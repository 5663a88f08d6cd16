package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "↑/↓", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format: "↑/↓:move Enter:open"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (↑/↓)
	Edit   []Hint // Edit hints (save, delete)
	Action []Hint // Action hints (Enter, copy)
	System []Hint // System hints (Esc, quit)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// contextualHints returns the hints for the current view.
func (a App) contextualHints() HintSet {
	switch a.view {
	case ViewSearch:
		return a.searchHints()
	case ViewSaveQuery:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "save"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	default:
		return HintSet{
			Action: []Hint{{Key: `^\`, Desc: "search links"}},
			System: []Hint{{Key: "q", Desc: "quit"}},
		}
	}
}

func (a App) searchHints() HintSet {
	hints := HintSet{
		Nav: []Hint{{Key: "↑/↓", Desc: "move"}},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "Alt+Enter", Desc: "tab"},
		},
		Edit:   []Hint{{Key: "^S", Desc: "save query"}},
		System: []Hint{{Key: "Esc", Desc: "close"}},
	}

	item, ok := a.selectedItem()
	if !ok {
		return hints
	}
	if item.IsLink() {
		hints.Action = append(hints.Action, Hint{Key: "^Y", Desc: "copy"})
	}
	if item.Deletable() {
		hints.Edit = append(hints.Edit, Hint{Key: "^D", Desc: "delete"})
	}
	return hints
}
