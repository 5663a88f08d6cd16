package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/linkify/internal/debounce"
	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/tui/layout"
)

// ViewState is which part of the overlay is showing.
type ViewState int

const (
	ViewClosed ViewState = iota
	ViewSearch
	ViewSaveQuery
	// ViewLoading is ViewSearch with the spinner showing. It is reported by
	// App.State and never stored.
	ViewLoading
)

func (v ViewState) String() string {
	switch v {
	case ViewClosed:
		return "closed"
	case ViewSearch:
		return "search"
	case ViewSaveQuery:
		return "save-query"
	case ViewLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// MessageType determines the styling of status messages.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// Selection is the highlighted row, or none.
type Selection struct {
	index int
	valid bool
}

// NoSelection is the empty selection.
var NoSelection = Selection{}

// Selected returns a selection of row i.
func Selected(i int) Selection {
	return Selection{index: i, valid: true}
}

// Index returns the selected row and whether there is one.
func (s Selection) Index() (int, bool) {
	return s.index, s.valid
}

// Next moves down one row, wrapping past the end. From no selection the
// first row is selected.
func (s Selection) Next(n int) Selection {
	if n <= 0 {
		return NoSelection
	}
	if !s.valid || s.index >= n-1 {
		return Selected(0)
	}
	return Selected(s.index + 1)
}

// Prev moves up one row, wrapping past the start. From no selection the
// last row is selected.
func (s Selection) Prev(n int) Selection {
	if n <= 0 {
		return NoSelection
	}
	if !s.valid || s.index <= 0 || s.index > n-1 {
		return Selected(n - 1)
	}
	return Selected(s.index - 1)
}

// SearchState holds the search view: input, results and request tracking.
type SearchState struct {
	Input     textinput.Model
	Results   model.ResultList
	Selection Selection
	Highlight string // term the rendered names are matched against
	Loading   bool

	debouncer debounce.Debouncer
	gen       debounce.Generation
}

// NewSearchState creates a SearchState with an initialised input.
func NewSearchState(cfg layout.LayoutConfig, delay time.Duration) SearchState {
	input := textinput.New()
	input.Placeholder = "Search links, @saved query, name. for exact"
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Prompt = "> "

	return SearchState{
		Input:     input,
		debouncer: debounce.New("search", delay),
	}
}

// Reset clears input and results and makes in-flight work stale.
func (s *SearchState) Reset() {
	s.Input.Reset()
	s.Results = model.ResultList{}
	s.Selection = NoSelection
	s.Highlight = ""
	s.Loading = false
	s.debouncer.Cancel()
	s.gen.Invalidate()
}

// SaveState holds the save-query view.
type SaveState struct {
	NameInput textinput.Model
	Overwrite bool // a saved query with this name exists
	Storing   bool // a storeQuery request is in flight

	debouncer debounce.Debouncer
	gen       debounce.Generation // overwrite checks
	store     debounce.Generation // storeQuery requests
}

// NewSaveState creates a SaveState with an initialised name input.
func NewSaveState(cfg layout.LayoutConfig, delay time.Duration) SaveState {
	input := textinput.New()
	input.Placeholder = "Name"
	input.CharLimit = cfg.Input.NameCharLimit
	input.Prompt = "name: "

	return SaveState{
		NameInput: input,
		debouncer: debounce.New("save-name", delay),
	}
}

// Reset clears the name and hides the overwrite warning.
func (s *SaveState) Reset() {
	s.NameInput.Reset()
	s.Overwrite = false
	s.Storing = false
	s.debouncer.Cancel()
	s.gen.Invalidate()
	s.store.Invalidate()
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.MiniDot))
}
