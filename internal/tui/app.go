package tui

import (
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/linkify/internal/debounce"
	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/tui/layout"
)

// DefaultTimeout bounds every request the overlay makes.
const DefaultTimeout = 10 * time.Second

// helpBarHeight is the number of lines below the base page: status and hints.
const helpBarHeight = 2

// App is the bubbletea model for the selector overlay.
type App struct {
	backend  Backend
	navigate func(url string) error
	copy     func(text string) error
	logger   *slog.Logger
	timeout  time.Duration

	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	view      ViewState
	mounted   bool
	startOpen bool
	search    SearchState
	save      SaveState
	spinner   spinner.Model

	// location is the URL the base page shows; replaced on navigation.
	location string

	// Status message line
	messageText string
	messageType MessageType

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Backend Backend

	// Navigate replaces the current page with url. Optional.
	Navigate func(url string) error
	// Copy writes text to the clipboard. Defaults to the system clipboard.
	Copy func(text string) error

	Debounce     time.Duration        // optional, debounce.DefaultDelay if zero
	Timeout      time.Duration        // optional, DefaultTimeout if zero
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	Logger       *slog.Logger         // optional, slog.Default if nil

	// StartOpen opens the overlay as soon as it is mounted.
	StartOpen bool
	// Location is the initial base page.
	Location string
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	copyFn := params.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	search := NewSearchState(layoutCfg, params.Debounce)
	search.Input.Cursor.SetMode(cursor.CursorStatic)
	save := NewSaveState(layoutCfg, params.Debounce)
	save.NameInput.Cursor.SetMode(cursor.CursorStatic)

	return App{
		backend:      params.Backend,
		navigate:     params.Navigate,
		copy:         copyFn,
		logger:       logger,
		timeout:      timeout,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutCfg,
		view:         ViewClosed,
		startOpen:    params.StartOpen,
		search:       search,
		save:         save,
		spinner:      newSpinner(),
		location:     params.Location,
		width:        80,
		height:       24,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeInputs()
		if !a.mounted {
			a.mounted = true
			a.logger.Debug("overlay mounted", "width", msg.Width, "height", msg.Height)
			if a.startOpen {
				return a, a.open()
			}
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if !a.mounted {
			return a, nil
		}
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case debounce.Msg:
		return a.handleDebounce(msg)

	case spinner.TickMsg:
		if !a.search.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case resultsMsg:
		return a.handleResults(msg)

	case overwriteMsg:
		if !a.save.gen.Current(msg.gen) {
			return a, nil
		}
		if msg.err != nil {
			a.logger.Warn("overwrite check failed", "error", msg.err)
			return a, nil
		}
		a.save.Overwrite = msg.exists
		return a, nil

	case queryStoredMsg:
		return a.handleQueryStored(msg)

	case queryRemovedMsg:
		if msg.err != nil {
			a.logger.Error("remove query failed", "name", msg.name, "error", msg.err)
			a.setMessage(MessageError, "Delete failed: "+msg.err.Error())
			return a, nil
		}
		a.setMessage(MessageSuccess, "Deleted @"+msg.name)
		if a.view != ViewSearch {
			return a, nil
		}
		return a, a.runSearch()

	case linkFollowedMsg:
		if msg.navErr != nil {
			a.logger.Error("navigation failed", "url", msg.url, "new_tab", msg.newTab, "error", msg.navErr)
			a.setMessage(MessageError, "Open failed: "+msg.navErr.Error())
		}
		if msg.readErr != nil {
			a.logger.Warn("mark read failed", "url", msg.url, "error", msg.readErr)
		}
		return a, nil

	case copiedMsg:
		if msg.err != nil {
			a.logger.Error("clipboard write failed", "error", msg.err)
			a.setMessage(MessageError, "Copy failed: "+msg.err.Error())
			return a, nil
		}
		a.setMessage(MessageSuccess, "Copied "+msg.url)
		return a, nil
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Toggle) {
		if a.view == ViewClosed {
			return a, a.open()
		}
		a.close()
		return a, nil
	}

	switch a.view {
	case ViewSearch:
		return a.handleSearchKey(msg)
	case ViewSaveQuery:
		return a.handleSaveKey(msg)
	default:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := a.search.Results.Len()

	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.close()
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.search.Selection = a.search.Selection.Next(n)
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.search.Selection = a.search.Selection.Prev(n)
		return a, nil

	case key.Matches(msg, a.keys.OpenTab):
		return a.activate(true)

	case key.Matches(msg, a.keys.Open):
		return a.activate(false)

	case key.Matches(msg, a.keys.SaveQuery):
		a.view = ViewSaveQuery
		a.save.Reset()
		a.search.Input.Blur()
		a.clearMessage()
		return a, a.save.NameInput.Focus()

	case key.Matches(msg, a.keys.Delete):
		item, ok := a.selectedItem()
		if !ok || !item.Deletable() {
			return a, nil
		}
		return a, a.removeQueryCmd(item)

	case key.Matches(msg, a.keys.YankURL):
		item, ok := a.selectedItem()
		if !ok || !item.IsLink() {
			return a, nil
		}
		return a, a.copyCmd(item.Target)
	}

	before := a.search.Input.Value()
	var cmd tea.Cmd
	a.search.Input, cmd = a.search.Input.Update(msg)
	if a.search.Input.Value() == before {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.search.debouncer.Trigger())
}

// activate runs the selected item: a saved query loads into the search box,
// a link closes the overlay and is followed.
func (a App) activate(newTab bool) (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}

	if item.Kind == model.KindQuery {
		a.search.Input.SetValue(item.Query)
		a.search.Input.CursorEnd()
		return a, a.search.debouncer.Trigger()
	}

	a.close()
	if !newTab {
		a.location = item.Target
	}
	a.logger.Info("follow link", "url", item.Target, "id", item.ID.String(), "new_tab", newTab)
	return a, a.followLinkCmd(item, newTab)
}

func (a App) handleSaveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		return a, a.backToSearch()

	case key.Matches(msg, a.keys.Open):
		name := a.save.NameInput.Value()
		query := a.search.Input.Value()
		if name == "" || query == "" {
			a.setMessage(MessageWarning, "A name and a search are both required")
			return a, nil
		}
		if a.save.Storing {
			return a, nil
		}
		a.save.debouncer.Cancel()
		a.save.gen.Invalidate()
		a.save.Storing = true
		return a, a.storeQueryCmd(a.save.store.Next(), name, query)
	}

	before := a.save.NameInput.Value()
	var cmd tea.Cmd
	a.save.NameInput, cmd = a.save.NameInput.Update(msg)
	if a.save.NameInput.Value() == before {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.save.debouncer.Trigger())
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.mounted || a.view == ViewClosed {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return a, nil
	}
	if !a.modalRect().Contains(msg.X, msg.Y) {
		a.close()
	}
	return a, nil
}

func (a App) handleDebounce(msg debounce.Msg) (tea.Model, tea.Cmd) {
	switch {
	case a.search.debouncer.Fresh(msg):
		if a.view != ViewSearch {
			return a, nil
		}
		return a, a.runSearch()

	case a.save.debouncer.Fresh(msg):
		if a.view != ViewSaveQuery {
			return a, nil
		}
		name := a.save.NameInput.Value()
		if name == "" || !a.configured() {
			a.save.gen.Invalidate()
			a.save.Overwrite = false
			return a, nil
		}
		return a, a.overwriteCheckCmd(a.save.gen.Next(), name)
	}
	return a, nil
}

func (a App) handleResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if !a.search.gen.Current(msg.gen) {
		a.logger.Debug("dropping stale results", "gen", msg.gen, "text", msg.text)
		return a, nil
	}
	a.search.Loading = false

	if msg.err != nil {
		a.logger.Error("search failed", "text", msg.text, "error", msg.err)
		a.setMessage(MessageError, "Search failed: "+msg.err.Error())
		return a, nil
	}

	a.search.Results = msg.list
	a.search.Highlight = msg.highlight
	a.search.Selection = NoSelection
	a.search.Selection = a.search.Selection.Next(msg.list.Len())
	return a, nil
}

func (a App) handleQueryStored(msg queryStoredMsg) (tea.Model, tea.Cmd) {
	if !a.save.store.Current(msg.gen) {
		a.logger.Debug("dropping stale store result", "gen", msg.gen, "name", msg.stored.Name, "error", msg.err)
		return a, nil
	}
	a.save.Storing = false

	if msg.err != nil {
		a.logger.Error("store query failed", "name", a.save.NameInput.Value(), "error", msg.err)
		a.setMessage(MessageError, "Save failed: "+msg.err.Error())
		return a, nil
	}
	if a.view != ViewSaveQuery {
		return a, nil
	}
	name := msg.stored.Name
	if name == "" {
		name = a.save.NameInput.Value()
	}
	cmd := a.backToSearch()
	a.setMessage(MessageSuccess, "Saved @"+name)
	return a, cmd
}

// open shows the search view and issues the default lookup.
func (a *App) open() tea.Cmd {
	a.view = ViewSearch
	a.search.Reset()
	a.save.Reset()
	a.save.NameInput.Blur()
	a.clearMessage()
	focus := a.search.Input.Focus()

	if !a.configured() {
		a.setMessage(MessageWarning, "Not configured, run `ly config --server URL --token TOKEN`")
		return focus
	}
	return tea.Batch(focus, a.runSearch())
}

// close hides the overlay and abandons pending work.
func (a *App) close() {
	a.view = ViewClosed
	a.search.Loading = false
	a.search.debouncer.Cancel()
	a.search.gen.Invalidate()
	a.save.debouncer.Cancel()
	a.save.gen.Invalidate()
	a.save.store.Invalidate()
	a.save.Storing = false
	a.search.Input.Blur()
	a.save.NameInput.Blur()
}

// backToSearch leaves the save view with a cleared search box and reruns
// the pipeline for the empty text.
func (a *App) backToSearch() tea.Cmd {
	a.view = ViewSearch
	a.save.Reset()
	a.save.NameInput.Blur()
	a.search.Input.Reset()
	a.clearMessage()
	return tea.Batch(a.search.Input.Focus(), a.search.debouncer.Trigger())
}

// runSearch starts a lookup for the current input text.
func (a *App) runSearch() tea.Cmd {
	if !a.configured() {
		return nil
	}
	a.search.Loading = true
	gen := a.search.gen.Next()
	return tea.Batch(a.spinner.Tick, a.lookupCmd(gen, a.search.Input.Value()))
}

func (a App) configured() bool {
	return a.backend != nil && a.backend.Configured()
}

func (a App) selectedItem() (model.ResultItem, bool) {
	i, ok := a.search.Selection.Index()
	if !ok {
		return model.ResultItem{}, false
	}
	return a.search.Results.At(i)
}

func (a *App) resizeInputs() {
	w := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal) - a.layoutConfig.Modal.ContentPadding
	if w < 10 {
		w = 10
	}
	a.search.Input.Width = w - len(a.search.Input.Prompt) - 1
	a.save.NameInput.Width = w - len(a.save.NameInput.Prompt) - 1
}

// setMessage sets a status message to display in the help bar. Error text
// can carry a server response body, so it is sanitised here.
func (a *App) setMessage(msgType MessageType, text string) {
	a.messageType = msgType
	a.messageText = layout.Sanitize(text)
}

// clearMessage clears any status message.
func (a *App) clearMessage() {
	a.messageText = ""
}

// State returns the current view, reporting ViewLoading while a search is
// in flight.
func (a App) State() ViewState {
	if a.view == ViewSearch && a.search.Loading {
		return ViewLoading
	}
	return a.view
}

// Mounted reports whether the overlay has been attached to the screen.
func (a App) Mounted() bool {
	return a.mounted
}

// Query returns the search input text.
func (a App) Query() string {
	return a.search.Input.Value()
}

// Results returns the rendered result list.
func (a App) Results() model.ResultList {
	return a.search.Results
}

// Selection returns the highlighted row.
func (a App) Selection() Selection {
	return a.search.Selection
}

// OverwriteWarning reports whether the save view warns about an existing name.
func (a App) OverwriteWarning() bool {
	return a.save.Overwrite
}

// Location returns the URL the base page was last navigated to.
func (a App) Location() string {
	return a.location
}

// Message returns the status line text.
func (a App) Message() string {
	return a.messageText
}
