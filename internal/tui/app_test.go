package tui_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/tui"
)

// fakeBackend answers from fixed tables and records every call.
type fakeBackend struct {
	mu sync.Mutex

	unconfigured bool
	links        map[string][]model.Link
	queries      []model.StoredQuery
	linksErr     error
	storeErr     error
	readErr      error

	calls []string
	reads []model.ID
	tabs  []string
	saved []model.StoredQuery
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Configured() bool { return !f.unconfigured }

func (f *fakeBackend) MatchLinks(_ context.Context, query string) ([]model.Link, error) {
	f.record("links:" + query)
	if f.linksErr != nil {
		return nil, f.linksErr
	}
	return f.links[query], nil
}

func (f *fakeBackend) MatchQueries(_ context.Context, name string, exact bool) ([]model.StoredQuery, error) {
	if exact {
		f.record("exact:" + name)
	} else {
		f.record("queries:" + name)
	}
	var out []model.StoredQuery
	for _, q := range f.queries {
		if exact && q.Name == name {
			out = append(out, q)
		}
		if !exact && strings.Contains(q.Name, name) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeBackend) StoreQuery(_ context.Context, name, query string) (model.StoredQuery, error) {
	f.record("store:" + name)
	if f.storeErr != nil {
		return model.StoredQuery{}, f.storeErr
	}
	q := model.StoredQuery{ID: "99", Name: name, Query: query}
	f.mu.Lock()
	f.saved = append(f.saved, q)
	f.mu.Unlock()
	return q, nil
}

func (f *fakeBackend) RemoveQuery(_ context.Context, id model.ID) error {
	f.record("remove:" + id.String())
	return nil
}

func (f *fakeBackend) ReadLink(_ context.Context, id model.ID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, id)
	return f.readErr
}

func (f *fakeBackend) OpenTab(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs = append(f.tabs, url)
	return nil
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testLinks(names ...string) []model.Link {
	links := make([]model.Link, len(names))
	for i, n := range names {
		links[i] = model.Link{
			ID:   model.ID(string(rune('1' + i))),
			Href: "https://" + n + ".example",
			Name: n,
		}
	}
	return links
}

type harness struct {
	t        *testing.T
	app      tui.App
	backend  *fakeBackend
	navigate []string
	copied   []string
}

func newHarness(t *testing.T, backend *fakeBackend) *harness {
	t.Helper()
	h := &harness{t: t, backend: backend}
	h.app = tui.NewApp(tui.AppParams{
		Backend: backend,
		Navigate: func(url string) error {
			h.navigate = append(h.navigate, url)
			return nil
		},
		Copy: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
		Debounce: time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// send delivers msg and returns the command the app produced without
// running it.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	updated, cmd := h.app.Update(msg)
	h.app = updated.(tui.App)
	return cmd
}

// collect runs cmd, expanding batches, and returns the messages produced.
// Spinner ticks are dropped so the animation never loops.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// settle runs cmd and feeds every resulting message back until the app
// goes quiet.
func (h *harness) settle(cmd tea.Cmd) {
	h.t.Helper()
	queue := collect(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			h.t.Fatal("app did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		queue = append(queue, collect(h.send(msg))...)
	}
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

func (h *harness) typeText(s string) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(s))
	for _, r := range s {
		cmds = append(cmds, h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
	return cmds
}

func (h *harness) open() {
	h.t.Helper()
	h.settle(h.key(tea.KeyCtrlBackslash))
}

func selected(t *testing.T, app tui.App) int {
	t.Helper()
	i, ok := app.Selection().Index()
	if !ok {
		return -1
	}
	return i
}

func TestApp_KeysIgnoredBeforeMount(t *testing.T) {
	backend := &fakeBackend{}
	app := tui.NewApp(tui.AppParams{Backend: backend})

	updated, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlBackslash})
	app = updated.(tui.App)

	assert.Check(t, !app.Mounted())
	assert.Equal(t, app.State(), tui.ViewClosed)
	assert.Check(t, cmd == nil)
	assert.Equal(t, app.View(), "")
}

func TestApp_ToggleOpensWithDefaultQuery(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("alpha", "beta")}}
	h := newHarness(t, backend)

	cmd := h.key(tea.KeyCtrlBackslash)
	assert.Equal(t, h.app.State(), tui.ViewLoading)

	h.settle(cmd)
	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.DeepEqual(t, backend.Calls(), []string{"links:"})
	assert.Equal(t, h.app.Results().Len(), 2)
	assert.Equal(t, selected(t, h.app), 0)

	h.key(tea.KeyCtrlBackslash)
	assert.Equal(t, h.app.State(), tui.ViewClosed)
}

func TestApp_NotConfiguredIssuesNoRequest(t *testing.T) {
	backend := &fakeBackend{unconfigured: true}
	h := newHarness(t, backend)

	h.open()
	h.settle(tea.Batch(h.typeText("go")...))

	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.Check(t, is.Len(backend.Calls(), 0))
	assert.Check(t, is.Contains(h.app.View(), "Not configured"))
}

func TestApp_EscapeCloses(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.open()

	h.key(tea.KeyEsc)
	assert.Equal(t, h.app.State(), tui.ViewClosed)
}

func TestApp_QuitOnlyWhenClosed(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.open()

	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, h.app.Query(), "q")
	for _, msg := range collect(cmd) {
		_, isQuit := msg.(tea.QuitMsg)
		assert.Check(t, !isQuit)
	}

	h.key(tea.KeyEsc)
	cmd = h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Check(t, is.DeepEqual(collect(cmd), []tea.Msg{tea.QuitMsg{}}))
}

func TestApp_RapidTypingIssuesOneRequest(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"rust": testLinks("rust book")}}
	h := newHarness(t, backend)
	h.open()

	cmds := h.typeText("rust")
	h.settle(tea.Batch(cmds...))

	assert.DeepEqual(t, backend.Calls(), []string{"links:", "links:rust"})
	assert.Equal(t, h.app.Results().Len(), 1)
}

func TestApp_SavedQueryLookup(t *testing.T) {
	backend := &fakeBackend{queries: []model.StoredQuery{
		{ID: "1", Name: "work", Query: "#work"},
		{ID: "2", Name: "homework", Query: "#school"},
		{ID: "3", Name: "fun", Query: "#fun"},
	}}
	h := newHarness(t, backend)
	h.open()

	h.settle(tea.Batch(h.typeText("@work")...))

	assert.DeepEqual(t, backend.Calls(), []string{"links:", "queries:work"})
	assert.Equal(t, h.app.Results().Len(), 2)
	item, _ := h.app.Results().At(0)
	assert.Equal(t, item.Kind, model.KindQuery)
}

func TestApp_ExactLookupRunsStoredQuery(t *testing.T) {
	backend := &fakeBackend{
		queries: []model.StoredQuery{{ID: "1", Name: "work", Query: "#work"}},
		links: map[string][]model.Link{
			"#work": testLinks("jira", "wiki"),
			"work":  testLinks("unrelated"),
		},
	}
	h := newHarness(t, backend)
	h.open()

	h.settle(tea.Batch(h.typeText("work.")...))

	assert.DeepEqual(t, backend.Calls(), []string{"links:", "exact:work", "links:#work"})
	assert.Equal(t, h.app.Results().Len(), 2)
}

func TestApp_ExactLookupFallsBack(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"nothing": testLinks("hit")}}
	h := newHarness(t, backend)
	h.open()

	h.settle(tea.Batch(h.typeText("nothing.")...))

	assert.DeepEqual(t, backend.Calls(), []string{"links:", "exact:nothing", "links:nothing"})
	assert.Equal(t, h.app.Results().Len(), 1)
}

func TestApp_SelectionWraps(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("a", "b", "c")}}
	h := newHarness(t, backend)
	h.open()

	assert.Equal(t, selected(t, h.app), 0)

	h.key(tea.KeyUp)
	assert.Equal(t, selected(t, h.app), 2, "up on first wraps to last")

	h.key(tea.KeyDown)
	assert.Equal(t, selected(t, h.app), 0, "down on last wraps to first")

	h.key(tea.KeyDown)
	h.key(tea.KeyCtrlN)
	assert.Equal(t, selected(t, h.app), 2)
	h.key(tea.KeyCtrlP)
	assert.Equal(t, selected(t, h.app), 1)
}

func TestApp_StaleResponseDropped(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{
		"a":  testLinks("first"),
		"ab": testLinks("second", "second b"),
	}}
	h := newHarness(t, backend)
	h.open()

	// Request #1 for "a" is issued but its answer is held back.
	tick := collect(h.typeText("a")[0])
	assert.Assert(t, is.Len(tick, 1))
	first := collect(h.send(tick[0]))
	assert.Assert(t, is.Len(first, 1))

	// Request #2 for "ab" completes and renders.
	h.settle(h.typeText("b")[0])
	assert.Equal(t, h.app.Results().Len(), 2)

	// The late answer to #1 must not replace #2.
	h.send(first[0])
	assert.Equal(t, h.app.Results().Len(), 2)
	item, _ := h.app.Results().At(0)
	assert.Equal(t, item.Name, "second")
}

func TestApp_ErrorKeepsPreviousResults(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("a", "b")}}
	h := newHarness(t, backend)
	h.open()

	backend.linksErr = errors.New("boom")
	h.settle(tea.Batch(h.typeText("x")...))

	assert.Equal(t, h.app.Results().Len(), 2)
	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.Check(t, is.Contains(h.app.Message(), "boom"))
}

func TestApp_ServerErrorTextIsSanitised(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("a")}}
	h := newHarness(t, backend)
	h.open()

	backend.linksErr = errors.New("HTTP 400: \x1b]0;pwned\x07\x1b[2Jcleared")
	h.settle(tea.Batch(h.typeText("x")...))

	assert.Check(t, is.Contains(h.app.Message(), "HTTP 400: cleared"))
	assert.Check(t, !strings.Contains(h.app.Message(), "\x1b"))
	view := h.app.View()
	assert.Check(t, !strings.Contains(view, "\x1b]"))
	assert.Check(t, !strings.Contains(view, "\x1b[2J"))
	assert.Check(t, !strings.Contains(view, "pwned"))
}

func TestApp_EnterOnQueryReplacesSearch(t *testing.T) {
	backend := &fakeBackend{
		queries: []model.StoredQuery{{ID: "1", Name: "reading", Query: "#toread"}},
		links:   map[string][]model.Link{"#toread": testLinks("article")},
	}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("@read")...))

	h.settle(h.key(tea.KeyEnter))

	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.Equal(t, h.app.Query(), "#toread")
	calls := backend.Calls()
	assert.Equal(t, calls[len(calls)-1], "links:#toread")
	assert.Equal(t, h.app.Results().Len(), 1)
}

func TestApp_EnterOnLinkNavigatesAndMarksRead(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("alpha", "beta")}}
	h := newHarness(t, backend)
	h.open()

	h.key(tea.KeyDown)
	h.settle(h.key(tea.KeyEnter))

	assert.Equal(t, h.app.State(), tui.ViewClosed)
	assert.DeepEqual(t, h.navigate, []string{"https://beta.example"})
	assert.DeepEqual(t, backend.reads, []model.ID{"2"})
	assert.Equal(t, h.app.Location(), "https://beta.example")
}

func TestApp_AltEnterOpensTab(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("alpha")}}
	h := newHarness(t, backend)
	h.open()

	h.settle(h.send(tea.KeyMsg{Type: tea.KeyEnter, Alt: true}))

	assert.Equal(t, h.app.State(), tui.ViewClosed)
	assert.Check(t, is.Len(h.navigate, 0))
	assert.DeepEqual(t, backend.tabs, []string{"https://alpha.example"})
	assert.DeepEqual(t, backend.reads, []model.ID{"1"})
}

func TestApp_ReadMarkFailureDoesNotBlockNavigation(t *testing.T) {
	tests := []struct {
		name         string
		key          tea.KeyMsg
		wantNavigate []string
		wantTabs     []string
		wantLocation string
	}{
		{
			name:         "enter",
			key:          tea.KeyMsg{Type: tea.KeyEnter},
			wantNavigate: []string{"https://alpha.example"},
			wantLocation: "https://alpha.example",
		},
		{
			name:     "alt+enter",
			key:      tea.KeyMsg{Type: tea.KeyEnter, Alt: true},
			wantTabs: []string{"https://alpha.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				links:   map[string][]model.Link{"": testLinks("alpha")},
				readErr: errors.New("HTTP 503"),
			}
			h := newHarness(t, backend)
			h.open()

			h.settle(h.send(tt.key))

			assert.Equal(t, h.app.State(), tui.ViewClosed)
			assert.DeepEqual(t, h.navigate, tt.wantNavigate)
			assert.DeepEqual(t, backend.tabs, tt.wantTabs)
			assert.DeepEqual(t, backend.reads, []model.ID{"1"})
			assert.Equal(t, h.app.Location(), tt.wantLocation)
		})
	}
}

func TestApp_EnterWithoutSelectionIsNoop(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.open()

	cmd := h.key(tea.KeyEnter)
	assert.Check(t, cmd == nil)
	assert.Equal(t, h.app.State(), tui.ViewSearch)
}

func TestApp_SaveQuery(t *testing.T) {
	backend := &fakeBackend{queries: []model.StoredQuery{{ID: "1", Name: "golang", Query: "go"}}}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("go")...))

	h.settle(h.key(tea.KeyCtrlS))
	assert.Equal(t, h.app.State(), tui.ViewSaveQuery)
	assert.Check(t, !h.app.OverwriteWarning())

	h.settle(tea.Batch(h.typeText("golang")...))
	assert.Check(t, h.app.OverwriteWarning())

	h.settle(h.key(tea.KeyEnter))
	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.Equal(t, h.app.Query(), "")
	assert.DeepEqual(t, backend.saved, []model.StoredQuery{{ID: "99", Name: "golang", Query: "go"}})
}

func TestApp_SaveRequiresNameAndQuery(t *testing.T) {
	tests := []struct {
		name   string
		search string
		save   string
	}{
		{name: "empty name", search: "go", save: ""},
		{name: "empty query", search: "", save: "golang"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			h := newHarness(t, backend)
			h.open()
			h.settle(tea.Batch(h.typeText(tt.search)...))
			h.settle(h.key(tea.KeyCtrlS))
			h.typeText(tt.save)

			h.settle(h.key(tea.KeyEnter))

			assert.Equal(t, h.app.State(), tui.ViewSaveQuery)
			for _, c := range backend.Calls() {
				assert.Check(t, !strings.HasPrefix(c, "store:"), "unexpected call %s", c)
			}
			assert.Check(t, h.app.Message() != "")
		})
	}
}

func TestApp_SaveFailureStays(t *testing.T) {
	backend := &fakeBackend{storeErr: errors.New("HTTP 500")}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("go")...))
	h.settle(h.key(tea.KeyCtrlS))
	h.typeText("golang")

	h.settle(h.key(tea.KeyEnter))

	assert.Equal(t, h.app.State(), tui.ViewSaveQuery)
	assert.Check(t, is.Contains(h.app.Message(), "HTTP 500"))
}

func TestApp_SaveIgnoresEnterWhileStoring(t *testing.T) {
	backend := &fakeBackend{}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("go")...))
	h.settle(h.key(tea.KeyCtrlS))
	h.typeText("golang")

	first := h.key(tea.KeyEnter)
	assert.Check(t, first != nil)
	assert.Check(t, h.key(tea.KeyEnter) == nil)

	h.settle(first)
	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.Check(t, is.Len(backend.saved, 1))
}

func TestApp_LateSaveResultDoesNotLeaveNewSaveView(t *testing.T) {
	backend := &fakeBackend{}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("go")...))
	h.settle(h.key(tea.KeyCtrlS))
	h.typeText("golang")
	pending := h.key(tea.KeyEnter)

	h.settle(h.key(tea.KeyEsc))
	h.settle(tea.Batch(h.typeText("rust")...))
	h.settle(h.key(tea.KeyCtrlS))

	h.settle(pending)

	assert.Equal(t, h.app.State(), tui.ViewSaveQuery)
	assert.Equal(t, h.app.Query(), "rust")
	assert.Check(t, !strings.Contains(h.app.Message(), "Saved"))
}

func TestApp_EscapeFromSaveClearsSearch(t *testing.T) {
	backend := &fakeBackend{}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("go")...))
	h.settle(h.key(tea.KeyCtrlS))

	h.settle(h.key(tea.KeyEsc))

	assert.Equal(t, h.app.State(), tui.ViewSearch)
	assert.Equal(t, h.app.Query(), "")
	calls := backend.Calls()
	assert.Equal(t, calls[len(calls)-1], "links:")
}

func TestApp_DeleteQuery(t *testing.T) {
	backend := &fakeBackend{queries: []model.StoredQuery{
		{Name: "legacy", Query: "old"},
		{ID: "7", Name: "later", Query: "#toread"},
	}}
	h := newHarness(t, backend)
	h.open()
	h.settle(tea.Batch(h.typeText("@")...))

	// Legacy rows have no id and cannot be removed.
	assert.Check(t, h.key(tea.KeyCtrlD) == nil)

	h.key(tea.KeyDown)
	h.settle(h.key(tea.KeyCtrlD))

	calls := backend.Calls()
	assert.Check(t, is.Contains(calls, "remove:7"))
	assert.Equal(t, calls[len(calls)-1], "queries:")
}

func TestApp_YankCopiesURL(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("alpha")}}
	h := newHarness(t, backend)
	h.open()

	h.settle(h.key(tea.KeyCtrlY))

	assert.DeepEqual(t, h.copied, []string{"https://alpha.example"})
	assert.Equal(t, h.app.State(), tui.ViewSearch)
}

func TestApp_BackdropClickCloses(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": testLinks("alpha")}}
	h := newHarness(t, backend)
	h.open()

	// The centre of the screen is inside the modal.
	h.send(tea.MouseMsg{X: 50, Y: 14, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, h.app.State(), tui.ViewSearch)

	h.send(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, h.app.State(), tui.ViewClosed)
}

func TestApp_ViewShowsResults(t *testing.T) {
	backend := &fakeBackend{links: map[string][]model.Link{"": {
		{ID: "1", Href: "https://go.dev", Name: "Go", Tags: []string{"lang"}, ToRead: true},
	}}}
	h := newHarness(t, backend)
	h.open()

	view := h.app.View()
	assert.Check(t, is.Contains(view, "Go"))
	assert.Check(t, is.Contains(view, "#lang"))
	assert.Check(t, is.Contains(view, "read later"))
	assert.Check(t, is.Contains(view, "1 result"))
}
