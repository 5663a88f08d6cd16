package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/linkify/internal/model"
)

// Backend is what the overlay needs from the service. proxy.Bridge
// implements it.
type Backend interface {
	Configured() bool
	MatchLinks(ctx context.Context, query string) ([]model.Link, error)
	MatchQueries(ctx context.Context, name string, exact bool) ([]model.StoredQuery, error)
	StoreQuery(ctx context.Context, name, query string) (model.StoredQuery, error)
	RemoveQuery(ctx context.Context, id model.ID) error
	ReadLink(ctx context.Context, id model.ID, href string) error
	OpenTab(ctx context.Context, url string) error
}

// resultsMsg is the outcome of one run of the query pipeline.
type resultsMsg struct {
	gen       uint64
	text      string
	highlight string
	list      model.ResultList
	err       error
}

// overwriteMsg reports whether the typed save name already exists.
type overwriteMsg struct {
	gen    uint64
	exists bool
	err    error
}

type queryStoredMsg struct {
	gen    uint64
	stored model.StoredQuery
	err    error
}

type queryRemovedMsg struct {
	name string
	err  error
}

type linkFollowedMsg struct {
	url     string
	newTab  bool
	navErr  error
	readErr error
}

type copiedMsg struct {
	url string
	err error
}

// resolve runs every request a lookup needs and returns the list to
// render and the term to highlight in it.
func resolve(ctx context.Context, b Backend, l model.Lookup) (model.ResultList, string, error) {
	switch l.Kind {
	case model.LookupLinks:
		links, err := b.MatchLinks(ctx, l.Term)
		if err != nil {
			return model.ResultList{}, "", fmt.Errorf("match links: %w", err)
		}
		return model.FromLinks(links), l.Term, nil

	case model.LookupQueries:
		queries, err := b.MatchQueries(ctx, l.Term, false)
		if err != nil {
			return model.ResultList{}, "", fmt.Errorf("match queries: %w", err)
		}
		return model.FromQueries(queries), l.Term, nil

	case model.LookupExact:
		queries, err := b.MatchQueries(ctx, l.Term, true)
		if err != nil {
			return model.ResultList{}, "", fmt.Errorf("exact query %q: %w", l.Term, err)
		}
		if len(queries) == 1 {
			stored := queries[0].Query
			links, err := b.MatchLinks(ctx, stored)
			if err != nil {
				return model.ResultList{}, "", fmt.Errorf("run saved query %q: %w", l.Term, err)
			}
			return model.FromLinks(links), stored, nil
		}
		if l.Fallback == nil {
			return model.ResultList{}, l.Term, nil
		}
		return resolve(ctx, b, *l.Fallback)
	}
	return model.ResultList{}, "", fmt.Errorf("unknown lookup %s", l.Kind)
}

func (a App) lookupCmd(gen uint64, text string) tea.Cmd {
	backend, timeout := a.backend, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		list, highlight, err := resolve(ctx, backend, model.Classify(text))
		return resultsMsg{gen: gen, text: text, highlight: highlight, list: list, err: err}
	}
}

func (a App) overwriteCheckCmd(gen uint64, name string) tea.Cmd {
	backend, timeout := a.backend, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		queries, err := backend.MatchQueries(ctx, name, true)
		return overwriteMsg{gen: gen, exists: len(queries) > 0, err: err}
	}
}

func (a App) storeQueryCmd(gen uint64, name, query string) tea.Cmd {
	backend, timeout := a.backend, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		stored, err := backend.StoreQuery(ctx, name, query)
		return queryStoredMsg{gen: gen, stored: stored, err: err}
	}
}

func (a App) removeQueryCmd(item model.ResultItem) tea.Cmd {
	backend, timeout := a.backend, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return queryRemovedMsg{name: item.Name, err: backend.RemoveQuery(ctx, item.ID)}
	}
}

// followLinkCmd requests navigation and then marks the link read exactly
// once, whatever the navigation outcome.
func (a App) followLinkCmd(item model.ResultItem, newTab bool) tea.Cmd {
	backend, navigate, timeout := a.backend, a.navigate, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		msg := linkFollowedMsg{url: item.Target, newTab: newTab}
		if newTab {
			msg.navErr = backend.OpenTab(ctx, item.Target)
		} else if navigate != nil {
			msg.navErr = navigate(item.Target)
		}
		if !item.ID.IsZero() {
			msg.readErr = backend.ReadLink(ctx, item.ID, item.Target)
		}
		return msg
	}
}

func (a App) copyCmd(url string) tea.Cmd {
	write := a.copy
	return func() tea.Msg {
		return copiedMsg{url: url, err: write(url)}
	}
}
