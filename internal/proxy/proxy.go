package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikbrunner/linkify/internal/api"
	"github.com/nikbrunner/linkify/internal/config"
	"github.com/nikbrunner/linkify/internal/model"
	"github.com/nikbrunner/linkify/internal/storage"
)

var (
	// ErrNotConfigured is returned for every server action while the server
	// URL or token is missing. No HTTP request is made in that case.
	ErrNotConfigured = errors.New("server and token are not configured")
	ErrUnknownAction = errors.New("unknown action")
	ErrBadRequest    = errors.New("bad request")
)

// Action names an operation the proxy performs on behalf of the overlay.
type Action string

const (
	ActionMatchLinks   Action = "matchLinks"
	ActionMatchQueries Action = "matchQueries"
	ActionStoreQuery   Action = "storeQuery"
	ActionRemoveQuery  Action = "removeQuery"
	ActionReadLink     Action = "readLink"
	ActionOpenTab      Action = "openTab"
	ActionGetLink      Action = "getLink"
	ActionLinkStatus   Action = "linkStatus"
	ActionStoreLink    Action = "storeLink"
	ActionRemoveLink   Action = "removeLink"
	ActionSuggestTags  Action = "suggestTags"
)

// Request is a single action with its arguments. Only the fields the
// action uses are read.
type Request struct {
	ID     string
	Action Action

	Query  string   // matchLinks text, storeQuery query, suggestTags prefix
	Name   string   // matchQueries and storeQuery name
	Exact  bool     // matchQueries
	LinkID model.ID // readLink, removeLink, removeQuery
	URL    string   // openTab, getLink, linkStatus; readLink href for the outbox
	Link   model.Link
}

// Response carries either Data or Err, never both.
type Response struct {
	ID   string
	Data any
	Err  error
}

// OK reports whether the action succeeded.
func (r Response) OK() bool {
	return r.Err == nil
}

// Service is the server API the proxy forwards to.
type Service interface {
	MatchLinks(ctx context.Context, query string, limit int) ([]model.Link, error)
	GetLink(ctx context.Context, href string) ([]model.Link, error)
	StoreLink(ctx context.Context, link model.Link) error
	RemoveLink(ctx context.Context, id model.ID) error
	ReadLink(ctx context.Context, id model.ID) error
	MatchQueries(ctx context.Context, name string, exact bool) ([]model.StoredQuery, error)
	StoreQuery(ctx context.Context, name, query string) (model.StoredQuery, error)
	RemoveQuery(ctx context.Context, id model.ID) error
	SuggestTags(ctx context.Context, prefix string) ([]string, error)
}

// Params configures a Proxy. Service defaults to an api.Client built from
// Settings, Open to OpenURL and Logger to slog.Default.
type Params struct {
	Settings config.Settings
	Service  Service
	Outbox   storage.Outbox
	Open     func(url string) error
	Logger   *slog.Logger
	Limit    int
}

// Proxy owns the credentials and performs actions against the server.
type Proxy struct {
	settings config.Settings
	service  Service
	outbox   storage.Outbox
	open     func(url string) error
	logger   *slog.Logger
	limit    int
}

// New creates a Proxy.
func New(params Params) *Proxy {
	p := &Proxy{
		settings: params.Settings,
		service:  params.Service,
		outbox:   params.Outbox,
		open:     params.Open,
		logger:   params.Logger,
		limit:    params.Limit,
	}
	if p.service == nil && p.settings.Complete() {
		p.service = api.NewClient(p.settings.BaseURL(), p.settings.Token)
	}
	if p.open == nil {
		p.open = OpenURL
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.limit <= 0 {
		p.limit = model.MaxResults
	}
	return p
}

// Configured reports whether server actions can be performed.
func (p *Proxy) Configured() bool {
	return p.settings.Complete() && p.service != nil
}

// Dispatch performs req and reports the outcome. It never panics; every
// failure is returned in Response.Err.
func (p *Proxy) Dispatch(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()

	data, err := p.dispatch(ctx, req)

	attrs := []any{"id", req.ID, "action", string(req.Action), "duration", time.Since(start)}
	if err != nil {
		p.logger.Error("proxy action failed", append(attrs, "error", err)...)
		return Response{ID: req.ID, Err: err}
	}
	p.logger.Debug("proxy action", attrs...)
	return Response{ID: req.ID, Data: data}
}

func (p *Proxy) dispatch(ctx context.Context, req Request) (any, error) {
	if req.Action == ActionOpenTab {
		return nil, p.openTab(req.URL)
	}
	if !p.Configured() {
		switch req.Action {
		case ActionMatchLinks, ActionMatchQueries, ActionStoreQuery, ActionRemoveQuery,
			ActionReadLink, ActionGetLink, ActionLinkStatus, ActionStoreLink,
			ActionRemoveLink, ActionSuggestTags:
			return nil, fmt.Errorf("%s: %w", req.Action, ErrNotConfigured)
		}
	}

	switch req.Action {
	case ActionMatchLinks:
		return p.service.MatchLinks(ctx, req.Query, p.limit)
	case ActionMatchQueries:
		return p.service.MatchQueries(ctx, req.Name, req.Exact)
	case ActionStoreQuery:
		if req.Name == "" || req.Query == "" {
			return nil, fmt.Errorf("%s: %w: name and query are required", req.Action, ErrBadRequest)
		}
		return p.service.StoreQuery(ctx, req.Name, req.Query)
	case ActionRemoveQuery:
		if req.LinkID.IsZero() {
			return nil, fmt.Errorf("%s: %w: missing id", req.Action, ErrBadRequest)
		}
		return nil, p.service.RemoveQuery(ctx, req.LinkID)
	case ActionReadLink:
		return nil, p.readLink(ctx, req.LinkID, req.URL)
	case ActionGetLink:
		return p.service.GetLink(ctx, req.URL)
	case ActionLinkStatus:
		links, err := p.service.GetLink(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		return len(links) > 0, nil
	case ActionStoreLink:
		return nil, p.service.StoreLink(ctx, req.Link)
	case ActionRemoveLink:
		return nil, p.service.RemoveLink(ctx, req.LinkID)
	case ActionSuggestTags:
		return p.service.SuggestTags(ctx, req.Query)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

func (p *Proxy) openTab(url string) error {
	if url == "" {
		return fmt.Errorf("%s: %w: missing url", ActionOpenTab, ErrBadRequest)
	}
	return p.open(url)
}

// readLink marks a link read. Failures other than a missing link are kept
// in the outbox for FlushPending.
func (p *Proxy) readLink(ctx context.Context, id model.ID, href string) error {
	if id.IsZero() {
		return fmt.Errorf("%s: %w: missing id", ActionReadLink, ErrBadRequest)
	}

	err := p.service.ReadLink(ctx, id)
	if err == nil || errors.Is(err, api.ErrNotFound) || p.outbox == nil {
		return err
	}

	// The caller's context may already be gone; the outbox write must not be.
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if qerr := p.outbox.Enqueue(qctx, id, href); qerr != nil {
		p.logger.Error("queue read-mark", "link", id, "error", qerr)
	} else {
		p.logger.Info("read-mark queued", "link", id)
	}
	return err
}

// FlushPending retries queued read-marks. Delivered marks and marks for
// links that no longer exist are removed; the rest stay queued.
func (p *Proxy) FlushPending(ctx context.Context) (int, error) {
	if p.outbox == nil || !p.Configured() {
		return 0, nil
	}

	pending, err := p.outbox.Pending(ctx)
	if err != nil {
		return 0, err
	}

	delivered := 0
	var errs []error
	for _, pr := range pending {
		readErr := p.service.ReadLink(ctx, pr.LinkID)
		if readErr != nil && !errors.Is(readErr, api.ErrNotFound) {
			errs = append(errs, readErr)
			continue
		}
		if err := p.outbox.Remove(ctx, pr.LinkID); err != nil {
			errs = append(errs, err)
			continue
		}
		if readErr == nil {
			delivered++
		}
	}

	if len(pending) > 0 {
		p.logger.Info("flushed read-marks", "pending", len(pending), "delivered", delivered, "failed", len(errs))
	}
	return delivered, errors.Join(errs...)
}
