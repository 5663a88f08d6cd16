package proxy

import (
	"context"
	"fmt"

	"github.com/nikbrunner/linkify/internal/model"
)

// Bridge exposes Dispatch through typed methods, one per overlay action.
type Bridge struct {
	proxy *Proxy
}

// NewBridge wraps p.
func NewBridge(p *Proxy) Bridge {
	return Bridge{proxy: p}
}

// Configured reports whether the proxy can reach a server.
func (b Bridge) Configured() bool {
	return b.proxy.Configured()
}

func (b Bridge) MatchLinks(ctx context.Context, query string) ([]model.Link, error) {
	return call[[]model.Link](ctx, b.proxy, Request{Action: ActionMatchLinks, Query: query})
}

func (b Bridge) MatchQueries(ctx context.Context, name string, exact bool) ([]model.StoredQuery, error) {
	return call[[]model.StoredQuery](ctx, b.proxy, Request{Action: ActionMatchQueries, Name: name, Exact: exact})
}

func (b Bridge) StoreQuery(ctx context.Context, name, query string) (model.StoredQuery, error) {
	return call[model.StoredQuery](ctx, b.proxy, Request{Action: ActionStoreQuery, Name: name, Query: query})
}

func (b Bridge) RemoveQuery(ctx context.Context, id model.ID) error {
	return b.proxy.Dispatch(ctx, Request{Action: ActionRemoveQuery, LinkID: id}).Err
}

func (b Bridge) ReadLink(ctx context.Context, id model.ID, href string) error {
	return b.proxy.Dispatch(ctx, Request{Action: ActionReadLink, LinkID: id, URL: href}).Err
}

func (b Bridge) OpenTab(ctx context.Context, url string) error {
	return b.proxy.Dispatch(ctx, Request{Action: ActionOpenTab, URL: url}).Err
}

func (b Bridge) GetLink(ctx context.Context, url string) ([]model.Link, error) {
	return call[[]model.Link](ctx, b.proxy, Request{Action: ActionGetLink, URL: url})
}

func (b Bridge) LinkStatus(ctx context.Context, url string) (bool, error) {
	return call[bool](ctx, b.proxy, Request{Action: ActionLinkStatus, URL: url})
}

func (b Bridge) StoreLink(ctx context.Context, link model.Link) error {
	return b.proxy.Dispatch(ctx, Request{Action: ActionStoreLink, Link: link}).Err
}

func (b Bridge) RemoveLink(ctx context.Context, id model.ID) error {
	return b.proxy.Dispatch(ctx, Request{Action: ActionRemoveLink, LinkID: id}).Err
}

func (b Bridge) SuggestTags(ctx context.Context, prefix string) ([]string, error) {
	return call[[]string](ctx, b.proxy, Request{Action: ActionSuggestTags, Query: prefix})
}

// call dispatches req and asserts the response data type.
func call[T any](ctx context.Context, p *Proxy, req Request) (T, error) {
	var zero T
	resp := p.Dispatch(ctx, req)
	if resp.Err != nil {
		return zero, resp.Err
	}
	if resp.Data == nil {
		return zero, nil
	}
	data, ok := resp.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected response type %T", req.Action, resp.Data)
	}
	return data, nil
}
