package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nikbrunner/linkify/internal/model"
)

// linksResponse is the envelope newer servers wrap link lists in.
type linksResponse struct {
	Links   []model.Link `json:"links"`
	Version *int64       `json:"version"`
}

// MatchLinks returns links matching the free-text query, most recent first.
// An empty query returns the most recent links.
func (c *Client) MatchLinks(ctx context.Context, query string, limit int) ([]model.Link, error) {
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/links", params)
	if err != nil {
		return nil, fmt.Errorf("match links: %w", err)
	}
	return c.decodeLinks(body)
}

// GetLink returns the links stored under exactly this URL. The result is
// empty when the URL has not been saved.
func (c *Client) GetLink(ctx context.Context, href string) ([]model.Link, error) {
	params := url.Values{"q": {href}, "exact": {"true"}}
	body, err := c.get(ctx, "/links", params)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return c.decodeLinks(body)
}

// StoreLink creates or updates the link stored under link.Href.
func (c *Client) StoreLink(ctx context.Context, link model.Link) error {
	if strings.TrimSpace(link.Href) == "" {
		return fmt.Errorf("store link: %w: href is empty", ErrRequest)
	}

	form := url.Values{
		"version":     {strconv.FormatInt(c.version.Load(), 10)},
		"href":        {link.Href},
		"name":        {link.Name},
		"description": {link.Description},
		"tags":        {strings.Join(model.NormalizeTags(link.Tags), ",")},
		"flags":       {link.Flags()},
	}
	if _, err := c.post(ctx, "/links", form); err != nil {
		return fmt.Errorf("store link: %w", err)
	}
	return nil
}

// RemoveLink deletes a link by id.
func (c *Client) RemoveLink(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return fmt.Errorf("remove link: %w: missing id", ErrRequest)
	}
	if err := c.del(ctx, idPath("/links", id.String())); err != nil {
		return fmt.Errorf("remove link %s: %w", id, err)
	}
	return nil
}

// ReadLink marks a link as read.
func (c *Client) ReadLink(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return fmt.Errorf("read link: %w: missing id", ErrRequest)
	}
	if _, err := c.post(ctx, idPath("/links", id.String(), "read"), nil); err != nil {
		return fmt.Errorf("read link %s: %w", id, err)
	}
	return nil
}

// decodeLinks accepts a bare array or the {links, version} envelope.
func (c *Client) decodeLinks(body []byte) ([]model.Link, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var links []model.Link
		if err := json.Unmarshal(trimmed, &links); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return links, nil
	}

	var resp linksResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Version != nil {
		c.version.Store(*resp.Version)
	}
	return resp.Links, nil
}
