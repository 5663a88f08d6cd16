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

// MatchQueries returns saved queries by name. With exact set only a query
// named exactly name is returned; otherwise name is a substring pattern.
func (c *Client) MatchQueries(ctx context.Context, name string, exact bool) ([]model.StoredQuery, error) {
	params := url.Values{"q": {name}, "exact": {strconv.FormatBool(exact)}}
	body, err := c.get(ctx, "/queries", params)
	if err != nil {
		return nil, fmt.Errorf("match queries: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var queries []model.StoredQuery
	if err := json.Unmarshal(body, &queries); err != nil {
		return nil, fmt.Errorf("match queries: %w: %v", ErrInvalidResponse, err)
	}
	return queries, nil
}

// StoreQuery saves query under name, replacing any query with that name.
// Servers answer with 204 or with the stored row; the row is returned when
// present.
func (c *Client) StoreQuery(ctx context.Context, name, query string) (model.StoredQuery, error) {
	stored := model.StoredQuery{Name: name, Query: query}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(query) == "" {
		return stored, fmt.Errorf("store query: %w: name and query are required", ErrRequest)
	}

	body, err := c.post(ctx, "/queries", url.Values{"name": {name}, "query": {query}})
	if err != nil {
		return stored, fmt.Errorf("store query: %w", err)
	}

	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &stored); err != nil {
			return stored, fmt.Errorf("store query: %w: %v", ErrInvalidResponse, err)
		}
	}
	return stored, nil
}

// RemoveQuery deletes a saved query by id.
func (c *Client) RemoveQuery(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return fmt.Errorf("remove query: %w: missing id", ErrRequest)
	}
	if err := c.del(ctx, idPath("/queries", id.String())); err != nil {
		return fmt.Errorf("remove query %s: %w", id, err)
	}
	return nil
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// SuggestTags returns recently used tags starting with prefix.
func (c *Client) SuggestTags(ctx context.Context, prefix string) ([]string, error) {
	body, err := c.get(ctx, "/tags", url.Values{"name": {prefix}})
	if err != nil {
		return nil, fmt.Errorf("suggest tags: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var tags []string
		if err := json.Unmarshal(trimmed, &tags); err != nil {
			return nil, fmt.Errorf("suggest tags: %w: %v", ErrInvalidResponse, err)
		}
		return tags, nil
	}

	var resp tagsResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("suggest tags: %w: %v", ErrInvalidResponse, err)
	}
	return resp.Tags, nil
}
