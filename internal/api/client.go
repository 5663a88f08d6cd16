package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

var (
	ErrRequest         = errors.New("linkify request failed")
	ErrUnauthorized    = errors.New("linkify rejected the token")
	ErrNotFound        = errors.New("linkify record not found")
	ErrInvalidResponse = errors.New("invalid linkify response")
)

// StatusError is returned for responses with a status code of 400 or above.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRequest
	}
}

// Client talks to a Linkify server over its REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// version is the last collection version reported by the server,
	// echoed back on link writes. -1 means unknown.
	version atomic.Int64
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL, token string, timeout ...time.Duration) *Client {
	httpTimeout := 10 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		httpTimeout = timeout[0]
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
	}
	c.version.Store(-1)
	return c
}

// BaseURL returns the server URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes a request and returns the response body. Form values are
// sent url-encoded, which is what the server's write endpoints accept.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, int, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg, ok := extractErrorBody(respBody)
		if !ok {
			msg = strings.TrimSpace(string(respBody))
		}
		return nil, resp.StatusCode, &StatusError{Code: resp.StatusCode, Message: msg}
	}

	return respBody, resp.StatusCode, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, withQuery(path, params), nil)
	return body, err
}

func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	if form == nil {
		form = url.Values{}
	}
	body, _, err := c.do(ctx, http.MethodPost, path, form)
	return body, err
}

func (c *Client) del(ctx context.Context, path string) error {
	_, _, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// withQuery appends non-empty params to path.
func withQuery(path string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// idPath builds a path with an escaped record id segment.
func idPath(prefix, id string, suffix ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// extractErrorBody pulls a readable message out of a JSON error body.
func extractErrorBody(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	for _, key := range []string{"error", "message", "detail"} {
		if msg, ok := payload[key].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg), true
		}
	}
	return "", false
}
