// Package api talks to the todo server.
//
// The server renders HTML for the list and answers JSON for clear, undo and
// last-action. Every mutation is followed by a fresh read; the client never
// derives state from a mutation's response body.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

const maxBody = 4 << 20

// Client is a thin wrapper over the server endpoints. Safe for concurrent use.
type Client struct {
	base  *url.URL
	http  *http.Client
	token func() string
	log   *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (its Timeout wins).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken sets a bearer token source, consulted on every request.
func WithToken(src func() string) Option { return func(c *Client) { c.token = src } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a client for the server at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return c.base.String() }

// Page fetches the rendered index page.
func (c *Client) Page(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return b, nil
}

// Items fetches the page and parses the list fragment out of it.
func (c *Client) Items(ctx context.Context) ([]model.Item, error) {
	page, err := c.Page(ctx)
	if err != nil {
		return nil, err
	}
	items, err := ParseList(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return items, nil
}

// Add creates a new, incomplete item. Blank tasks are rejected locally.
func (c *Client) Add(ctx context.Context, task string) error {
	task = strings.TrimSpace(task)
	if task == "" {
		return ErrEmptyTask
	}
	form := url.Values{}
	form.Set("task", task)
	form.Set("done", "false")
	return c.discard(c.do(ctx, http.MethodPost, "/add", form))
}

// Update sets the done flag of an item.
func (c *Client) Update(ctx context.Context, id string, done bool) error {
	form := url.Values{}
	form.Set("done", strconv.FormatBool(done))
	return c.discard(c.do(ctx, http.MethodPost, "/update/"+url.PathEscape(id), form))
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.discard(c.do(ctx, http.MethodPost, "/delete/"+url.PathEscape(id), nil))
}

// Clear removes every item.
func (c *Client) Clear(ctx context.Context) (model.ClearResult, error) {
	var out model.ClearResult
	err := c.postJSON(ctx, "/clear", &out)
	return out, err
}

// Undo reverts the server's most recent mutation.
func (c *Client) Undo(ctx context.Context) (model.UndoResult, error) {
	var out model.UndoResult
	err := c.postJSON(ctx, "/undo", &out)
	return out, err
}

// LastAction reports the server's most recent undoable action.
func (c *Client) LastAction(ctx context.Context) (model.LastAction, error) {
	var out model.LastAction
	resp, err := c.do(ctx, http.MethodGet, "/last-action", nil)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return out, fmt.Errorf("decode /last-action: %w", err)
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) discard(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	return resp.Body.Close()
}

// do sends one request and turns non-2xx answers into *StatusError.
// Redirects (the server answers form posts with 303 to /) are followed.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		resp.Body.Close()
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return resp, nil
}
