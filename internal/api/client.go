// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/lessonctl/internal/session"
)

// DefaultBaseURL is used when neither config nor flags name a server.
const DefaultBaseURL = "http://localhost:8080/api"

const refreshPath = "/token/refresh"

// Client talks to the lessons REST API on behalf of one Session.
type Client struct {
	BaseURL string
	Session *session.Session

	hc            *http.Client
	base          Doer
	doer          Doer
	extra         []Middleware
	loginRequired func(error)
	now           func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLoginRequired installs the callback run when authentication cannot be
// recovered.
func WithLoginRequired(fn func(error)) Option {
	return func(c *Client) { c.loginRequired = fn }
}

// WithMiddleware adds middlewares outside the auth pair, after RequestID and
// Logging.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *Client) { c.extra = append(c.extra, mws...) }
}

// WithNow overrides the clock used to name exported files.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a Client for baseURL. The session is read on every request,
// so tokens written elsewhere are picked up without rebuilding the client.
func New(baseURL string, s *session.Session, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}

	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Session: s,
		hc:      &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.base = FromClient(c.hc)

	mws := []Middleware{RequestID(), Logging()}
	mws = append(mws, c.extra...)
	mws = append(mws, Refresh(s, c, c.loginRequired), Bearer(s))
	c.doer = Chain(c.base, mws...)

	return c, nil
}

// Refresh exchanges refreshToken for a new pair. It goes straight to the
// transport so a rejected refresh can never trigger another refresh.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (session.Pair, error) {
	var out tokenPair
	err := c.send(ctx, c.base, http.MethodPost, refreshPath, nil, map[string]string{"refresh": refreshToken}, &out)
	if err != nil {
		return session.Pair{}, fmt.Errorf("refresh: %w", err)
	}
	if out.Access == "" {
		return session.Pair{}, errors.New("refresh: server returned an empty access token")
	}
	return session.Pair{Access: out.Access, Refresh: out.Refresh}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		// A *bytes.Reader gives the request a GetBody, so it can be replayed.
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// exchange runs one request through d and returns the response when the
// status is 2xx. The caller closes the body.
func (c *Client) exchange(ctx context.Context, d Doer, method, path string, query url.Values, in any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, query, in)
	if err != nil {
		return nil, err
	}

	resp, err := d(req)
	if err != nil {
		if errors.Is(err, ErrLoginRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req, resp)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, d Doer, method, path string, query url.Values, in, out any) error {
	resp, err := c.exchange(ctx, d, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		*raw = b
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.send(ctx, c.doer, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, c.doer, http.MethodPost, path, nil, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, c.doer, http.MethodPut, path, nil, in, out)
}

// Raw issues an authenticated GET and returns the body untouched. It backs
// the raw output mode.
func (c *Client) Raw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	log.Debugf("raw %s: %d bytes", path, len(raw))
	return raw, nil
}
