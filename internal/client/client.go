// Package client talks to the storefront API on behalf of a shopper session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"beatstore/pkg/platform/circuit"
	"beatstore/pkg/platform/sentinel"
	"beatstore/pkg/requestcontext"
)

const defaultTimeout = 10 * time.Second

// Client is a JSON-over-HTTP client for the storefront API. Calls are
// short-circuited while the breaker is open.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sets the bearer token sent on authenticated calls.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		breaker: circuit.New("storefront-api"),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// SavedItems returns the saved-items API bound to this client's token.
func (c *Client) SavedItems() *SavedItems {
	return &SavedItems{c: c}
}

// Products returns the public product lookup API.
func (c *Client) Products() *Products {
	return &Products{c: c}
}

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// do sends one request and decodes a 2xx JSON body into out when non-nil.
// 401 maps to sentinel.ErrUnauthorized; transport failures and other non-2xx
// statuses map to sentinel.ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, auth bool) error {
	if auth && c.token == "" {
		return sentinel.ErrUnauthorized
	}
	if !c.breaker.Allow() {
		return fmt.Errorf("%s %s: %w", method, path, sentinel.ErrCircuitOpen)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return fmt.Errorf("%w: %s %s: %w", sentinel.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		c.recordFailure(ctx)
		return fmt.Errorf("%w: %s %s: status %d%s", sentinel.ErrUnavailable, method, path, resp.StatusCode, describe(resp.Body))
	case resp.StatusCode == http.StatusUnauthorized:
		c.recordSuccess(ctx)
		return fmt.Errorf("%s %s: %w", method, path, sentinel.ErrUnauthorized)
	case resp.StatusCode >= 300:
		c.recordSuccess(ctx)
		return fmt.Errorf("%w: %s %s: status %d%s", sentinel.ErrUnavailable, method, path, resp.StatusCode, describe(resp.Body))
	}
	c.recordSuccess(ctx)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", sentinel.ErrUnavailable, method, path, err)
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit closed", "breaker", c.breaker.Name())
	}
}

func describe(body io.Reader) string {
	var e apiError
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&e); err != nil || e.Error == "" {
		return ""
	}
	if e.ErrorDescription == "" {
		return " (" + e.Error + ")"
	}
	return " (" + e.Error + ": " + e.ErrorDescription + ")"
}
