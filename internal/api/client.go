// Package api implements the HTTP client for the DataWhiz backend. The
// core treats every endpoint as an opaque asynchronous call that settles
// with a payload or fails with a TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/datawhiz/whiz/internal/logging"
)

// TokenSource supplies the bearer token attached to authenticated requests.
type TokenSource interface {
	// AccessToken returns the stored access token, or "" when signed out.
	AccessToken() (string, error)
}

// Config holds client construction options.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Tokens supplies bearer tokens; nil means unauthenticated.
	Tokens TokenSource

	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// Client talks to the DataWhiz backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  zerolog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  cfg.Tokens,
		logger:  logging.Component("api-client"),
	}
}

// url joins the base URL with a path.
func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do sends the request with auth attached and maps non-2xx responses to
// TransportError. The response body is returned for 2xx responses.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	if c.tokens != nil {
		token, err := c.tokens.AccessToken()
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request settled")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     detailFromBody(body),
		}
	}

	return body, nil
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path, op string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}

	body, err := c.do(req, op)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// sendJSON issues a request with a JSON body and optionally decodes the
// response into out.
func (c *Client) sendJSON(ctx context.Context, method, path, op string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	body, err := c.do(req, op)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
