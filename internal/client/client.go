// Package client talks to the cookbook REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL, which includes the /api prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

// envelope is the common response frame. Success bodies carry their payload
// next to these fields.
type envelope struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details []apperrors.FieldError `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (string, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return "", apperrors.Internal("Network error", err).WithStatus(http.StatusServiceUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Internal("Failed to read response", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return "", apperrors.Internal("Unexpected response from server", err).WithStatus(resp.StatusCode)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.log.Debug("Request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", env.Message),
		)
		return env.Message, errorFromResponse(resp.StatusCode, env)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return env.Message, apperrors.Internal("Unexpected response from server", err)
		}
	}
	return env.Message, nil
}

// errorFromResponse maps an error body back onto the shared error kinds.
func errorFromResponse(status int, env envelope) *apperrors.Error {
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var e *apperrors.Error
	switch status {
	case http.StatusBadRequest:
		e = apperrors.Validation(msg, env.Details...)
	case http.StatusUnauthorized:
		e = apperrors.Authentication(msg)
	case http.StatusForbidden:
		e = apperrors.Authorization(msg)
	case http.StatusNotFound:
		e = apperrors.NotFound(msg)
	case http.StatusConflict:
		e = apperrors.Conflict(msg)
	case http.StatusTooManyRequests:
		e = apperrors.RateLimited(msg)
	default:
		e = apperrors.Internal(msg, nil)
	}
	return e.WithStatus(status)
}

// Message returns the server's message for err, or err's text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.As(err).Message
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
