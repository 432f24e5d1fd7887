// Package client talks to the TTS service endpoints used by the portal.
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

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/request"
)

// Endpoint paths, relative to the service base URL.
const (
	PathSpeak  = "/api/speak"
	PathVoices = "/api/voices"
	PathPreset = "/api/prefs/preset"
)

// maxErrorBody caps how much of an error response is kept as detail.
const maxErrorBody = 64 << 10

// ErrInvalidJSON is returned when the voices endpoint does not answer with JSON.
var ErrInvalidJSON = errors.New("invalid JSON response")

// Client is an HTTP client for the TTS service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the service at baseURL.
// Requests carry no timeout of their own; bound them through the context.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Speak posts req as JSON and returns the synthesized audio.
func (c *Client) Speak(ctx context.Context, req request.Request) (*audio.Artifact, error) {
	const op = "speak"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, op, http.MethodPost, PathSpeak, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("synthesis response received",
		"engine", req.Engine(),
		"fmt", req.Format(),
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(data),
	)

	return &audio.Artifact{
		Data:        data,
		Format:      req.Format(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Voices returns the installed-voices document exactly as the service sent it.
func (c *Client) Voices(ctx context.Context) (json.RawMessage, error) {
	const op = "voices"

	resp, err := c.do(ctx, op, http.MethodGet, PathVoices, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidJSON)
	}

	return json.RawMessage(data), nil
}

// SavePreset stores preset as the default preset of user.
func (c *Client) SavePreset(ctx context.Context, user, preset string) error {
	const op = "save preset"

	path := PathPreset + "?user_id=" + queryComponent(user) + "&preset=" + queryComponent(preset)

	resp, err := c.do(ctx, op, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	return nil
}

// queryComponent escapes s for a query value, encoding spaces as %20.
func queryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// do sends a request and turns transport failures and non-2xx answers into errors.
// On success the caller owns the response body.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	c.logger.Debug("sending request", "op", op, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()

		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		c.logger.Debug("request failed", "op", op, "status", resp.StatusCode)

		return nil, &RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(detail),
		}
	}

	return resp, nil
}

type requestIDKey struct{}

// WithRequestID returns a context whose requests carry id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
