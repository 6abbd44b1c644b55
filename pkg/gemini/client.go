// Package gemini calls the Gemini generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-flash-latest"

	// DefaultMaxOutputTokens applies when the prompt does not override it.
	DefaultMaxOutputTokens = 1024
)

// KeySource returns the API credential for one call. An empty key means none is configured.
type KeySource func(ctx context.Context) (string, error)

// StaticKey returns a KeySource for a fixed key.
func StaticKey(key string) KeySource {
	return func(context.Context) (string, error) { return key, nil }
}

// Client is a ports.Model over HTTP.
type Client struct {
	endpoint string
	model    string
	keys     KeySource
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.Model = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client reading its credential from keys.
func New(keys KeySource, opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		keys:     keys,
		http:     &http.Client{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends one generateContent call. It never retries.
// Without a credential it returns domain.ErrMissingCredential before touching the network.
func (c *Client) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	key, err := c.keys(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	if key == "" {
		return "", domain.ErrMissingCredential
	}

	body, err := json.Marshal(newRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?%s", c.endpoint, url.PathEscape(c.model), url.Values{"key": {key}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRemoteCallFailed, redact(err, key))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrRemoteCallFailed, err)
	}
	c.logger.Debug("generateContent", "model", c.model, "status", res.StatusCode, "duration", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", newAPIError(res.StatusCode, raw)
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", domain.ErrRemoteCallFailed, err)
	}
	return out.text()
}

// redact keeps the credential out of transport errors, which quote the request URL.
func redact(err error, key string) string {
	return strings.ReplaceAll(err.Error(), key, "REDACTED")
}
