package api

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

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// ClientConfig contains configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8000
	BaseURL string

	// Token is sent as a bearer token when set
	Token string

	// Timeout is the per-request HTTP timeout
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that opens the breaker
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing again
	BreakerTimeout time.Duration

	// HTTPClient overrides the default client (tests)
	HTTPClient *http.Client

	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Client talks to the vocabulary backend.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	defaults := DefaultClientConfig(cfg.BaseURL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := logging.OrDefault(cfg.Logger).With("component", "api")

	return &Client{
		base:    base,
		token:   cfg.Token,
		http:    httpClient,
		breaker: newBreaker(cfg.BreakerFailures, cfg.BreakerTimeout, logger),
		logger:  logger,
	}, nil
}

// do performs one JSON request through the circuit breaker. in may be nil
// for requests without a body, out may be nil when the response is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, path, in, out)
	})
	if err == nil {
		return nil
	}

	var se *vocab.ServiceError
	if errors.As(err, &se) {
		return err
	}
	// Breaker rejections arrive here without passing through roundTrip.
	c.logger.Warn("request rejected", "op", op, "error", err)
	return &vocab.ServiceError{Op: op, Err: err}
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, in, out interface{}) error {
	endpoint := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &vocab.ServiceError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return &vocab.ServiceError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "error", err)
		return &vocab.ServiceError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("request done", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &vocab.ServiceError{Op: op, Status: resp.StatusCode, Detail: extractDetail(raw)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &vocab.ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// extractDetail pulls the string "detail" field out of an error body. Any
// other shape (validation error lists, HTML, empty) yields "".
func extractDetail(raw []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
