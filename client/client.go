// Package client implements the retrying HTTP client used for every call
// to the control service.
//
// The scheduler cannot make progress without the control service, so a
// failed request (network error, timeout or non-2xx status) is logged and
// retried after a fixed interval instead of being surfaced. The retry
// policy is injectable: MaxAttempts == 0 retries forever, which is the
// production default.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pithecene-io/livedraw/iox"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
)

// DefaultRetryInterval is the fixed delay between attempts.
const DefaultRetryInterval = 500 * time.Millisecond

// DefaultTimeout is the per-attempt HTTP timeout.
const DefaultTimeout = 10 * time.Second

// ErrRetriesExhausted is returned when a bounded policy runs out of attempts.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy controls how failed requests are retried.
type RetryPolicy struct {
	// Interval is the fixed delay between attempts.
	Interval time.Duration
	// MaxAttempts bounds the total number of attempts. 0 means unbounded.
	MaxAttempts int
}

// DefaultRetryPolicy retries forever every 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: DefaultRetryInterval}
}

// Config configures the client.
type Config struct {
	// BaseURL is the control service root, e.g. http://localhost:4628 (required).
	BaseURL string
	// Timeout is the per-attempt timeout (default 10s).
	Timeout time.Duration
	// Retry is the retry policy (default: forever every 500ms).
	Retry RetryPolicy
	// Logger receives one warning per failed attempt. Optional.
	Logger *log.Logger
	// Collector counts retries. Optional.
	Collector *metrics.Collector
}

// Request describes a single control service call.
type Request struct {
	Method string
	// Path is joined to BaseURL.
	Path string
	// Body is sent as application/json when non-nil.
	Body []byte
}

// Response is a successful (2xx) reply with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Client performs control service requests, retrying on any failure.
type Client struct {
	config Config
	http   *http.Client
	logger *log.Logger
}

// New creates a client from the given config.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client requires a base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.Interval <= 0 {
		cfg.Retry.Interval = DefaultRetryInterval
	}
	if cfg.Retry.MaxAttempts < 0 {
		return nil, fmt.Errorf("max attempts must be >= 0, got %d", cfg.Retry.MaxAttempts)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Do performs the request until it succeeds. With an unbounded policy the
// only error is context cancellation; a bounded policy may also return an
// error wrapping ErrRetriesExhausted.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}

		resp, err := c.doOnce(ctx, req)
		if err == nil {
			return resp, nil
		}

		c.logger.Warn("control service request failed", map[string]any{
			"method":  req.Method,
			"path":    req.Path,
			"attempt": attempt,
			"error":   err.Error(),
		})

		if c.config.Retry.MaxAttempts > 0 && attempt >= c.config.Retry.MaxAttempts {
			return nil, fmt.Errorf("%s %s: %w after %d attempts: %w", req.Method, req.Path, ErrRetriesExhausted, attempt, err)
		}
		c.config.Collector.IncRequestRetry()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s %s: canceled during retry: %w", req.Method, req.Path, ctx.Err())
		case <-time.After(c.config.Retry.Interval):
		}
	}
}

// doOnce performs a single attempt and returns nil error only on 2xx.
func (c *Client) doOnce(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.config.BaseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
