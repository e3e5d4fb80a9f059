// Package api is a client for the FREEPARE REST backend.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/freepare/freepare/pkg/logging"
	"github.com/freepare/freepare/pkg/metrics"
	"github.com/freepare/freepare/pkg/model"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultRetries    = 2
	DefaultRetryDelay = 500 * time.Millisecond

	maxBodyBytes = 32 << 20
)

// ErrNoToken is returned by credentialed calls when the client has no
// session token.
var ErrNoToken = errors.New("no session token")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	log        *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithToken sets the session token sent on credentialed calls.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithRetry sets how many times a failed request is repeated and the fixed
// pause between attempts.
func WithRetry(retries int, delay time.Duration) Option {
	return func(c *Client) {
		if retries < 0 {
			retries = 0
		}
		if delay < 0 {
			delay = 0
		}
		c.retries = retries
		c.retryDelay = delay
	}
}

// WithLogger sets the event logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New returns a client for baseURL (for example https://api.freepare.com).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether credentialed calls can be made.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Entities fetches the content forest from /api/entities.
func (c *Client) Entities(ctx context.Context) ([]*model.Entity, error) {
	body, err := c.get(ctx, "/api/entities", false)
	if err != nil {
		return nil, err
	}
	defer metrics.Timer(metrics.JSONParsing)()
	forest, err := model.DecodeForest(body)
	if err != nil {
		return nil, fmt.Errorf("decoding entities: %w", err)
	}
	return forest, nil
}

// CompletedTests fetches the current user's completed-test set.
func (c *Client) CompletedTests(ctx context.Context) (model.CompletedSet, error) {
	if c.token == "" {
		return model.CompletedSet{}, ErrNoToken
	}
	body, err := c.get(ctx, "/api/tests/getCompletedTests", true)
	if err != nil {
		return model.CompletedSet{}, err
	}
	set, err := model.DecodeCompleted(body)
	if err != nil {
		return model.CompletedSet{}, fmt.Errorf("decoding completed tests: %w", err)
	}
	return set, nil
}

// Exam fetches the quiz behind a leaf. examID is the launch examId (name or
// id); it is escaped into the path.
func (c *Client) Exam(ctx context.Context, examID string) (*model.Exam, error) {
	defer metrics.Timer(metrics.ExamLoad)()
	if strings.TrimSpace(examID) == "" {
		return nil, errors.New("empty exam id")
	}
	body, err := c.get(ctx, "/api/exams/"+url.PathEscape(examID), false)
	if err != nil {
		return nil, fmt.Errorf("unable to load exam: %w", err)
	}
	var exam model.Exam
	if err := json.Unmarshal(body, &exam); err != nil {
		return nil, fmt.Errorf("decoding exam: %w", err)
	}
	return &exam, nil
}

// get performs a GET with fixed-delay retries on network errors and 5xx
// responses.
func (c *Client) get(ctx context.Context, path string, credentialed bool) ([]byte, error) {
	target := c.baseURL + path
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		body, retry, err := c.do(ctx, target, credentialed)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.log.Warn("api_request_failed", "url", target, "attempt", attempt+1, "error", err.Error(), "retry", retry)
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, target string, credentialed bool) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if credentialed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debug("api_request", "url", target, "status", resp.StatusCode, "request_id", reqID,
		"bytes", len(body), "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode >= 500, &StatusError{Code: resp.StatusCode, URL: target}
	}
	return body, false, nil
}
