// Package api is the single choke point for calls to the TurnUp Spot
// backend. Every request goes through Client.Do, which attaches the session
// token, drives the loading counter, and normalizes failures into *Error.
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
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/turnupspot/turnupspot-client/internal/loading"
	"github.com/turnupspot/turnupspot-client/internal/logging"
	"github.com/turnupspot/turnupspot-client/internal/notify"
)

const (
	// DefaultTimeout for a single backend call
	DefaultTimeout = 30 * time.Second

	headerRequestID = "X-Request-Id"
)

// TokenSource yields the current bearer token, or "" when signed out
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the backend REST API
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	loading  *loading.Counter
	notifier notify.Notifier
	limiter  *rate.Limiter
	metrics  *Metrics

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLoading shares a loading counter with the rest of the process
func WithLoading(counter *loading.Counter) Option {
	return func(c *Client) { c.loading = counter }
}

// WithNotifier sets where global notices are published
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTokenSource sets the source of the bearer token
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client rooted at baseURL, e.g. http://localhost:8000/api/v1
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", baseURL)
	}

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: DefaultTimeout},
		loading:  loading.New(),
		notifier: notify.Discard,
		metrics:  &Metrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource swaps the token source after construction. The session
// store is built on top of the client, so it is installed late.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Loading returns the read side of the counter this client drives
func (c *Client) Loading() loading.Signal {
	return c.loading.Signal()
}

// Metrics returns a snapshot of this client's call metrics
func (c *Client) Metrics() MetricsSnapshot {
	return c.metrics.snapshot()
}

// ResetMetrics zeroes the call metrics (useful for testing)
func (c *Client) ResetMetrics() {
	c.metrics.reset()
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL resolves a relative API path against the base URL
func (c *Client) URL(path string) (string, error) {
	u, err := c.resolve(path, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Response describes a successful call
type Response struct {
	Status    int
	Header    http.Header
	RequestID string
}

type requestConfig struct {
	header http.Header
	query  url.Values
}

// RequestOption customizes a single call
type RequestOption func(*requestConfig)

// WithHeader sets a request header
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.header.Set(key, value) }
}

// WithBearer authorizes the call with token instead of the session token
func WithBearer(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithQuery adds a query parameter
func WithQuery(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.query.Add(key, value) }
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST request
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT request
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do sends one request. body is encoded as JSON unless it is a *Multipart;
// out, when non-nil, receives the decoded JSON response. Any failure is
// returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) (*Response, error) {
	done := c.loading.Begin()
	defer done()

	rid := logging.RequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = logging.WithRequestID(ctx, rid)
	}
	logger := logging.New(ctx)
	start := time.Now()

	resp, err := c.send(ctx, rid, method, path, body, out, opts)
	duration := time.Since(start)
	c.metrics.record(duration, err)

	if err != nil {
		apiErr, _ := AsError(err)
		c.publish(apiErr)
		if apiErr.Kind == KindCanceled {
			logger.LogInfof("request", "method=%s path=%s canceled latency=%s", method, path, duration)
		} else {
			logger.LogWarnf("request", "method=%s path=%s status=%d kind=%s latency=%s: %s",
				method, path, apiErr.Status, apiErr.Kind, duration, apiErr.Message)
		}
		return nil, err
	}

	logger.LogInfof("request", "method=%s path=%s status=%d latency=%s", method, path, resp.Status, duration)
	return resp, nil
}

func (c *Client) send(ctx context.Context, rid, method, path string, body, out any, opts []RequestOption) (*Response, error) {
	fail := func(kind Kind, msg string, cause error) *Error {
		return &Error{Kind: kind, Message: msg, Method: method, Path: path, cause: cause}
	}

	rc := &requestConfig{header: http.Header{}, query: url.Values{}}
	for _, opt := range opts {
		opt(rc)
	}

	u, err := c.resolve(path, rc.query)
	if err != nil {
		return nil, fail(KindTransport, err.Error(), err)
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fail(KindTransport, err.Error(), err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(ctx, method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fail(KindTransport, err.Error(), fmt.Errorf("create request: %w", err))
	}
	for k, v := range rc.header {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, rid)
	if req.Header.Get("Authorization") == "" {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, method, path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(ctx, method, path, err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, httpError(method, path, httpResp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			e := fail(KindDecode, GenericMessage, fmt.Errorf("decode JSON: %w", err))
			e.Status = httpResp.StatusCode
			e.Body = raw
			return nil, e
		}
	}

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, RequestID: rid}, nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	if ref.Scheme != "" || ref.Host != "" || strings.HasPrefix(path, "//") {
		return nil, ErrAbsolutePath
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""

	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return &u, nil
}

// publish emits the global notice for a failure, if its status has one
func (c *Client) publish(e *Error) {
	if e == nil || e.Kind != KindHTTP {
		return
	}
	msg, ok := noticeFor(e.Status)
	if !ok {
		return
	}
	c.notifier.Notify(notify.Notice{
		Level:   notify.LevelError,
		Message: msg,
		Status:  e.Status,
		At:      time.Now(),
	})
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode JSON body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func httpError(method, path string, status int, body []byte) *Error {
	e := &Error{
		Kind:    KindHTTP,
		Message: GenericMessage,
		Status:  status,
		Body:    body,
		Method:  method,
		Path:    path,
		cause:   fmt.Errorf("status %d", status),
	}
	if msg, ok := messageFromBody(body); ok {
		e.Message = msg
		e.FromServer = true
	}
	return e
}

func transportError(ctx context.Context, method, path string, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Kind: KindCanceled, Message: "request canceled", Method: method, Path: path, cause: err}
	}
	msg := err.Error()
	if msg == "" {
		msg = GenericMessage
	}
	return &Error{Kind: KindTransport, Message: msg, Method: method, Path: path, cause: err}
}
