package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/turnupspot/turnupspot-client/internal/logging"
)

// Instrumented returns an http.Client for libraries that issue their own
// requests (the oauth2 token exchange). Each request holds the loading
// counter until its body is closed and carries a request ID.
func (c *Client) Instrumented() *http.Client {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   c.http.Timeout,
		Transport: &countingTransport{client: c, base: base},
	}
}

type countingTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	done := t.client.loading.Begin()

	rid := logging.RequestID(req.Context())
	if rid == "" {
		rid = uuid.NewString()
	}
	req = req.Clone(req.Context())
	req.Header.Set(headerRequestID, rid)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		done()
		return nil, err
	}
	resp.Body = &doneOnClose{ReadCloser: resp.Body, done: done}
	return resp, nil
}

type doneOnClose struct {
	io.ReadCloser
	once sync.Once
	done func()
}

func (d *doneOnClose) Close() error {
	err := d.ReadCloser.Close()
	d.once.Do(d.done)
	return err
}

// TokenError normalizes a failure from an oauth2 token exchange into
// *Error and publishes the same global notice Do would.
func (c *Client) TokenError(ctx context.Context, path string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	var retrieveErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &retrieveErr) && retrieveErr.Response != nil:
		apiErr = httpError(http.MethodPost, path, retrieveErr.Response.StatusCode, retrieveErr.Body)
		apiErr.cause = err
	default:
		apiErr = transportError(ctx, http.MethodPost, path, err)
	}

	c.metrics.record(0, apiErr)
	c.publish(apiErr)
	logging.New(ctx).LogWarnf("token", "path=%s status=%d: %s", path, apiErr.Status, apiErr.Message)
	return apiErr
}
