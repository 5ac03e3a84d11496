// Package rpc is the wire round-trip helper behind package oracle: a thin
// POST/GET JSON client built around the same cancellable doRequest shape the
// teacher's ShiroClient RPC transport uses, generalized from a JSON-RPC
// envelope to the oracle's plain POST/GET contract (spec.md §4.4).
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Client performs HTTP round trips with a context-cancellable read of the
// response body.
type Client struct {
	HTTPClient *http.Client
	Log        *logrus.Logger
}

// New returns a Client with a default *http.Client.
func New(log *logrus.Logger) *Client {
	return &Client{HTTPClient: &http.Client{}, Log: log}
}

// doRequest performs httpReq and returns its body, honoring ctx
// cancellation even while the HTTP round trip is still in flight.
func (c *Client) doRequest(ctx context.Context, httpReq *http.Request) ([]byte, error) {
	type result struct {
		msg []byte
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		httpRes, err := c.HTTPClient.Do(httpReq.WithContext(ctx))
		if err != nil {
			resultCh <- result{nil, err}
			return
		}

		msg, readErr := io.ReadAll(httpRes.Body)
		closeErr := httpRes.Body.Close()
		if readErr != nil {
			if c.Log != nil {
				c.Log.WithError(readErr).Warn("oracle rpc: failed to read response body")
			}
			resultCh <- result{nil, readErr}
			return
		}
		if closeErr != nil {
			if c.Log != nil {
				c.Log.WithError(closeErr).Warn("oracle rpc: failed to close response body")
			}
			resultCh <- result{nil, closeErr}
			return
		}
		if httpRes.StatusCode < 200 || httpRes.StatusCode >= 300 {
			resultCh <- result{msg, &StatusError{Code: httpRes.StatusCode, Body: msg}}
			return
		}
		resultCh <- result{msg, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) && !errors.Is(ctx.Err(), context.Canceled) {
				return nil, res.err
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, fmt.Errorf("%w: %s", context.Canceled, res.err)
			}
			return nil, res.err
		}
		return res.msg, nil
	}
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle rpc: unexpected status %d: %s", e.Code, string(e.Body))
}

// PostJSON marshals body, POSTs it to url with Content-Type: application/json
// plus any extra headers, and returns the raw response body.
func (c *Client) PostJSON(ctx context.Context, url string, body any, headers map[string]string) ([]byte, error) {
	outmsg, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("oracle rpc: marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(outmsg))
	if err != nil {
		return nil, fmt.Errorf("oracle rpc: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	return c.doRequest(ctx, httpReq)
}

// GetJSON issues a GET to url and returns the raw response body.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("oracle rpc: build request: %w", err)
	}
	return c.doRequest(ctx, httpReq)
}
