// Package oracle implements the RPC client from spec.md §4.4: synchronous
// and polling-mode HTTP/JSON calls against a configured oracle endpoint.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/reilabs/cairo-hints-go/oracle/internal/rpc"
	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
	spantrace "github.com/reilabs/cairo-hints-go/x/trace"
)

var tracer = otel.Tracer("github.com/reilabs/cairo-hints-go/oracle")

// OracleClient is the capability an invoking component (the hint
// interceptor, the CLI) needs: invoke a method and check server health.
// package oracle/mock provides an in-process implementation of the same
// interface for hermetic tests.
type OracleClient interface {
	Invoke(ctx context.Context, serverCfg schema.ServerConfig, selector string, request any, configs ...Config) (any, error)
	HealthCheck(ctx context.Context, serverURL string, configs ...Config) error
}

var _ OracleClient = (*Client)(nil)

// Client is the real HTTP-backed OracleClient.
type Client struct {
	baseConfig []Config
	rpc        *rpc.Client
}

// New constructs a Client. Configs passed here are applied as a base to
// every call, followed by any per-call configs (same precedence as the
// teacher's rpcShiroClient.baseConfig).
func New(configs ...Config) *Client {
	return &Client{baseConfig: configs, rpc: rpc.New(nil)}
}

func (c *Client) options(configs ...Config) *requestOptions {
	all := make([]Config, 0, len(c.baseConfig)+len(configs))
	all = append(all, c.baseConfig...)
	all = append(all, configs...)
	o := applyConfigs(all...)
	c.rpc.Log = o.log
	if o.httpClient != nil {
		c.rpc.HTTPClient = o.httpClient
	}
	return o
}

func methodURL(serverURL, selector string) string {
	return strings.TrimRight(serverURL, "/") + "/" + selector
}

// Invoke performs the RPC described by serverCfg against selector, in
// synchronous or polling mode per spec.md §4.4, and returns the decoded JSON
// result value (a bare object, never {"result": ...}-wrapped — see
// SPEC_FULL.md §9's resolution of the sync-response Open Question).
func (c *Client) Invoke(ctx context.Context, serverCfg schema.ServerConfig, selector string, request any, configs ...Config) (any, error) {
	o := c.options(configs...)
	ctx, span := tracer.Start(o.resolvedCtx(ctx), "oracle.Invoke")
	defer span.End()
	span.SetAttributes(
		oteltrace.Key(spantrace.AttrSelector).String(selector),
		oteltrace.Key(spantrace.AttrEndpoint).String(serverCfg.ServerURL),
		oteltrace.Key(spantrace.AttrPolling).Bool(serverCfg.Polling),
	)

	url := methodURL(serverCfg.ServerURL, selector)
	headers := map[string]string{"x-admin-api-key": o.adminAPIKey}

	var result any
	var err error
	if serverCfg.Polling {
		result, err = c.invokePolling(ctx, url, request, headers, serverCfg.EffectivePollingConfig(), selector, span, o)
	} else {
		syncCtx, cancel := context.WithTimeout(ctx, time.Duration(serverCfg.EffectivePollingConfig().RequestTimeoutS)*time.Second)
		result, err = c.invokeSync(syncCtx, url, request, headers, selector)
		cancel()
	}
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (o *requestOptions) resolvedCtx(ctx context.Context) context.Context {
	if o.ctx != nil {
		return o.ctx
	}
	return ctx
}

func (c *Client) invokeSync(ctx context.Context, url string, request any, headers map[string]string, selector string) (any, error) {
	body, err := c.rpc.PostJSON(ctx, url, request, headers)
	if err != nil {
		return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", fmt.Sprintf("POST %s", url), err)
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", "decode response JSON", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", fmt.Sprintf("expected a JSON object response, got %T", value), nil)
	}
	return obj, nil
}

func (c *Client) invokePolling(ctx context.Context, url string, request any, headers map[string]string, pc schema.PollingConfig, selector string, span oteltrace.Span, o *requestOptions) (any, error) {
	postCtx, cancel := context.WithTimeout(ctx, time.Duration(pc.RequestTimeoutS)*time.Second)
	body, err := c.rpc.PostJSON(postCtx, url, request, headers)
	cancel()
	if err != nil {
		return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", fmt.Sprintf("POST %s", url), err)
	}
	var initial struct {
		JobID string `json:"jobId"`
	}
	if err := json.Unmarshal(body, &initial); err != nil || initial.JobID == "" {
		return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", "expected a jobId in initial response", err)
	}
	span.SetAttributes(oteltrace.Key(spantrace.AttrJobID).String(initial.JobID))

	statusURL := strings.TrimRight(url, "/") + "/status/" + initial.JobID
	start := time.Now()
	overall := time.Duration(pc.OverallTimeoutS) * time.Second
	interval := time.Duration(pc.PollingIntervalS) * time.Second

	for attempt := 0; ; attempt++ {
		if attempt >= pc.MaxAttempts || time.Since(start) >= overall {
			return nil, oracleerr.New(oracleerr.PollingTimeout, selector, "rpc", fmt.Sprintf("polling exceeded max_attempts=%d or overall_timeout=%ds", pc.MaxAttempts, pc.OverallTimeoutS), nil)
		}
		span.SetAttributes(oteltrace.Key(spantrace.AttrAttempt).Int(attempt + 1))

		reqCtx, cancel := context.WithTimeout(ctx, time.Duration(pc.RequestTimeoutS)*time.Second)
		statusBody, err := c.rpc.GetJSON(reqCtx, statusURL)
		cancel()
		if err != nil {
			return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", fmt.Sprintf("GET %s", statusURL), err)
		}

		var status struct {
			Status string `json:"status"`
			Result any    `json:"result"`
		}
		if err := json.Unmarshal(statusBody, &status); err != nil {
			return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", "decode status JSON", err)
		}
		if status.Status == "completed" {
			obj, ok := status.Result.(map[string]any)
			if !ok {
				return nil, oracleerr.New(oracleerr.RpcFailure, selector, "rpc", fmt.Sprintf("expected an object result, got %T", status.Result), nil)
			}
			return obj, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
