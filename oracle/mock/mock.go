// Package mock provides an in-process fake oracle server implementing
// oracle.OracleClient without a real HTTP listener, the same role the
// teacher's internal/mock ShiroClient plays for its RPC client: tests get a
// hermetic, fast double that satisfies the production interface exactly.
package mock

import (
	"context"
	"sync"

	"github.com/reilabs/cairo-hints-go/oracle"
	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
)

// Handler answers one selector's invocations.
type Handler func(request any) (any, error)

var _ oracle.OracleClient = (*Client)(nil)

// Client is an in-process OracleClient backed by registered per-selector
// handlers; the actual sync/polling wire state machine lives in package
// oracle and is exercised separately against an httptest server.
type Client struct {
	mu       sync.Mutex
	handlers map[string]Handler
	healthy  bool
}

// New returns an empty mock client; Handle registers per-selector behavior.
func New() *Client {
	return &Client{
		handlers: map[string]Handler{},
		healthy:  true,
	}
}

// Handle registers fn to answer calls to selector.
func (c *Client) Handle(selector string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[selector] = fn
}

// SetHealthy controls what HealthCheck reports.
func (c *Client) SetHealthy(healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = healthy
}

// Invoke implements oracle.OracleClient.
func (c *Client) Invoke(_ context.Context, _ schema.ServerConfig, selector string, request any, _ ...oracle.Config) (any, error) {
	c.mu.Lock()
	fn, ok := c.handlers[selector]
	c.mu.Unlock()
	if !ok {
		return nil, oracleerr.New(oracleerr.NoServerConfigured, selector, "rpc", "no mock handler registered", nil)
	}
	return fn(request)
}

// HealthCheck implements oracle.OracleClient.
func (c *Client) HealthCheck(_ context.Context, _ string, _ ...oracle.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.healthy {
		return oracleerr.New(oracleerr.RpcFailure, "", "rpc", "mock oracle server reported unhealthy", nil)
	}
	return nil
}
