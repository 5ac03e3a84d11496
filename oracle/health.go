package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"

	"github.com/reilabs/cairo-hints-go/oracleerr"
)

// HealthCheck probes serverURL's "/health_check" endpoint before a run, the
// way the teacher's RPC client probes its gateway's health endpoint ahead of
// real traffic: fail fast with a clear message rather than surfacing a
// deserialize/rpc hint error mid-run. This is an ambient diagnostic; nothing
// in spec.md's wire contract forbids it, and it is not part of the per-hint
// RPC path.
func (c *Client) HealthCheck(ctx context.Context, serverURL string, configs ...Config) error {
	o := c.options(configs...)
	ctx = o.resolvedCtx(ctx)

	checkURL, err := healthCheckURL(serverURL)
	if err != nil {
		return oracleerr.New(oracleerr.ConfigLoad, "", "", fmt.Sprintf("invalid oracle server URL %q", serverURL), err)
	}

	body, err := c.rpc.GetJSON(ctx, checkURL)
	if err != nil {
		return oracleerr.New(oracleerr.RpcFailure, "", "rpc", fmt.Sprintf("health check GET %s", checkURL), err)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return oracleerr.New(oracleerr.RpcFailure, "", "rpc", "decode health check response", err)
	}
	if resp.Status != "" && resp.Status != "ok" && resp.Status != "healthy" {
		return oracleerr.New(oracleerr.RpcFailure, "", "rpc", fmt.Sprintf("oracle server reported unhealthy status %q", resp.Status), nil)
	}
	return nil
}

func healthCheckURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid oracle server url: %w", err)
	}
	u.Path = path.Join(u.Path, "health_check")
	return u.String(), nil
}
