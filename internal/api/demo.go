package api

import (
	"context"
	"fmt"
)

// DemoStatus fetches the state of server-side demo generation.
func (c *Client) DemoStatus(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "demo_status", "/api/demo/status", "", &resp); err != nil {
		return nil, fmt.Errorf("demo status: %w", err)
	}
	return resp, nil
}

// StartDemo asks the server to synthesize signals at the given per-minute
// rate. The rate is sent as-is; the server owns validation and defaults.
func (c *Client) StartDemo(ctx context.Context, signalsPerMinute int) (map[string]any, error) {
	var resp map[string]any
	body := startDemoRequest{SignalsPerMinute: signalsPerMinute}
	if err := c.post(ctx, "demo_start", "/api/demo/start", body, &resp); err != nil {
		return nil, fmt.Errorf("start demo: %w", err)
	}
	return resp, nil
}

// StopDemo halts server-side demo generation.
func (c *Client) StopDemo(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "demo_stop", "/api/demo/stop", nil, &resp); err != nil {
		return nil, fmt.Errorf("stop demo: %w", err)
	}
	return resp, nil
}

// SeedDemo asks the server to backfill count historical demo signals.
func (c *Client) SeedDemo(ctx context.Context, count int) (map[string]any, error) {
	var resp map[string]any
	body := seedDemoRequest{Count: count}
	if err := c.post(ctx, "demo_seed", "/api/demo/seed", body, &resp); err != nil {
		return nil, fmt.Errorf("seed demo: %w", err)
	}
	return resp, nil
}
