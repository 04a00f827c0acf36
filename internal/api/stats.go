package api

import (
	"context"
	"fmt"
)

// Health checks API liveness. The payload is passed through verbatim.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "health", "/health", "", &resp); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return resp, nil
}

// Stats fetches aggregate signal statistics.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "stats", "/api/stats", "", &resp); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return resp, nil
}

// Leaderboard fetches the top-performing signals board.
func (c *Client) Leaderboard(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "leaderboard", "/api/leaderboard", "", &resp); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return resp, nil
}

// Gainers fetches recent top gainers.
func (c *Client) Gainers(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "gainers", "/api/gainers", "", &resp); err != nil {
		return nil, fmt.Errorf("gainers: %w", err)
	}
	return resp, nil
}
