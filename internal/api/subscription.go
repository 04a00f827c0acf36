package api

import (
	"context"
	"fmt"
	"net/url"
)

// SubscriptionTiers fetches the available subscription tiers.
func (c *Client) SubscriptionTiers(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "subscription_tiers", "/api/subscription/tiers", "", &resp); err != nil {
		return nil, fmt.Errorf("subscription tiers: %w", err)
	}
	return resp, nil
}

// SubscriptionStatus checks the subscription standing of a wallet.
func (c *Client) SubscriptionStatus(ctx context.Context, wallet string) (map[string]any, error) {
	if wallet == "" {
		return nil, fmt.Errorf("wallet is required")
	}

	var resp map[string]any
	if err := c.get(ctx, "subscription_status", "/api/subscription/"+url.PathEscape(wallet), "", &resp); err != nil {
		return nil, fmt.Errorf("subscription status %s: %w", wallet, err)
	}
	return resp, nil
}
