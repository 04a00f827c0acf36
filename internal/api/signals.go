package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dynamolabs/oracle-alpha/internal/model"
)

// ListSignals fetches signals above a minimum score, newest first.
//
// Query parameters are emitted in a fixed order: minScore (when set),
// then limit (always present).
func (c *Client) ListSignals(ctx context.Context, opts ListSignalsOptions) (*SignalsResponse, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var q queryString
	if opts.MinScore > 0 {
		q.addInt("minScore", opts.MinScore)
	}
	q.addInt("limit", limit)

	var resp SignalsResponse
	if err := c.get(ctx, "list_signals", "/api/signals", q.String(), &resp); err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}

	return &resp, nil
}

// GetSignal fetches a single signal by id.
func (c *Client) GetSignal(ctx context.Context, id string) (*model.Signal, error) {
	if id == "" {
		return nil, fmt.Errorf("signal id is required")
	}

	var sig model.Signal
	if err := c.get(ctx, "get_signal", "/api/signals/"+url.PathEscape(id), "", &sig); err != nil {
		return nil, fmt.Errorf("get signal %s: %w", id, err)
	}

	return &sig, nil
}
