package api

import "github.com/dynamolabs/oracle-alpha/internal/model"

// SignalsResponse from GET /api/signals
type SignalsResponse struct {
	Signals []model.Signal `json:"signals"`
	Count   int            `json:"count"`
}

// ListSignalsOptions configures a ListSignals request.
type ListSignalsOptions struct {
	MinScore int // Minimum score filter; omitted from the query when 0
	Limit    int // Result cap; DefaultListLimit when 0
}

// startDemoRequest is the body of POST /api/demo/start
type startDemoRequest struct {
	SignalsPerMinute int `json:"signalsPerMinute"`
}

// seedDemoRequest is the body of POST /api/demo/seed
type seedDemoRequest struct {
	Count int `json:"count"`
}
