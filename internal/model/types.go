package model

import (
	"fmt"
	"time"
)

// RiskLevel classifies a signal by the volatility of its underlying token.
type RiskLevel string

// Risk levels, ordered from safest to wildest.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
	RiskDegen  RiskLevel = "degen"
)

// Valid reports whether r is one of the known risk levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskDegen:
		return true
	}
	return false
}

// Signal represents one scored trading recommendation.
//
// A Signal is an immutable value once received; the client never mutates
// fields after decoding.
type Signal struct {
	ID             string    `json:"id"`             // Server-assigned identifier
	Symbol         string    `json:"symbol"`         // Trading symbol (e.g., "BTC")
	Name           string    `json:"name"`           // Human-readable token name
	Token          string    `json:"token"`          // Token address or reference
	Score          float64   `json:"score"`          // Composite score, 0-100
	RiskLevel      RiskLevel `json:"riskLevel"`      // Risk classification
	CreatedAt      time.Time `json:"createdAt"`      // Creation time (RFC 3339)
	Recommendation string    `json:"recommendation"` // Textual recommendation
}

// Validate checks the structural invariants the client relies on.
// Unknown risk levels are allowed through; the server owns that vocabulary.
func (s Signal) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("signal missing id")
	}
	if s.Symbol == "" {
		return fmt.Errorf("signal %s missing symbol", s.ID)
	}
	if s.Score < 0 || s.Score > 100 {
		return fmt.Errorf("signal %s score %.2f out of range [0,100]", s.ID, s.Score)
	}
	return nil
}
