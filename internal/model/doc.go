// Package model defines shared data types used across the ORACLE Alpha client.
//
// Conventions:
//   - Scores: float64, 0-100
//   - Timestamps: time.Time, RFC 3339 on the wire, UTC in storage
//   - IDs: opaque server-assigned strings
package model
