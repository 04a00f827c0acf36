// Package track implements the in-memory signal registry.
//
// The registry:
//   - Seeds a baseline from the REST signal list on startup
//   - Applies live signals as they arrive from the stream
//   - Tracks first/last-seen times and update counts per signal
//   - Serves score and risk summaries for periodic stats logging
package track
