// Package metrics exposes Prometheus instrumentation for the recorder
// pipeline.
//
// A single Recorder implements the metric hooks declared by the api,
// stream, and archive packages:
//   - REST request counts and latencies by operation and status class
//   - Stream connects, reconnects by reason, and messages by type
//   - Archive flush outcomes, durations, and write errors
//   - Queue depth and connection state gauges
package metrics
