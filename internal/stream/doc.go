// Package stream implements the Stream Subscriber component.
//
// The Stream Subscriber:
//   - Maintains one WebSocket connection to the /ws endpoint
//   - Dispatches typed messages (signal, history) to a caller-supplied handler
//   - Reconnects unconditionally on failure, with a fixed short delay after an
//     orderly close and a fixed longer delay after any other error, until
//     explicitly stopped
//   - Never buffers or deduplicates; handler delivery follows arrival order
//     on a single connection, and nothing is replayed across reconnects
package stream
