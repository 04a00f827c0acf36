// Package backfill implements the gap-repair poller.
//
// The poller:
//   - Fetches the signal list over REST on a fixed interval
//   - Covers stream gaps left by reconnects (duplicates die at the
//     archive's conflict clause)
//   - Skips a tick when the previous poll is still running
//   - Hands results to a handler with source="backfill" semantics
package backfill
