// Package archive persists signals to PostgreSQL in batches.
//
// Rows land in the signals table:
//
//	id              TEXT PRIMARY KEY   -- server id, or generated when absent
//	symbol          TEXT
//	name            TEXT
//	token           TEXT
//	score           DOUBLE PRECISION
//	risk_level      TEXT
//	recommendation  TEXT
//	created_at      TIMESTAMPTZ        -- NULL when the feed omitted it
//	received_at     TIMESTAMPTZ
//	source          TEXT               -- stream, history, or backfill
//	run_id          TEXT               -- identifies the recorder run
//
// Writes are append-only with ON CONFLICT (id) DO NOTHING, so replaying
// a feed or backfilling over live data never duplicates rows that carry
// a server-assigned id.
package archive
