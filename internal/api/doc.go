// Package api provides the REST client for the ORACLE Alpha signal API.
//
// Endpoints:
//   - GET  /health, /api/stats, /api/leaderboard, /api/gainers
//   - GET  /api/signals (query: minScore, limit), /api/signals/{id}
//   - GET  /api/subscription/tiers, /api/subscription/{wallet}
//   - GET  /api/demo/status
//   - POST /api/demo/start, /api/demo/stop, /api/demo/seed
//
// The client never retries. Transport and HTTP failures surface immediately
// to the caller; live updates come from the stream package instead.
package api
