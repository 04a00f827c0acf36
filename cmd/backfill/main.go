// backfill imports signals from the REST API into the Postgres archive
// in one shot, for bootstrapping an empty archive. -seed asks a demo
// server to generate signals first.
// Usage: go run ./cmd/backfill -config configs/recorder.yaml -limit 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dynamolabs/oracle-alpha/internal/api"
	"github.com/dynamolabs/oracle-alpha/internal/archive"
	"github.com/dynamolabs/oracle-alpha/internal/auth"
	"github.com/dynamolabs/oracle-alpha/internal/config"
	"github.com/dynamolabs/oracle-alpha/internal/database"
	"github.com/dynamolabs/oracle-alpha/internal/queue"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/recorder.yaml", "path to config file")
	minScore := flag.Int("min-score", 0, "minimum score filter (0 = no filter)")
	limit := flag.Int("limit", 500, "maximum signals to import")
	seed := flag.Int("seed", 0, "ask the demo generator for this many signals first")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if !cfg.Archive.Enabled {
		logger.Error("archive must be enabled in the config for backfill")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cred, err := auth.Resolve(cfg.API.Token, cfg.API.TokenFile)
	if err != nil {
		logger.Error("failed to resolve credential", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithCredential(cred),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)

	if *seed > 0 {
		if _, err := client.SeedDemo(ctx, *seed); err != nil {
			logger.Error("failed to seed demo signals", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded demo signals", "count", *seed)
	}

	resp, err := client.ListSignals(ctx, api.ListSignalsOptions{MinScore: *minScore, Limit: *limit})
	if err != nil {
		logger.Error("failed to list signals", "error", err)
		os.Exit(1)
	}
	if len(resp.Signals) == 0 {
		logger.Info("nothing to import")
		return
	}

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := archive.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure archive schema", "error", err)
		os.Exit(1)
	}

	buf := queue.New[archive.Record](len(resp.Signals))
	writer := archive.NewWriter(archive.Config{
		BatchSize:     cfg.Archive.BatchSize,
		FlushInterval: cfg.Archive.FlushInterval,
	}, buf, pool, logger)
	if err := writer.Start(ctx); err != nil {
		logger.Error("failed to start archive writer", "error", err)
		os.Exit(1)
	}

	now := time.Now()
	for _, sig := range resp.Signals {
		buf.Push(archive.Record{Signal: sig, Source: archive.SourceBackfill, ReceivedAt: now})
	}

	// Stop drains the queue and issues the final flush.
	if err := writer.Stop(ctx); err != nil {
		logger.Warn("archive writer stop", "error", err)
	}

	stats := writer.Stats()
	logger.Info("backfill complete",
		"run_id", writer.RunID(),
		"listed", len(resp.Signals),
		"inserted", stats.Inserts,
		"conflicts", stats.Conflicts,
		"errors", stats.Errors,
	)
	if stats.Errors > 0 {
		os.Exit(1)
	}
}
