// recorder runs the full ORACLE Alpha ingestion pipeline: live stream
// subscription with automatic reconnects, periodic REST backfill, an
// in-memory signal tracker, batched Postgres archival, and Prometheus
// metrics.
// Usage: go run ./cmd/recorder -config configs/recorder.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dynamolabs/oracle-alpha/internal/api"
	"github.com/dynamolabs/oracle-alpha/internal/archive"
	"github.com/dynamolabs/oracle-alpha/internal/auth"
	"github.com/dynamolabs/oracle-alpha/internal/backfill"
	"github.com/dynamolabs/oracle-alpha/internal/config"
	"github.com/dynamolabs/oracle-alpha/internal/database"
	"github.com/dynamolabs/oracle-alpha/internal/metrics"
	"github.com/dynamolabs/oracle-alpha/internal/model"
	"github.com/dynamolabs/oracle-alpha/internal/queue"
	"github.com/dynamolabs/oracle-alpha/internal/stream"
	"github.com/dynamolabs/oracle-alpha/internal/track"
	"github.com/dynamolabs/oracle-alpha/internal/version"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/recorder.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting recorder",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Metrics recorder; the HTTP endpoint is optional, the collectors
	// always run.
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		metricsServer = metrics.Serve(addr, cfg.Metrics.Path, reg)
		logger.Info("metrics server started", "addr", addr, "path", cfg.Metrics.Path)
	}

	// API client
	cred, err := auth.Resolve(cfg.API.Token, cfg.API.TokenFile)
	if err != nil {
		logger.Error("failed to resolve credential", "error", err)
		os.Exit(1)
	}
	logger.Info("api client ready", "base_url", cfg.API.BaseURL, "token", cred.Redacted())

	client := api.NewClient(cfg.API.BaseURL,
		api.WithCredential(cred),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithMetrics(rec),
	)

	// Archive: database pool, schema, queue, batch writer
	var (
		buf    *queue.Buffer[archive.Record]
		writer *archive.Writer
	)
	if cfg.Archive.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

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

		buf = queue.New[archive.Record](cfg.Archive.QueueSize)
		writer = archive.NewWriter(archive.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			Observer:      rec,
		}, buf, pool, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start archive writer", "error", err)
			os.Exit(1)
		}
		logger.Info("archive writer started", "run_id", writer.RunID())
	}

	// Tracker, seeded from the REST listing. A failed seed is not fatal;
	// the live stream fills the registry as signals arrive.
	tracker := track.NewRegistry(logger)
	if _, err := tracker.Sync(ctx, client, api.ListSignalsOptions{Limit: cfg.Backfill.Limit}); err != nil {
		logger.Warn("baseline sync failed, continuing with live stream", "error", err)
	}

	// Stream subscriber
	streamURL := cfg.Stream.URL
	if streamURL == "" {
		streamURL, err = stream.StreamURL(cfg.API.BaseURL)
		if err != nil {
			logger.Error("failed to derive stream url", "error", err)
			os.Exit(1)
		}
	}

	connCfg := stream.ConnConfig{
		URL:               streamURL,
		HandshakeTimeout:  cfg.Stream.HandshakeTimeout,
		KeepaliveInterval: cfg.Stream.KeepaliveInterval,
		StaleTimeout:      cfg.Stream.StaleTimeout,
		BufferSize:        cfg.Stream.BufferSize,
	}

	sub, err := stream.NewSubscriber(stream.SubscriberConfig{
		CloseRetryDelay: cfg.Stream.CloseRetryDelay,
		ErrorRetryDelay: cfg.Stream.ErrorRetryDelay,
		Metrics:         rec,
	}, stream.Dialer(connCfg, logger), pipelineHandler(tracker, buf, logger), logger)
	if err != nil {
		logger.Error("failed to create subscriber", "error", err)
		os.Exit(1)
	}
	if err := sub.Start(ctx); err != nil {
		logger.Error("failed to start subscriber", "error", err)
		os.Exit(1)
	}
	logger.Info("subscriber started", "url", streamURL)

	// Backfill poller covers stream gaps; duplicates die at the archive's
	// conflict clause.
	var poller *backfill.Poller
	if cfg.Backfill.Enabled {
		poller = backfill.New(backfill.Config{
			Interval: cfg.Backfill.Interval,
			MinScore: cfg.Backfill.MinScore,
			Limit:    cfg.Backfill.Limit,
			Timeout:  cfg.API.Timeout,
		}, client, backfill.HandlerFunc(func(sig model.Signal) error {
			tracker.Apply(sig)
			if buf != nil {
				buf.Push(archive.Record{Signal: sig, Source: archive.SourceBackfill, ReceivedAt: time.Now()})
			}
			return nil
		}), logger)
		if err := poller.Start(ctx); err != nil {
			logger.Error("failed to start backfill poller", "error", err)
			os.Exit(1)
		}
	}

	// Stats ticker
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logStats(logger, rec, sub, tracker, writer, buf, poller)
			}
		}
	}()

	logger.Info("recorder running",
		"archive", cfg.Archive.Enabled,
		"backfill", cfg.Backfill.Enabled,
		"metrics", cfg.Metrics.Enabled,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Reverse startup order: stop producers before the writer drains.
	if poller != nil {
		if err := poller.Stop(shutdownCtx); err != nil {
			logger.Warn("backfill poller stop", "error", err)
		}
	}
	if err := sub.Stop(shutdownCtx); err != nil {
		logger.Warn("subscriber stop", "error", err)
	}
	if writer != nil {
		if err := writer.Stop(shutdownCtx); err != nil {
			logger.Warn("archive writer stop", "error", err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}

	logStats(logger, rec, sub, tracker, writer, buf, poller)
	logger.Info("recorder stopped")
}

// newLogger builds the slog handler described by the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// pipelineHandler routes dispatched stream events into the tracker and,
// when archiving is enabled, the archive queue.
func pipelineHandler(tracker *track.Registry, buf *queue.Buffer[archive.Record], logger *slog.Logger) stream.Handler {
	return stream.HandlerFuncs{
		OnSignal: func(ctx context.Context, sig model.Signal) {
			tracker.Apply(sig)
			if buf != nil {
				if !buf.Push(archive.Record{Signal: sig, Source: archive.SourceStream, ReceivedAt: time.Now()}) {
					logger.Warn("archive queue rejected signal", "symbol", sig.Symbol)
				}
			}
		},
		OnHistory: func(ctx context.Context, count int) {
			logger.Info("history batch received", "count", count)
		},
	}
}

func logStats(logger *slog.Logger, rec *metrics.Recorder, sub *stream.Subscriber, tracker *track.Registry, writer *archive.Writer, buf *queue.Buffer[archive.Record], poller *backfill.Poller) {
	subStats := sub.Stats()
	attrs := []any{
		"connects", subStats.Connects,
		"signals", subStats.Signals,
		"closed_retries", subStats.ClosedRetries,
		"error_retries", subStats.ErrorRetries,
		"tracked", tracker.Len(),
	}
	if buf != nil {
		depth := buf.Len()
		rec.SetQueueDepth(depth)
		attrs = append(attrs, "queue_depth", depth)
	}
	if writer != nil {
		ws := writer.Stats()
		attrs = append(attrs, "archived", ws.Inserts, "conflicts", ws.Conflicts, "write_errors", ws.Errors)
	}
	if poller != nil {
		ps := poller.Stats()
		attrs = append(attrs, "polls", ps.Polls, "poll_skips", ps.Skipped)
	}
	logger.Info("stats", attrs...)
}
