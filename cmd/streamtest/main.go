// streamtest subscribes to the ORACLE Alpha signal stream and prints
// dispatched events to the console.
// Usage: go run ./cmd/streamtest -config configs/recorder.yaml -duration 2m
//
// A .env file is honored; ORACLE_API_URL supplies the base URL when no
// config file exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dynamolabs/oracle-alpha/internal/config"
	"github.com/dynamolabs/oracle-alpha/internal/model"
	"github.com/dynamolabs/oracle-alpha/internal/stream"
	"github.com/dynamolabs/oracle-alpha/internal/track"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/recorder.yaml", "path to config file")
	streamURL := flag.String("url", "", "stream URL override (ws://host/ws)")
	duration := flag.Duration("duration", 0, "stop after this long (0 = run until interrupted)")
	verbose := flag.Bool("verbose", false, "log at debug level")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	url := *streamURL
	if url == "" {
		url = cfg.Stream.URL
	}
	if url == "" {
		url, err = stream.StreamURL(cfg.API.BaseURL)
		if err != nil {
			logger.Error("derive stream url", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()
	if *duration > 0 {
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(*duration):
				logger.Info("duration elapsed", "duration", *duration)
				cancel()
			}
		}()
	}

	tracker := track.NewRegistry(logger)

	handler := stream.HandlerFuncs{
		OnSignal: func(ctx context.Context, sig model.Signal) {
			tracker.Apply(sig)
			fmt.Printf("[SIGNAL] symbol=%s score=%.1f risk=%s rec=%q\n",
				sig.Symbol, sig.Score, sig.RiskLevel, sig.Recommendation)
		},
		OnHistory: func(ctx context.Context, count int) {
			fmt.Printf("[HISTORY] %d signals\n", count)
		},
	}

	connCfg := stream.DefaultConnConfig()
	connCfg.URL = url
	connCfg.HandshakeTimeout = cfg.Stream.HandshakeTimeout
	connCfg.KeepaliveInterval = cfg.Stream.KeepaliveInterval
	connCfg.StaleTimeout = cfg.Stream.StaleTimeout
	connCfg.BufferSize = cfg.Stream.BufferSize

	sub, err := stream.NewSubscriber(stream.SubscriberConfig{
		CloseRetryDelay: cfg.Stream.CloseRetryDelay,
		ErrorRetryDelay: cfg.Stream.ErrorRetryDelay,
	}, stream.Dialer(connCfg, logger), handler, logger)
	if err != nil {
		logger.Error("create subscriber", "error", err)
		os.Exit(1)
	}

	logger.Info("subscribing", "url", url)
	if err := sub.Start(ctx); err != nil {
		logger.Error("start subscriber", "error", err)
		os.Exit(1)
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := sub.Stats()
				logger.Info("stats",
					"connects", stats.Connects,
					"signals", stats.Signals,
					"history_batches", stats.HistoryBatches,
					"closed_retries", stats.ClosedRetries,
					"error_retries", stats.ErrorRetries,
					"tracked", tracker.Len(),
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	if err := sub.Stop(shutdownCtx); err != nil {
		logger.Warn("subscriber stop", "error", err)
	}

	stats := sub.Stats()
	summary := tracker.Stats()
	logger.Info("final stats",
		"connects", stats.Connects,
		"signals", stats.Signals,
		"history_batches", stats.HistoryBatches,
		"history_signals", stats.HistorySignals,
		"unknown", stats.Unknown,
		"malformed", stats.Malformed,
		"tracked", summary.Total,
		"top_symbol", summary.TopSymbol,
		"top_score", summary.TopScore,
	)
}
