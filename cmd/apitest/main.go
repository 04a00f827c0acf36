// apitest walks the full ORACLE Alpha REST surface against a live server.
// Usage: go run ./cmd/apitest -url http://localhost:3900
//
// A .env file is honored. Relevant environment variables:
//
//	ORACLE_API_URL   - API base URL (overridden by -url)
//	ORACLE_API_TOKEN - bearer token for authenticated endpoints
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/dynamolabs/oracle-alpha/internal/api"
	"github.com/dynamolabs/oracle-alpha/internal/auth"
)

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("url", "", "API base URL (defaults to ORACLE_API_URL, then localhost)")
	token := flag.String("token", "", "bearer token (defaults to ORACLE_API_TOKEN)")
	tokenFile := flag.String("token-file", "", "path to a bearer token file")
	wallet := flag.String("wallet", "", "wallet address for the subscription status check")
	minScore := flag.Int("min-score", 70, "minimum score for the signal listing")
	limit := flag.Int("limit", 5, "signal listing page size")
	demoCycle := flag.Bool("demo-cycle", false, "run the demo start/status/seed/stop cycle")
	demoRate := flag.Int("demo-rate", 30, "signals per minute for the demo cycle")
	demoSeed := flag.Int("demo-seed", 5, "signals to seed during the demo cycle")
	flag.Parse()

	cred, err := auth.Resolve(*token, *tokenFile)
	if err != nil {
		log.Fatalf("resolve credential: %v", err)
	}

	client := api.NewClient(*baseURL, api.WithCredential(cred))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("=== Health ===")
	health, err := client.Health(ctx)
	if err != nil {
		log.Fatalf("Health failed: %v", err)
	}
	printJSON(health)

	fmt.Println("\n=== Stats ===")
	stats, err := client.Stats(ctx)
	if err != nil {
		log.Fatalf("Stats failed: %v", err)
	}
	printJSON(stats)

	fmt.Println("\n=== Leaderboard ===")
	board, err := client.Leaderboard(ctx)
	if err != nil {
		log.Fatalf("Leaderboard failed: %v", err)
	}
	printJSON(board)

	fmt.Println("\n=== Gainers ===")
	gainers, err := client.Gainers(ctx)
	if err != nil {
		log.Fatalf("Gainers failed: %v", err)
	}
	printJSON(gainers)

	fmt.Println("\n=== SubscriptionTiers ===")
	tiers, err := client.SubscriptionTiers(ctx)
	if err != nil {
		log.Fatalf("SubscriptionTiers failed: %v", err)
	}
	printJSON(tiers)

	fmt.Println("\n=== DemoStatus ===")
	demo, err := client.DemoStatus(ctx)
	if err != nil {
		log.Fatalf("DemoStatus failed: %v", err)
	}
	printJSON(demo)

	fmt.Printf("\n=== ListSignals (minScore=%d limit=%d) ===\n", *minScore, *limit)
	signals, err := client.ListSignals(ctx, api.ListSignalsOptions{MinScore: *minScore, Limit: *limit})
	if err != nil {
		log.Fatalf("ListSignals failed: %v", err)
	}
	fmt.Printf("Fetched %d signals (count: %d)\n", len(signals.Signals), signals.Count)
	for i, s := range signals.Signals {
		fmt.Printf("  %d. %s score=%.1f risk=%s %s\n", i+1, s.Symbol, s.Score, s.RiskLevel, s.Recommendation)
	}

	if len(signals.Signals) > 0 {
		id := signals.Signals[0].ID
		fmt.Printf("\n=== GetSignal (%s) ===\n", id)
		sig, err := client.GetSignal(ctx, id)
		if err != nil {
			log.Fatalf("GetSignal failed: %v", err)
		}
		printJSON(sig)
	}

	if *wallet != "" {
		fmt.Printf("\n=== SubscriptionStatus (%s) ===\n", *wallet)
		status, err := client.SubscriptionStatus(ctx, *wallet)
		if err != nil {
			log.Fatalf("SubscriptionStatus failed: %v", err)
		}
		printJSON(status)
	}

	if *demoCycle {
		runDemoCycle(ctx, client, *demoRate, *demoSeed)
	}

	fmt.Println("\n=== All API tests passed ===")
}

// runDemoCycle exercises the demo generator endpoints in order:
// start, status, seed, stop.
func runDemoCycle(ctx context.Context, client *api.Client, rate, seed int) {
	fmt.Printf("\n=== StartDemo (rate=%d/min) ===\n", rate)
	res, err := client.StartDemo(ctx, rate)
	if err != nil {
		log.Fatalf("StartDemo failed: %v", err)
	}
	printJSON(res)

	fmt.Println("\n=== DemoStatus (running) ===")
	status, err := client.DemoStatus(ctx)
	if err != nil {
		log.Fatalf("DemoStatus failed: %v", err)
	}
	printJSON(status)

	fmt.Printf("\n=== SeedDemo (count=%d) ===\n", seed)
	seeded, err := client.SeedDemo(ctx, seed)
	if err != nil {
		log.Fatalf("SeedDemo failed: %v", err)
	}
	printJSON(seeded)

	fmt.Println("\n=== StopDemo ===")
	stopped, err := client.StopDemo(ctx)
	if err != nil {
		log.Fatalf("StopDemo failed: %v", err)
	}
	printJSON(stopped)
}

func printJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("marshal response: %v", err)
	}
	fmt.Println(string(data))
}
