package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"healthdash-sync/internal/config"
	"healthdash-sync/internal/database"
	"healthdash-sync/internal/intervals"
	syncservice "healthdash-sync/internal/sync"
)

const userID = 1

func main() {
	// Disable structured logging for CLI
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors
	})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	if command == "help" {
		printUsage()
		return
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	client, err := intervals.NewClient(cfg.IntervalsAPIKey, cfg.IntervalsAthleteID, cfg.IntervalsBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	service := syncservice.NewService(db, client, userID)

	switch command {
	case "test":
		handleTest(ctx, client)
	case "daily":
		handleDaily(ctx, service)
	case "historical":
		handleHistorical(ctx, service)
	case "status":
		handleStatus(db)
	case "bests":
		handleBests(service)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`healthdash-sync CLI - Sync Management

Usage:
  cli <command> [options]

Commands:
  test               Verify Intervals.icu credentials
  daily              Run a daily sync
  historical [years] Back-fill N years of history (default 5)
  status             Show sync status per source
  bests              Analyze personal bests from stored history
  help               Show this help message

Examples:
  cli test
  cli daily
  cli historical 3
  cli status

Environment Variables Required:
  INTERVALS_API_KEY      - Intervals.icu API key
  INTERVALS_ATHLETE_ID   - Intervals.icu athlete ID
  DATABASE_PATH          - SQLite database path (default: ./data/health.db)`)
}

func handleTest(ctx context.Context, client *intervals.Client) {
	fmt.Println("Testing connection to Intervals.icu...")

	athlete, err := client.FetchAthlete(ctx)
	if err != nil {
		if intervals.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "Error: Credentials rejected by Intervals.icu")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("✓ Connected successfully!")
	fmt.Printf("  Athlete: %s (ID %d)\n", athlete.Name, athlete.ID)
	if athlete.FTP != nil {
		fmt.Printf("  FTP: %.0f watts\n", *athlete.FTP)
	}
}

func handleDaily(ctx context.Context, service *syncservice.Service) {
	fmt.Println("Running daily sync...")

	if err := service.DailySync(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Daily sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Daily sync completed")
}

func handleHistorical(ctx context.Context, service *syncservice.Service) {
	years := 5
	if len(os.Args) >= 3 {
		parsed, err := strconv.Atoi(os.Args[2])
		if err != nil || parsed <= 0 {
			fmt.Fprintf(os.Stderr, "Error: Invalid year count: %s\n", os.Args[2])
			os.Exit(1)
		}
		years = parsed
	}

	fmt.Printf("Running historical sync covering %d year(s)...\n", years)

	if err := service.SyncHistorical(ctx, years); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Historical sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Historical sync completed")
}

func handleStatus(db *database.DB) {
	statuses, err := db.ListSyncStatuses()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to get sync status: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sync status for %d source(s):\n\n", len(statuses))
	for _, s := range statuses {
		fmt.Printf("%s: %s\n", s.Source, s.LastSyncStatus)
		if s.LastSyncTime != nil {
			fmt.Printf("  Last sync: %s\n", *s.LastSyncTime)
		}
		if s.LastSyncError != nil {
			fmt.Printf("  Error: %s\n", *s.LastSyncError)
		}
		if s.FailedChunks > 0 {
			fmt.Printf("  Failed chunks: %d\n", s.FailedChunks)
		}
		fmt.Println()
	}
}

func handleBests(service *syncservice.Service) {
	bests, err := service.AnalyzeBests()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to analyze bests: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Personal bests:")
	if bests.Run5KBest != nil {
		fmt.Printf("  5k: %ds (%s)\n", bests.Run5KBest.Time, bests.Run5KBest.Date)
	}
	if bests.Run10KBest != nil {
		fmt.Printf("  10k: %ds (%s)\n", bests.Run10KBest.Time, bests.Run10KBest.Date)
	}
	if bests.FTPHigh != nil {
		fmt.Printf("  Best hour power: %.0f watts (%s)\n", bests.FTPHigh.Watts, bests.FTPHigh.Date)
	}
	if bests.VO2MaxHigh != nil {
		fmt.Printf("  VO2max: %.1f (%s)\n", bests.VO2MaxHigh.Value, bests.VO2MaxHigh.Date)
	}
	if bests.Run5KBest == nil && bests.Run10KBest == nil && bests.FTPHigh == nil && bests.VO2MaxHigh == nil {
		fmt.Println("  No qualifying activities found yet.")
	}
}
