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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"healthdash-sync/internal/config"
	"healthdash-sync/internal/database"
	"healthdash-sync/internal/handlers"
	"healthdash-sync/internal/intervals"
	"healthdash-sync/internal/metrics"
	syncservice "healthdash-sync/internal/sync"
)

// The store is single-user; every sync and query runs against this profile.
const defaultUserID = 1

func main() {
	// Define CLI flags
	testConnection := flag.Bool("test-connection", false, "Verify bridge API credentials and exit")
	dailySync := flag.Bool("daily-sync", false, "Run a daily sync and exit")
	historicalSync := flag.Int("historical-sync", 0, "Run a historical sync covering N years and exit")

	flag.Parse()

	// Check if any CLI command was requested
	if *testConnection || *dailySync || *historicalSync > 0 {
		runCLI(*testConnection, *dailySync, *historicalSync)
		return
	}

	// Otherwise, start the server
	runServer()
}

func runCLI(testConnection, dailySync bool, historicalYears int) {
	// Disable structured logging for CLI
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors
	})))

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

	service := syncservice.NewService(db, client, defaultUserID)

	switch {
	case testConnection:
		handleTestConnection(ctx, client)
	case dailySync:
		handleDailySync(ctx, service)
	case historicalYears > 0:
		handleHistoricalSync(ctx, service, historicalYears)
	}
}

func handleTestConnection(ctx context.Context, client *intervals.Client) {
	athlete, err := client.FetchAthlete(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to Intervals.icu: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Connected to Intervals.icu as %s (athlete %d)\n", athlete.Name, athlete.ID)
}

func handleDailySync(ctx context.Context, service *syncservice.Service) {
	fmt.Println("Running daily sync...")
	if err := service.DailySync(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Daily sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Daily sync completed")
}

func handleHistoricalSync(ctx context.Context, service *syncservice.Service, years int) {
	fmt.Printf("Running historical sync covering %d year(s)...\n", years)
	if err := service.SyncHistorical(ctx, years); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Historical sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Historical sync completed")
}

func runServer() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting healthdash-sync server",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"log_level", cfg.LogLevel)

	// Open database
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	logger.Info("Database opened successfully")

	client, err := intervals.NewClient(cfg.IntervalsAPIKey, cfg.IntervalsAthleteID, cfg.IntervalsBaseURL)
	if err != nil {
		logger.Error("Failed to create bridge API client", "error", err)
		os.Exit(1)
	}

	service := syncservice.NewService(db, client, defaultUserID)
	runner := syncservice.NewRunner(ctx, service)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handlers.NewServer(db, client, service, runner, defaultUserID).Router(),
		ReadTimeout:  35 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.MetricsHost, cfg.MetricsPort),
			Handler: metricsMux,
		}

		g.Go(func() error {
			logger.Info("Metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			logger.Info("Starting store stats collector")
			metrics.StartStoreStatsCollector(gctx, db, 15*time.Second)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		runner.CancelAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Metrics server shutdown failed", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
