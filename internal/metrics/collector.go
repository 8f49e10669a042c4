package metrics

import (
	"context"
	"log/slog"
	"time"
)

// DB is the store surface the collector samples
type DB interface {
	CountRows(table string) (int, error)
	LastSuccessfulSyncTimes() (map[string]time.Time, error)
}

var collectedTables = []string{"biometrics", "activities"}

// StartStoreStatsCollector periodically publishes row counts and last
// successful sync timestamps. Blocks until ctx is done.
func StartStoreStatsCollector(ctx context.Context, db DB, interval time.Duration) {
	logger := slog.Default()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect once immediately
	collectStoreStats(db, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Store stats collector stopping")
			return
		case <-ticker.C:
			collectStoreStats(db, logger)
		}
	}
}

func collectStoreStats(db DB, logger *slog.Logger) {
	for _, table := range collectedTables {
		count, err := db.CountRows(table)
		if err != nil {
			logger.Error("Failed to count rows", "table", table, "error", err)
			continue
		}
		StoreRows.WithLabelValues(table).Set(float64(count))
	}

	times, err := db.LastSuccessfulSyncTimes()
	if err != nil {
		logger.Error("Failed to get last sync times", "error", err)
		return
	}
	for source, t := range times {
		LastSuccessfulSyncTimestamp.WithLabelValues(source).Set(float64(t.Unix()))
	}
}
