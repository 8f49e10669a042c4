package sync

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"healthdash-sync/internal/database"
	"healthdash-sync/internal/intervals"
	"healthdash-sync/internal/metrics"
)

// SourceIntervalsICU is the sync-status source name for the bridge API
const SourceIntervalsICU = "intervals_icu"

// dailyWindowDays is the trailing window for incremental syncs, wide enough
// to catch upstream back-fills of recent days.
const dailyWindowDays = 7

// activityTypeMap maps the upstream activity vocabulary to the internal enum.
// Unrecognized types map to "other".
var activityTypeMap = map[string]string{
	"Run":            "run",
	"Ride":           "cycle",
	"VirtualRide":    "cycle",
	"WeightTraining": "strength",
	"Yoga":           "yoga",
	"Walk":           "walk",
	"Hike":           "hike",
	"Swim":           "swim",
	"Other":          "other",
}

// Service orchestrates sync runs: fetch from the bridge API, transform,
// upsert into the store, and record the outcome per source.
type Service struct {
	db     *database.DB
	client *intervals.Client
	userID int64
	logger *slog.Logger
}

// NewService creates a sync service. The user and client are injected
// explicitly; the service holds no process-wide state.
func NewService(db *database.DB, client *intervals.Client, userID int64) *Service {
	return &Service{
		db:     db,
		client: client,
		userID: userID,
		logger: slog.Default(),
	}
}

// SyncWellness fetches wellness data for the date range and upserts it.
// The whole batch is applied in one transaction so readers never observe a
// partially applied chunk. Returns the number of records upserted.
func (s *Service) SyncWellness(ctx context.Context, start, end time.Time) (int, error) {
	records, err := s.client.FetchWellness(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch wellness data: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	synced := 0
	for i := range records {
		r := &records[i]
		if err := r.Validate(); err != nil {
			s.logger.Warn("Skipping malformed wellness record", "error", err)
			metrics.RecordsSkippedTotal.WithLabelValues(metrics.RecordKindWellness).Inc()
			continue
		}

		b := &database.Biometric{
			UserID:               s.userID,
			Date:                 r.Date,
			HRVRMSSD:             nonZero(r.HRV),
			RestingHR:            nonZero(r.RestingHR),
			SleepDurationMinutes: sleepMinutes(r.SleepSecs),
			SleepScore:           nonZero(r.SleepScore),
			VO2Max:               nonZero(r.VO2Max),
			BodyBattery:          nonZero(r.BodyBattery),
			WeightKg:             nonZero(r.Weight),
			BodyFatPct:           nonZero(r.BodyFatPct),
			Source:               SourceIntervalsICU,
		}
		if err := database.UpsertBiometricTx(tx, b); err != nil {
			return 0, err
		}
		synced++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit wellness batch: %w", err)
	}

	metrics.RecordsUpsertedTotal.WithLabelValues(metrics.RecordKindWellness).Add(float64(synced))
	s.logger.Info("Synced wellness records",
		"count", synced,
		"start", start.Format(intervals.DateFormat),
		"end", end.Format(intervals.DateFormat))
	return synced, nil
}

// SyncActivities fetches activities for the date range and upserts them,
// applying the batch in one transaction. Returns the number upserted.
func (s *Service) SyncActivities(ctx context.Context, start, end time.Time) (int, error) {
	activities, err := s.client.FetchActivities(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch activities: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	synced := 0
	for i := range activities {
		p := &activities[i]
		if err := p.Validate(); err != nil {
			s.logger.Warn("Skipping malformed activity", "error", err)
			metrics.RecordsSkippedTotal.WithLabelValues(metrics.RecordKindActivity).Inc()
			continue
		}

		a := &database.Activity{
			UserID:              s.userID,
			ExternalID:          p.ID,
			ActivityType:        mapActivityType(p.Type),
			StartTime:           p.StartDateLocal,
			DurationSeconds:     p.DurationSeconds(),
			DistanceMeters:      nonZero(p.Distance),
			ElevationGainMeters: nonZero(p.TotalElevationGain),
			AvgHR:               nonZero(p.AverageHR),
			MaxHR:               nonZero(p.MaxHR),
			AvgPower:            nonZero(p.AveragePower),
			NormalizedPower:     nonZero(p.NormalizedPower),
			TrainingStressScore: nonZero(p.TrainingLoad),
			IntensityFactor:     nonZero(p.Intensity),
			Calories:            nonZero(p.Calories),
			AvgCadence:          nonZero(p.AverageCadence),
			Name:                p.Name,
			Description:         p.Description,
			Source:              SourceIntervalsICU,
		}
		if err := database.UpsertActivityTx(tx, a); err != nil {
			return 0, err
		}
		synced++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit activity batch: %w", err)
	}

	metrics.RecordsUpsertedTotal.WithLabelValues(metrics.RecordKindActivity).Add(float64(synced))
	s.logger.Info("Synced activities",
		"count", synced,
		"start", start.Format(intervals.DateFormat),
		"end", end.Format(intervals.DateFormat))
	return synced, nil
}

// DailySync syncs the trailing 7-day window: wellness, then activities, then
// an unconditional status write. On any failure the run aborts, the status
// row records the error, and the error propagates to the caller.
func (s *Service) DailySync(ctx context.Context) error {
	start := time.Now()
	metrics.SyncActive.Set(1)
	defer metrics.SyncActive.Set(0)
	defer func() {
		metrics.SyncRunDuration.WithLabelValues(metrics.SyncKindDaily).Observe(time.Since(start).Seconds())
	}()

	windowEnd := time.Now()
	windowStart := windowEnd.AddDate(0, 0, -dailyWindowDays)

	s.logger.Info("Running daily sync",
		"start", windowStart.Format(intervals.DateFormat),
		"end", windowEnd.Format(intervals.DateFormat))

	if err := s.syncWindow(ctx, windowStart, windowEnd); err != nil {
		s.logger.Error("Daily sync failed", "error", err)
		s.recordOutcome(database.SyncStatusError, err.Error(), 0)
		metrics.SyncRunsTotal.WithLabelValues(metrics.SyncKindDaily, metrics.ResultError).Inc()
		return err
	}

	// The data is committed at this point; a failed status write still counts
	// the run before the error surfaces.
	if err := s.db.RecordSyncOutcome(SourceIntervalsICU, database.SyncStatusSuccess, nil, 0); err != nil {
		s.logger.Error("Daily sync completed but status write failed", "error", err)
		metrics.SyncRunsTotal.WithLabelValues(metrics.SyncKindDaily, metrics.ResultError).Inc()
		return err
	}

	metrics.SyncRunsTotal.WithLabelValues(metrics.SyncKindDaily, metrics.ResultSuccess).Inc()
	s.logger.Info("Daily sync completed")
	return nil
}

// SyncHistorical back-fills yearsBack years of data, walking the span in
// calendar-month chunks. A failed chunk is logged and counted, never
// retried, and never stops the walk. The final status is success with the
// failure count recorded alongside it.
func (s *Service) SyncHistorical(ctx context.Context, yearsBack int) error {
	if yearsBack <= 0 {
		yearsBack = 5
	}

	start := time.Now()
	metrics.SyncActive.Set(1)
	defer metrics.SyncActive.Set(0)
	defer func() {
		metrics.SyncRunDuration.WithLabelValues(metrics.SyncKindHistorical).Observe(time.Since(start).Seconds())
	}()

	windowEnd := time.Now()
	windowStart := windowEnd.AddDate(0, 0, -yearsBack*365)
	chunks := intervals.MonthChunks(windowStart, windowEnd)

	s.logger.Info("Starting historical sync",
		"start", windowStart.Format(intervals.DateFormat),
		"end", windowEnd.Format(intervals.DateFormat),
		"chunks", len(chunks))

	failed := 0
	for _, chunk := range chunks {
		if ctx.Err() != nil {
			msg := fmt.Sprintf("historical sync canceled: %v", ctx.Err())
			s.recordOutcome(database.SyncStatusError, msg, failed)
			metrics.SyncRunsTotal.WithLabelValues(metrics.SyncKindHistorical, metrics.ResultError).Inc()
			return ctx.Err()
		}

		if err := s.syncWindow(ctx, chunk.Start, chunk.End); err != nil {
			s.logger.Error("Chunk sync failed, continuing",
				"start", chunk.Start.Format(intervals.DateFormat),
				"end", chunk.End.Format(intervals.DateFormat),
				"error", err)
			metrics.SyncChunksTotal.WithLabelValues(metrics.ResultFailure).Inc()
			failed++
			continue
		}
		metrics.SyncChunksTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}

	// Every chunk was attempted; the run itself counts as a success even when
	// some chunks failed. The failure count is recorded so the distinction
	// stays observable.
	var errMsg *string
	if failed > 0 {
		msg := fmt.Sprintf("%d of %d chunks failed", failed, len(chunks))
		errMsg = &msg
	}
	if err := s.db.RecordSyncOutcome(SourceIntervalsICU, database.SyncStatusSuccess, errMsg, failed); err != nil {
		s.logger.Error("Historical sync completed but status write failed", "error", err)
		metrics.SyncRunsTotal.WithLabelValues(metrics.SyncKindHistorical, metrics.ResultError).Inc()
		return err
	}

	metrics.SyncRunsTotal.WithLabelValues(metrics.SyncKindHistorical, metrics.ResultSuccess).Inc()
	s.logger.Info("Historical sync completed", "chunks", len(chunks), "failed_chunks", failed)
	return nil
}

func (s *Service) syncWindow(ctx context.Context, start, end time.Time) error {
	if _, err := s.SyncWellness(ctx, start, end); err != nil {
		return err
	}
	if _, err := s.SyncActivities(ctx, start, end); err != nil {
		return err
	}
	return nil
}

func (s *Service) recordOutcome(status, errMsg string, failedChunks int) {
	var msgPtr *string
	if errMsg != "" {
		msgPtr = &errMsg
	}
	if err := s.db.RecordSyncOutcome(SourceIntervalsICU, status, msgPtr, failedChunks); err != nil {
		s.logger.Error("Failed to record sync outcome", "error", err)
	}
}

// BestTime is a best effort expressed as a duration on a date
type BestTime struct {
	Time int64  `json:"time"`
	Date string `json:"date"`
}

// BestPower is a best effort expressed in watts on a date
type BestPower struct {
	Watts float64 `json:"watts"`
	Date  string  `json:"date"`
}

// BestValue is a best recorded measurement on a date
type BestValue struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// Bests summarizes historical personal bests derived from accumulated sync
// history. Absent bests are omitted.
type Bests struct {
	Run5KBest  *BestTime  `json:"run5kBest,omitempty"`
	Run10KBest *BestTime  `json:"run10kBest,omitempty"`
	FTPHigh    *BestPower `json:"ftpHigh,omitempty"`
	VO2MaxHigh *BestValue `json:"vo2MaxHigh,omitempty"`
}

// AnalyzeBests extracts personal bests from the stored history: fastest
// completed 5k and 10k runs within tight qualifying bands, highest sustained
// power over a full-hour ride, and highest recorded VO2max.
func (s *Service) AnalyzeBests() (*Bests, error) {
	bests := &Bests{}

	run5k, err := s.db.BestRunInBand(s.userID, 4900, 5100)
	if err != nil {
		return nil, err
	}
	if run5k != nil {
		bests.Run5KBest = &BestTime{Time: run5k.DurationSeconds, Date: run5k.StartTime}
	}

	run10k, err := s.db.BestRunInBand(s.userID, 9900, 10100)
	if err != nil {
		return nil, err
	}
	if run10k != nil {
		bests.Run10KBest = &BestTime{Time: run10k.DurationSeconds, Date: run10k.StartTime}
	}

	ftp, err := s.db.BestHourRideByNormalizedPower(s.userID)
	if err != nil {
		return nil, err
	}
	if ftp != nil {
		bests.FTPHigh = &BestPower{Watts: ftp.Watts, Date: ftp.StartTime}
	}

	vo2max, err := s.db.HighestVO2Max(s.userID)
	if err != nil {
		return nil, err
	}
	if vo2max != nil {
		bests.VO2MaxHigh = &BestValue{Value: vo2max.Value, Date: vo2max.Date}
	}

	return bests, nil
}

func mapActivityType(upstreamType string) string {
	if mapped, ok := activityTypeMap[upstreamType]; ok {
		return mapped
	}
	return "other"
}

// nonZero treats a zero reading as absent, matching the upstream convention
// of omitting rather than zeroing missing measurements.
func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

func sleepMinutes(secs *int64) *int64 {
	if secs == nil || *secs == 0 {
		return nil
	}
	m := int64(math.Round(float64(*secs) / 60))
	return &m
}
