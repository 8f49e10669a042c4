package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthdash-sync/internal/database"
	"healthdash-sync/internal/intervals"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

// fakeBridge serves canned wellness and activity responses and can be told
// to fail requests whose path contains a marker.
type fakeBridge struct {
	wellness   []intervals.WellnessRecord
	activities []intervals.ActivityPayload
	failPaths  []string

	wellnessCalls int
	activityCalls int
}

func (f *fakeBridge) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, marker := range f.failPaths {
			if strings.Contains(r.URL.Path, marker) {
				http.Error(w, "upstream failure", http.StatusInternalServerError)
				return
			}
		}
		switch {
		case strings.Contains(r.URL.Path, "/wellness/"):
			f.wellnessCalls++
			json.NewEncoder(w).Encode(f.wellness)
		case strings.Contains(r.URL.Path, "/activities"):
			f.activityCalls++
			json.NewEncoder(w).Encode(f.activities)
		default:
			json.NewEncoder(w).Encode(intervals.Athlete{ID: 1, Name: "Adam"})
		}
	})
}

func setupService(t *testing.T, bridge *fakeBridge) (*Service, *database.DB) {
	t.Helper()

	server := httptest.NewServer(bridge.handler())
	t.Cleanup(server.Close)

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Init(); err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}

	client, err := intervals.NewClient("key", "i12345", server.URL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return NewService(db, client, 1), db
}

func TestSyncWellnessStoresRecords(t *testing.T) {
	bridge := &fakeBridge{
		wellness: []intervals.WellnessRecord{
			{Date: "2026-08-29", HRV: f64(61), RestingHR: f64(49), SleepSecs: i64(27000)},
			{Date: "2026-08-30", HRV: f64(58)},
		},
	}
	service, db := setupService(t, bridge)

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	count, err := service.SyncWellness(context.Background(), start, end)
	if err != nil {
		t.Fatalf("SyncWellness failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records synced, got %d", count)
	}

	row, err := db.GetBiometricByDate(1, "2026-08-29")
	if err != nil {
		t.Fatalf("Failed to get biometric: %v", err)
	}
	if row == nil {
		t.Fatal("Expected stored biometric")
	}
	if row.HRVRMSSD == nil || *row.HRVRMSSD != 61 {
		t.Errorf("Expected hrv 61, got %v", row.HRVRMSSD)
	}
	// 27000 seconds is 450 minutes
	if row.SleepDurationMinutes == nil || *row.SleepDurationMinutes != 450 {
		t.Errorf("Expected 450 sleep minutes, got %v", row.SleepDurationMinutes)
	}
	if row.Source != SourceIntervalsICU {
		t.Errorf("Expected source %s, got %s", SourceIntervalsICU, row.Source)
	}
}

func TestSyncWellnessSkipsMalformedRecords(t *testing.T) {
	bridge := &fakeBridge{
		wellness: []intervals.WellnessRecord{
			{Date: "not-a-date", HRV: f64(61)},
			{Date: "2026-08-30", HRV: f64(58)},
		},
	}
	service, db := setupService(t, bridge)

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	count, err := service.SyncWellness(context.Background(), start, end)
	if err != nil {
		t.Fatalf("SyncWellness failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record synced past the malformed one, got %d", count)
	}

	rows, err := db.CountRows("biometrics")
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected 1 stored row, got %d", rows)
	}
}

func TestSyncActivitiesMapsTypes(t *testing.T) {
	bridge := &fakeBridge{
		activities: []intervals.ActivityPayload{
			{ID: "i1", StartDateLocal: "2026-08-29T07:00:00", Type: "Run", MovingTime: i64(1800)},
			{ID: "i2", StartDateLocal: "2026-08-29T18:00:00", Type: "VirtualRide", ElapsedTime: i64(3600)},
			{ID: "i3", StartDateLocal: "2026-08-30T07:00:00", Type: "Rowing"},
		},
	}
	service, db := setupService(t, bridge)

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	count, err := service.SyncActivities(context.Background(), start, end)
	if err != nil {
		t.Fatalf("SyncActivities failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 activities synced, got %d", count)
	}

	run, _ := db.GetActivityByExternalID("i1")
	if run == nil || run.ActivityType != "run" {
		t.Errorf("Expected Run mapped to run, got %+v", run)
	}
	if run.DurationSeconds == nil || *run.DurationSeconds != 1800 {
		t.Errorf("Expected moving time as duration, got %v", run.DurationSeconds)
	}

	ride, _ := db.GetActivityByExternalID("i2")
	if ride == nil || ride.ActivityType != "cycle" {
		t.Errorf("Expected VirtualRide mapped to cycle, got %+v", ride)
	}
	if ride.DurationSeconds == nil || *ride.DurationSeconds != 3600 {
		t.Errorf("Expected elapsed time fallback, got %v", ride.DurationSeconds)
	}

	other, _ := db.GetActivityByExternalID("i3")
	if other == nil || other.ActivityType != "other" {
		t.Errorf("Expected unknown type mapped to other, got %+v", other)
	}
}

func TestSyncActivitiesSkipsInvalid(t *testing.T) {
	bridge := &fakeBridge{
		activities: []intervals.ActivityPayload{
			{ID: "", StartDateLocal: "2026-08-29T07:00:00", Type: "Run"},
			{ID: "i2", StartDateLocal: "", Type: "Run"},
			{ID: "i3", StartDateLocal: "2026-08-30T07:00:00", Type: "Run"},
		},
	}
	service, db := setupService(t, bridge)

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	count, err := service.SyncActivities(context.Background(), start, end)
	if err != nil {
		t.Fatalf("SyncActivities failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 valid activity synced, got %d", count)
	}

	rows, _ := db.CountRows("activities")
	if rows != 1 {
		t.Errorf("Expected 1 stored activity, got %d", rows)
	}
}

func TestDailySyncRecordsSuccess(t *testing.T) {
	bridge := &fakeBridge{
		wellness:   []intervals.WellnessRecord{{Date: "2026-08-30", HRV: f64(60)}},
		activities: []intervals.ActivityPayload{{ID: "i1", StartDateLocal: "2026-08-30T07:00:00", Type: "Run"}},
	}
	service, db := setupService(t, bridge)

	if err := service.DailySync(context.Background()); err != nil {
		t.Fatalf("DailySync failed: %v", err)
	}

	status, err := db.GetSyncStatus(SourceIntervalsICU)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status.LastSyncStatus != database.SyncStatusSuccess {
		t.Errorf("Expected success status, got %s", status.LastSyncStatus)
	}
	if status.LastSyncTime == nil {
		t.Error("Expected sync time recorded")
	}
	if status.LastSyncError != nil {
		t.Errorf("Expected no error message, got %v", *status.LastSyncError)
	}
}

func TestDailySyncRecordsErrorAndPropagates(t *testing.T) {
	bridge := &fakeBridge{failPaths: []string{"/wellness/"}}
	service, db := setupService(t, bridge)

	err := service.DailySync(context.Background())
	if err == nil {
		t.Fatal("Expected error from failing bridge")
	}

	status, _ := db.GetSyncStatus(SourceIntervalsICU)
	if status.LastSyncStatus != database.SyncStatusError {
		t.Errorf("Expected error status, got %s", status.LastSyncStatus)
	}
	if status.LastSyncError == nil {
		t.Error("Expected error message recorded")
	}
}

func TestDailySyncStatusWriteFailureAfterCommit(t *testing.T) {
	bridge := &fakeBridge{
		wellness:   []intervals.WellnessRecord{{Date: "2026-08-30", HRV: f64(60)}},
		activities: []intervals.ActivityPayload{{ID: "i1", StartDateLocal: "2026-08-30T07:00:00", Type: "Run"}},
	}
	service, db := setupService(t, bridge)

	// Remove the status rows so the final outcome write has no row to hit
	if _, err := db.Conn().Exec("DELETE FROM sync_status"); err != nil {
		t.Fatalf("Failed to clear sync status: %v", err)
	}

	err := service.DailySync(context.Background())
	if err == nil {
		t.Fatal("Expected error from failed status write")
	}

	// The sync itself committed before the status write failed
	bioRows, _ := db.CountRows("biometrics")
	if bioRows != 1 {
		t.Errorf("Expected synced data to persist, got %d biometric rows", bioRows)
	}
	actRows, _ := db.CountRows("activities")
	if actRows != 1 {
		t.Errorf("Expected synced data to persist, got %d activity rows", actRows)
	}
}

func TestDailySyncIdempotent(t *testing.T) {
	bridge := &fakeBridge{
		wellness:   []intervals.WellnessRecord{{Date: "2026-08-30", HRV: f64(60)}},
		activities: []intervals.ActivityPayload{{ID: "i1", StartDateLocal: "2026-08-30T07:00:00", Type: "Run"}},
	}
	service, db := setupService(t, bridge)

	for i := 0; i < 2; i++ {
		if err := service.DailySync(context.Background()); err != nil {
			t.Fatalf("DailySync %d failed: %v", i, err)
		}
	}

	bioRows, _ := db.CountRows("biometrics")
	if bioRows != 1 {
		t.Errorf("Expected 1 biometric row after re-sync, got %d", bioRows)
	}
	actRows, _ := db.CountRows("activities")
	if actRows != 1 {
		t.Errorf("Expected 1 activity row after re-sync, got %d", actRows)
	}
}

func TestSyncHistoricalWalksChunks(t *testing.T) {
	bridge := &fakeBridge{
		wellness:   []intervals.WellnessRecord{},
		activities: []intervals.ActivityPayload{},
	}
	service, db := setupService(t, bridge)

	if err := service.SyncHistorical(context.Background(), 1); err != nil {
		t.Fatalf("SyncHistorical failed: %v", err)
	}

	// 365 days back crosses at least 12 month boundaries
	if bridge.wellnessCalls < 12 {
		t.Errorf("Expected at least 12 wellness chunk fetches, got %d", bridge.wellnessCalls)
	}
	if bridge.activityCalls != bridge.wellnessCalls {
		t.Errorf("Expected matching activity fetches, got %d vs %d", bridge.activityCalls, bridge.wellnessCalls)
	}

	status, _ := db.GetSyncStatus(SourceIntervalsICU)
	if status.LastSyncStatus != database.SyncStatusSuccess {
		t.Errorf("Expected success status, got %s", status.LastSyncStatus)
	}
	if status.FailedChunks != 0 {
		t.Errorf("Expected 0 failed chunks, got %d", status.FailedChunks)
	}
}

func TestSyncHistoricalIsolatesChunkFailures(t *testing.T) {
	// Every activities fetch fails, every wellness fetch succeeds, so every
	// chunk fails without stopping the walk.
	bridge := &fakeBridge{
		wellness:  []intervals.WellnessRecord{{Date: "2026-08-30", HRV: f64(60)}},
		failPaths: []string{"/activities"},
	}
	service, db := setupService(t, bridge)

	if err := service.SyncHistorical(context.Background(), 1); err != nil {
		t.Fatalf("Expected historical sync to finish despite chunk failures, got %v", err)
	}

	if bridge.wellnessCalls < 12 {
		t.Errorf("Expected the walk to continue past failures, got %d wellness fetches", bridge.wellnessCalls)
	}

	status, _ := db.GetSyncStatus(SourceIntervalsICU)
	if status.LastSyncStatus != database.SyncStatusSuccess {
		t.Errorf("Expected success verdict, got %s", status.LastSyncStatus)
	}
	if status.FailedChunks == 0 {
		t.Error("Expected failed chunk count to be recorded")
	}
	if status.LastSyncError == nil {
		t.Error("Expected failure summary message")
	}
}

func TestSyncHistoricalCanceled(t *testing.T) {
	bridge := &fakeBridge{}
	service, db := setupService(t, bridge)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.SyncHistorical(ctx, 1)
	if err != context.Canceled {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	status, _ := db.GetSyncStatus(SourceIntervalsICU)
	if status.LastSyncStatus != database.SyncStatusError {
		t.Errorf("Expected error status after cancellation, got %s", status.LastSyncStatus)
	}
}

func TestAnalyzeBests(t *testing.T) {
	bridge := &fakeBridge{}
	service, db := setupService(t, bridge)

	run := &database.Activity{
		UserID: 1, ExternalID: "r1", ActivityType: "run", StartTime: "2026-05-10T08:00:00",
		DistanceMeters: f64(5000), DurationSeconds: i64(1290), Source: SourceIntervalsICU,
	}
	ride := &database.Activity{
		UserID: 1, ExternalID: "c1", ActivityType: "cycle", StartTime: "2026-04-01T09:00:00",
		DurationSeconds: i64(3700), NormalizedPower: f64(260), Source: SourceIntervalsICU,
	}
	for _, a := range []*database.Activity{run, ride} {
		if err := db.UpsertActivity(a); err != nil {
			t.Fatalf("Failed to seed activity: %v", err)
		}
	}
	if err := db.UpsertBiometric(&database.Biometric{
		UserID: 1, Date: "2026-04-01", VO2Max: f64(54.8), Source: SourceIntervalsICU,
	}); err != nil {
		t.Fatalf("Failed to seed biometric: %v", err)
	}

	bests, err := service.AnalyzeBests()
	if err != nil {
		t.Fatalf("AnalyzeBests failed: %v", err)
	}

	if bests.Run5KBest == nil || bests.Run5KBest.Time != 1290 {
		t.Errorf("Unexpected 5k best: %+v", bests.Run5KBest)
	}
	if bests.Run10KBest != nil {
		t.Errorf("Expected no 10k best, got %+v", bests.Run10KBest)
	}
	if bests.FTPHigh == nil || bests.FTPHigh.Watts != 260 {
		t.Errorf("Unexpected ftp best: %+v", bests.FTPHigh)
	}
	if bests.VO2MaxHigh == nil || bests.VO2MaxHigh.Value != 54.8 {
		t.Errorf("Unexpected vo2max best: %+v", bests.VO2MaxHigh)
	}
}

func TestMapActivityType(t *testing.T) {
	cases := map[string]string{
		"Run":            "run",
		"Ride":           "cycle",
		"VirtualRide":    "cycle",
		"WeightTraining": "strength",
		"Yoga":           "yoga",
		"Walk":           "walk",
		"Hike":           "hike",
		"Swim":           "swim",
		"Kitesurf":       "other",
		"":               "other",
	}
	for upstream, want := range cases {
		if got := mapActivityType(upstream); got != want {
			t.Errorf("mapActivityType(%q) = %q, want %q", upstream, got, want)
		}
	}
}
