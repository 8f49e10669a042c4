package sync

import (
	"context"
	"testing"
	"time"

	"healthdash-sync/internal/database"
	"healthdash-sync/internal/intervals"
)

func TestRunnerStartHistorical(t *testing.T) {
	bridge := &fakeBridge{
		wellness:   []intervals.WellnessRecord{},
		activities: []intervals.ActivityPayload{},
	}
	service, db := setupService(t, bridge)
	runner := NewRunner(context.Background(), service)

	runID := runner.StartHistorical(1)
	if runID == "" {
		t.Fatal("Expected a run ID")
	}

	// Completion is observable only through the status table
	deadline := time.After(10 * time.Second)
	for {
		status, err := db.GetSyncStatus(SourceIntervalsICU)
		if err != nil {
			t.Fatalf("Failed to get status: %v", err)
		}
		if status.LastSyncStatus == database.SyncStatusSuccess {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Historical run did not finish, status %s", status.LastSyncStatus)
		case <-time.After(50 * time.Millisecond):
		}
	}

	// The run deregisters itself once done
	for i := 0; runner.Active() != 0 && i < 100; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if runner.Active() != 0 {
		t.Errorf("Expected no active runs, got %d", runner.Active())
	}
}

func TestRunnerDistinctRunIDs(t *testing.T) {
	bridge := &fakeBridge{}
	service, _ := setupService(t, bridge)
	runner := NewRunner(context.Background(), service)

	a := runner.StartHistorical(1)
	b := runner.StartHistorical(1)
	if a == b {
		t.Errorf("Expected distinct run IDs, both were %s", a)
	}
}

func TestRunnerCancelAll(t *testing.T) {
	bridge := &fakeBridge{}
	service, _ := setupService(t, bridge)
	runner := NewRunner(context.Background(), service)

	runner.StartHistorical(5)
	runner.CancelAll()

	for i := 0; runner.Active() != 0 && i < 200; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if runner.Active() != 0 {
		t.Errorf("Expected all runs to stop after CancelAll, got %d active", runner.Active())
	}
}
