package database

import (
	"testing"
	"time"
)

func TestRecordSyncOutcomeSuccess(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.RecordSyncOutcome("intervals_icu", SyncStatusSuccess, nil, 0); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}

	status, err := db.GetSyncStatus("intervals_icu")
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if status == nil {
		t.Fatal("Expected status row")
	}
	if status.LastSyncStatus != SyncStatusSuccess {
		t.Errorf("Expected success, got %s", status.LastSyncStatus)
	}
	if status.LastSyncTime == nil {
		t.Fatal("Expected sync time to be set")
	}
	if _, err := time.Parse(time.RFC3339, *status.LastSyncTime); err != nil {
		t.Errorf("Expected RFC3339 sync time, got %s", *status.LastSyncTime)
	}
	if status.LastSyncError != nil {
		t.Errorf("Expected nil error, got %v", *status.LastSyncError)
	}
}

func TestRecordSyncOutcomeErrorThenSuccess(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	msg := "connection refused"
	if err := db.RecordSyncOutcome("intervals_icu", SyncStatusError, &msg, 0); err != nil {
		t.Fatalf("Failed to record error outcome: %v", err)
	}

	status, _ := db.GetSyncStatus("intervals_icu")
	if status.LastSyncStatus != SyncStatusError {
		t.Errorf("Expected error status, got %s", status.LastSyncStatus)
	}
	if status.LastSyncError == nil || *status.LastSyncError != msg {
		t.Errorf("Expected error message recorded, got %v", status.LastSyncError)
	}

	// A later success clears the error
	if err := db.RecordSyncOutcome("intervals_icu", SyncStatusSuccess, nil, 0); err != nil {
		t.Fatalf("Failed to record success outcome: %v", err)
	}
	status, _ = db.GetSyncStatus("intervals_icu")
	if status.LastSyncStatus != SyncStatusSuccess {
		t.Errorf("Expected success status, got %s", status.LastSyncStatus)
	}
	if status.LastSyncError != nil {
		t.Errorf("Expected error cleared, got %v", *status.LastSyncError)
	}
}

func TestRecordSyncOutcomeFailedChunks(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	msg := "3 of 60 chunks failed"
	if err := db.RecordSyncOutcome("intervals_icu", SyncStatusSuccess, &msg, 3); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}

	status, _ := db.GetSyncStatus("intervals_icu")
	if status.FailedChunks != 3 {
		t.Errorf("Expected 3 failed chunks, got %d", status.FailedChunks)
	}
	if status.LastSyncStatus != SyncStatusSuccess {
		t.Errorf("Expected success despite failed chunks, got %s", status.LastSyncStatus)
	}
}

func TestRecordSyncOutcomeUnknownSource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.RecordSyncOutcome("whoop", SyncStatusSuccess, nil, 0)
	if err == nil {
		t.Fatal("Expected error for unknown source")
	}

	// The known set stays intact
	statuses, _ := db.ListSyncStatuses()
	if len(statuses) != len(KnownSources) {
		t.Errorf("Expected %d status rows, got %d", len(KnownSources), len(statuses))
	}
}

func TestLastSuccessfulSyncTimes(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.RecordSyncOutcome("intervals_icu", SyncStatusSuccess, nil, 0); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}
	msg := "boom"
	if err := db.RecordSyncOutcome("garmin_api", SyncStatusError, &msg, 0); err != nil {
		t.Fatalf("Failed to record outcome: %v", err)
	}

	times, err := db.LastSuccessfulSyncTimes()
	if err != nil {
		t.Fatalf("Failed to get sync times: %v", err)
	}
	if _, ok := times["intervals_icu"]; !ok {
		t.Error("Expected intervals_icu in successful sync times")
	}
	if _, ok := times["garmin_api"]; ok {
		t.Error("Did not expect garmin_api after an error outcome")
	}
	if _, ok := times["garmin_db"]; ok {
		t.Error("Did not expect garmin_db while still pending")
	}
}
