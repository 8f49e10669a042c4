package database

import (
	"fmt"
	"time"
)

// Sync status values
const (
	SyncStatusPending = "pending"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncStatus is the outcome of the most recent sync attempt for one source
type SyncStatus struct {
	Source         string  `json:"source"`
	LastSyncTime   *string `json:"last_sync_time"`
	LastSyncStatus string  `json:"last_sync_status"`
	LastSyncError  *string `json:"last_sync_error"`
	FailedChunks   int64   `json:"failed_chunks"`
	UpdatedAt      string  `json:"updated_at"`
}

// RecordSyncOutcome overwrites the status row for a source with the outcome of
// the attempt that just finished, stamped with the current time. failedChunks
// is non-zero only for historical runs that skipped chunks.
func (db *DB) RecordSyncOutcome(source, status string, errMsg *string, failedChunks int) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := db.conn.Exec(`
		UPDATE sync_status
		SET last_sync_time = ?,
		    last_sync_status = ?,
		    last_sync_error = ?,
		    failed_chunks = ?,
		    updated_at = ?
		WHERE source = ?
	`, now, status, errMsg, failedChunks, now, source)
	if err != nil {
		return fmt.Errorf("failed to record sync outcome: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("unknown sync source: %s", source)
	}
	return nil
}

// GetSyncStatus retrieves the status row for a single source, or nil
func (db *DB) GetSyncStatus(source string) (*SyncStatus, error) {
	statuses, err := db.listSyncStatuses("WHERE source = ?", source)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, nil
	}
	return statuses[0], nil
}

// ListSyncStatuses returns the status row for every known source
func (db *DB) ListSyncStatuses() ([]*SyncStatus, error) {
	return db.listSyncStatuses("")
}

func (db *DB) listSyncStatuses(where string, args ...any) ([]*SyncStatus, error) {
	rows, err := db.conn.Query(`
		SELECT source, last_sync_time, last_sync_status, last_sync_error, failed_chunks, updated_at
		FROM sync_status `+where+`
		ORDER BY last_sync_time DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*SyncStatus
	for rows.Next() {
		var s SyncStatus
		if err := rows.Scan(&s.Source, &s.LastSyncTime, &s.LastSyncStatus, &s.LastSyncError, &s.FailedChunks, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync status: %w", err)
		}
		statuses = append(statuses, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync statuses: %w", err)
	}
	return statuses, nil
}

// LastSuccessfulSyncTimes returns, for every source whose most recent attempt
// succeeded, the time of that attempt.
func (db *DB) LastSuccessfulSyncTimes() (map[string]time.Time, error) {
	rows, err := db.conn.Query(`
		SELECT source, last_sync_time
		FROM sync_status
		WHERE last_sync_status = 'success' AND last_sync_time IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync times: %w", err)
	}
	defer rows.Close()

	times := make(map[string]time.Time)
	for rows.Next() {
		var source, stamp string
		if err := rows.Scan(&source, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan last sync time: %w", err)
		}
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			continue // ignore unparseable stamps
		}
		times[source] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating last sync times: %w", err)
	}
	return times, nil
}

// CountRows returns the number of rows in a table, used by the store stats
// collector. The table name must come from a trusted constant.
func (db *DB) CountRows(table string) (int, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
