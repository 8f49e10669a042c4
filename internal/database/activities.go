package database

import (
	"database/sql"
	"fmt"
)

// Activity represents one synced workout session
type Activity struct {
	ID                  int64    `json:"id"`
	UserID              int64    `json:"user_id"`
	ExternalID          string   `json:"external_id"`
	ActivityType        string   `json:"activity_type"`
	StartTime           string   `json:"start_time"`
	DurationSeconds     *int64   `json:"duration_seconds"`
	DistanceMeters      *float64 `json:"distance_meters"`
	ElevationGainMeters *float64 `json:"elevation_gain_meters"`
	AvgHR               *float64 `json:"avg_hr"`
	MaxHR               *float64 `json:"max_hr"`
	AvgPower            *float64 `json:"avg_power"`
	NormalizedPower     *float64 `json:"normalized_power"`
	TrainingStressScore *float64 `json:"training_stress_score"`
	IntensityFactor     *float64 `json:"intensity_factor"`
	Calories            *float64 `json:"calories"`
	AvgCadence          *float64 `json:"avg_cadence"`
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	Completed           bool     `json:"completed"`
	Source              string   `json:"source"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

const activityColumns = `id, user_id, external_id, activity_type, start_time, duration_seconds,
       distance_meters, elevation_gain_meters, avg_hr, max_hr, avg_power,
       normalized_power, training_stress_score, intensity_factor, calories,
       avg_cadence, name, description, completed, source, created_at, updated_at`

func scanActivity(row interface{ Scan(dest ...any) error }) (*Activity, error) {
	var a Activity
	err := row.Scan(
		&a.ID, &a.UserID, &a.ExternalID, &a.ActivityType, &a.StartTime, &a.DurationSeconds,
		&a.DistanceMeters, &a.ElevationGainMeters, &a.AvgHR, &a.MaxHR, &a.AvgPower,
		&a.NormalizedPower, &a.TrainingStressScore, &a.IntensityFactor, &a.Calories,
		&a.AvgCadence, &a.Name, &a.Description, &a.Completed, &a.Source, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertActivity inserts the activity, or, if the external identifier is
// already stored, updates only the health metrics that the upstream may
// back-fill after upload. Identity and descriptive fields are never touched
// on conflict.
func (db *DB) UpsertActivity(a *Activity) error {
	return upsertActivity(db.conn, a)
}

// UpsertActivityTx is UpsertActivity inside an existing transaction
func UpsertActivityTx(tx *sql.Tx, a *Activity) error {
	return upsertActivity(tx, a)
}

func upsertActivity(e execer, a *Activity) error {
	_, err := e.Exec(`
		INSERT INTO activities (
			user_id, external_id, activity_type, start_time, duration_seconds,
			distance_meters, elevation_gain_meters, avg_hr, max_hr, avg_power,
			normalized_power, training_stress_score, intensity_factor, calories,
			avg_cadence, name, description, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			avg_hr = COALESCE(excluded.avg_hr, avg_hr),
			max_hr = COALESCE(excluded.max_hr, max_hr),
			avg_power = COALESCE(excluded.avg_power, avg_power),
			training_stress_score = COALESCE(excluded.training_stress_score, training_stress_score),
			updated_at = CURRENT_TIMESTAMP
	`, a.UserID, a.ExternalID, a.ActivityType, a.StartTime, a.DurationSeconds,
		a.DistanceMeters, a.ElevationGainMeters, a.AvgHR, a.MaxHR, a.AvgPower,
		a.NormalizedPower, a.TrainingStressScore, a.IntensityFactor, a.Calories,
		a.AvgCadence, a.Name, a.Description, a.Source)

	if err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}
	return nil
}

// GetActivity retrieves an activity by row ID, or nil
func (db *DB) GetActivity(userID, id int64) (*Activity, error) {
	a, err := scanActivity(db.conn.QueryRow(`
		SELECT `+activityColumns+`
		FROM activities WHERE id = ? AND user_id = ?
	`, id, userID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// GetActivityByExternalID retrieves an activity by its upstream identifier, or nil
func (db *DB) GetActivityByExternalID(externalID string) (*Activity, error) {
	a, err := scanActivity(db.conn.QueryRow(`
		SELECT `+activityColumns+`
		FROM activities WHERE external_id = ?
	`, externalID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// ListActivities returns activities, most recent first, optionally filtered by
// date range and normalized type.
func (db *DB) ListActivities(userID int64, startDate, endDate, activityType string, limit int) ([]*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id = ?`
	args := []any{userID}

	if startDate != "" && endDate != "" {
		query += " AND date(start_time) BETWEEN ? AND ?"
		args = append(args, startDate, endDate)
	}
	if activityType != "" {
		query += " AND activity_type = ?"
		args = append(args, activityType)
	}
	query += " ORDER BY start_time DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}

// ActivityTypeSummary aggregates activities by type over a trailing window
type ActivityTypeSummary struct {
	ActivityType  string   `json:"activity_type"`
	Count         int64    `json:"count"`
	TotalDuration *int64   `json:"total_duration"`
	TotalDistance *float64 `json:"total_distance"`
	AvgTSS        *float64 `json:"avg_tss"`
	TotalTSS      *float64 `json:"total_tss"`
}

// GetActivitySummary aggregates by type over the trailing N days
func (db *DB) GetActivitySummary(userID int64, days int) ([]*ActivityTypeSummary, error) {
	rows, err := db.conn.Query(`
		SELECT
			activity_type, COUNT(*), SUM(duration_seconds), SUM(distance_meters),
			AVG(training_stress_score), SUM(training_stress_score)
		FROM activities
		WHERE user_id = ?
		  AND date(start_time) >= date('now', '-' || ? || ' days')
		GROUP BY activity_type
	`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity summary: %w", err)
	}
	defer rows.Close()

	var summary []*ActivityTypeSummary
	for rows.Next() {
		var s ActivityTypeSummary
		if err := rows.Scan(&s.ActivityType, &s.Count, &s.TotalDuration, &s.TotalDistance, &s.AvgTSS, &s.TotalTSS); err != nil {
			return nil, fmt.Errorf("failed to scan activity summary: %w", err)
		}
		summary = append(summary, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity summary: %w", err)
	}
	return summary, nil
}

// RecentActivityGroup is the dashboard's per-type rollup of the trailing week
type RecentActivityGroup struct {
	ActivityType  string `json:"activity_type"`
	Count         int64  `json:"count"`
	TotalDuration *int64 `json:"total_duration"`
}

// RecentActivitiesSince groups activities by type on or after the given date
func (db *DB) RecentActivitiesSince(userID int64, sinceDate string) ([]*RecentActivityGroup, error) {
	rows, err := db.conn.Query(`
		SELECT activity_type, COUNT(*), SUM(duration_seconds)
		FROM activities
		WHERE user_id = ? AND date(start_time) >= ?
		GROUP BY activity_type
	`, userID, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activities: %w", err)
	}
	defer rows.Close()

	var groups []*RecentActivityGroup
	for rows.Next() {
		var g RecentActivityGroup
		if err := rows.Scan(&g.ActivityType, &g.Count, &g.TotalDuration); err != nil {
			return nil, fmt.Errorf("failed to scan recent activity group: %w", err)
		}
		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent activities: %w", err)
	}
	return groups, nil
}

// TrainingLoad summarizes training stress over a window
type TrainingLoad struct {
	TotalTSS         *float64 `json:"total_tss"`
	AvgTSSPerWorkout *float64 `json:"avg_tss_per_workout"`
}

// TrainingLoadSince sums training stress for activities on or after the given date
func (db *DB) TrainingLoadSince(userID int64, sinceDate string) (*TrainingLoad, error) {
	var tl TrainingLoad
	err := db.conn.QueryRow(`
		SELECT SUM(training_stress_score), AVG(training_stress_score)
		FROM activities
		WHERE user_id = ?
		  AND date(start_time) >= ?
		  AND training_stress_score IS NOT NULL
	`, userID, sinceDate).Scan(&tl.TotalTSS, &tl.AvgTSSPerWorkout)

	if err != nil {
		return nil, fmt.Errorf("failed to compute training load: %w", err)
	}
	return &tl, nil
}

// WeeklySummaryRow is one (day, type) cell of the weekly training summary
type WeeklySummaryRow struct {
	Date          string   `json:"date"`
	ActivityType  string   `json:"activity_type"`
	Count         int64    `json:"count"`
	TotalDuration *int64   `json:"total_duration"`
	TotalDistance *float64 `json:"total_distance"`
	TotalTSS      *float64 `json:"total_tss"`
}

// WeeklySummarySince groups activities by day and type on or after the given
// date, most recent day first.
func (db *DB) WeeklySummarySince(userID int64, sinceDate string) ([]*WeeklySummaryRow, error) {
	rows, err := db.conn.Query(`
		SELECT
			date(start_time), activity_type, COUNT(*),
			SUM(duration_seconds), SUM(distance_meters), SUM(training_stress_score)
		FROM activities
		WHERE user_id = ? AND date(start_time) >= ?
		GROUP BY date(start_time), activity_type
		ORDER BY date(start_time) DESC
	`, userID, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly summary: %w", err)
	}
	defer rows.Close()

	var summary []*WeeklySummaryRow
	for rows.Next() {
		var r WeeklySummaryRow
		if err := rows.Scan(&r.Date, &r.ActivityType, &r.Count, &r.TotalDuration, &r.TotalDistance, &r.TotalTSS); err != nil {
			return nil, fmt.Errorf("failed to scan weekly summary row: %w", err)
		}
		summary = append(summary, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly summary: %w", err)
	}
	return summary, nil
}
