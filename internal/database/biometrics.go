package database

import (
	"database/sql"
	"fmt"
)

// Biometric represents one day of wellness readings for a user
type Biometric struct {
	ID                   int64    `json:"id"`
	UserID               int64    `json:"user_id"`
	Date                 string   `json:"date"`
	HRVRMSSD             *float64 `json:"hrv_rmssd"`
	RestingHR            *float64 `json:"resting_hr"`
	SleepDurationMinutes *int64   `json:"sleep_duration_minutes"`
	SleepScore           *float64 `json:"sleep_score"`
	VO2Max               *float64 `json:"vo2_max"`
	BodyBattery          *float64 `json:"body_battery"`
	WeightKg             *float64 `json:"weight_kg"`
	BodyFatPct           *float64 `json:"body_fat_pct"`
	Source               string   `json:"source"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const biometricColumns = `id, user_id, date, hrv_rmssd, resting_hr, sleep_duration_minutes,
       sleep_score, vo2_max, body_battery, weight_kg, body_fat_pct, source,
       created_at, updated_at`

func scanBiometric(row interface{ Scan(dest ...any) error }) (*Biometric, error) {
	var b Biometric
	err := row.Scan(
		&b.ID, &b.UserID, &b.Date, &b.HRVRMSSD, &b.RestingHR, &b.SleepDurationMinutes,
		&b.SleepScore, &b.VO2Max, &b.BodyBattery, &b.WeightKg, &b.BodyFatPct, &b.Source,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertBiometric inserts the record, or merges it into the existing row for
// (user, date). Merge policy is fill-missing: a column already populated is
// kept unless the incoming value is non-null.
func (db *DB) UpsertBiometric(b *Biometric) error {
	return upsertBiometric(db.conn, b)
}

// UpsertBiometricTx is UpsertBiometric inside an existing transaction, used to
// apply a sync chunk's batch atomically.
func UpsertBiometricTx(tx *sql.Tx, b *Biometric) error {
	return upsertBiometric(tx, b)
}

func upsertBiometric(e execer, b *Biometric) error {
	_, err := e.Exec(`
		INSERT INTO biometrics (
			user_id, date, hrv_rmssd, resting_hr, sleep_duration_minutes,
			sleep_score, vo2_max, body_battery, weight_kg, body_fat_pct, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			hrv_rmssd = COALESCE(excluded.hrv_rmssd, hrv_rmssd),
			resting_hr = COALESCE(excluded.resting_hr, resting_hr),
			sleep_duration_minutes = COALESCE(excluded.sleep_duration_minutes, sleep_duration_minutes),
			sleep_score = COALESCE(excluded.sleep_score, sleep_score),
			vo2_max = COALESCE(excluded.vo2_max, vo2_max),
			body_battery = COALESCE(excluded.body_battery, body_battery),
			weight_kg = COALESCE(excluded.weight_kg, weight_kg),
			body_fat_pct = COALESCE(excluded.body_fat_pct, body_fat_pct),
			updated_at = CURRENT_TIMESTAMP
	`, b.UserID, b.Date, b.HRVRMSSD, b.RestingHR, b.SleepDurationMinutes,
		b.SleepScore, b.VO2Max, b.BodyBattery, b.WeightKg, b.BodyFatPct, b.Source)

	if err != nil {
		return fmt.Errorf("failed to upsert biometric: %w", err)
	}
	return nil
}

// GetBiometricByDate retrieves the biometric row for a specific date, or nil
func (db *DB) GetBiometricByDate(userID int64, date string) (*Biometric, error) {
	b, err := scanBiometric(db.conn.QueryRow(`
		SELECT `+biometricColumns+`
		FROM biometrics WHERE user_id = ? AND date = ?
	`, userID, date))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get biometric: %w", err)
	}
	return b, nil
}

// ListBiometrics returns biometric rows, most recent first, optionally
// restricted to an inclusive date range.
func (db *DB) ListBiometrics(userID int64, startDate, endDate string, limit int) ([]*Biometric, error) {
	query := `SELECT ` + biometricColumns + ` FROM biometrics WHERE user_id = ?`
	args := []any{userID}

	if startDate != "" && endDate != "" {
		query += " AND date BETWEEN ? AND ?"
		args = append(args, startDate, endDate)
	}
	query += " ORDER BY date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list biometrics: %w", err)
	}
	defer rows.Close()

	var biometrics []*Biometric
	for rows.Next() {
		b, err := scanBiometric(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan biometric: %w", err)
		}
		biometrics = append(biometrics, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating biometrics: %w", err)
	}
	return biometrics, nil
}

// BiometricAverages holds 30-day rolling averages for the dashboard
type BiometricAverages struct {
	AvgHRV30d           *float64 `json:"avg_hrv_30d"`
	AvgRHR30d           *float64 `json:"avg_rhr_30d"`
	AvgSleepScore30d    *float64 `json:"avg_sleep_score_30d"`
	AvgSleepDuration30d *float64 `json:"avg_sleep_duration_30d"`
}

// BiometricAveragesSince computes rolling averages over rows on or after the
// given date.
func (db *DB) BiometricAveragesSince(userID int64, sinceDate string) (*BiometricAverages, error) {
	var a BiometricAverages
	err := db.conn.QueryRow(`
		SELECT
			AVG(hrv_rmssd), AVG(resting_hr), AVG(sleep_score), AVG(sleep_duration_minutes)
		FROM biometrics
		WHERE user_id = ? AND date >= ?
	`, userID, sinceDate).Scan(&a.AvgHRV30d, &a.AvgRHR30d, &a.AvgSleepScore30d, &a.AvgSleepDuration30d)

	if err != nil {
		return nil, fmt.Errorf("failed to compute biometric averages: %w", err)
	}
	return &a, nil
}

// BiometricSummary holds aggregate statistics for a trailing window
type BiometricSummary struct {
	AvgHRV           *float64 `json:"avg_hrv"`
	AvgRHR           *float64 `json:"avg_rhr"`
	AvgSleepScore    *float64 `json:"avg_sleep_score"`
	AvgSleepDuration *float64 `json:"avg_sleep_duration"`
	AvgVO2Max        *float64 `json:"avg_vo2max"`
	StartDate        *string  `json:"start_date"`
	EndDate          *string  `json:"end_date"`
	TotalRecords     int64    `json:"total_records"`
}

// GetBiometricSummary computes summary statistics over the trailing N days
func (db *DB) GetBiometricSummary(userID int64, days int) (*BiometricSummary, error) {
	var s BiometricSummary
	err := db.conn.QueryRow(`
		SELECT
			AVG(hrv_rmssd), AVG(resting_hr), AVG(sleep_score),
			AVG(sleep_duration_minutes), AVG(vo2_max),
			MIN(date), MAX(date), COUNT(*)
		FROM biometrics
		WHERE user_id = ? AND date >= date('now', '-' || ? || ' days')
	`, userID, days).Scan(
		&s.AvgHRV, &s.AvgRHR, &s.AvgSleepScore,
		&s.AvgSleepDuration, &s.AvgVO2Max,
		&s.StartDate, &s.EndDate, &s.TotalRecords,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to compute biometric summary: %w", err)
	}
	return &s, nil
}

// HRVTrendPoint is one day in the HRV trend series
type HRVTrendPoint struct {
	Date      string   `json:"date"`
	HRVRMSSD  *float64 `json:"hrv_rmssd"`
	RestingHR *float64 `json:"resting_hr"`
}

// GetHRVTrend returns days with an HRV reading over the trailing N days,
// oldest first.
func (db *DB) GetHRVTrend(userID int64, days int) ([]*HRVTrendPoint, error) {
	rows, err := db.conn.Query(`
		SELECT date, hrv_rmssd, resting_hr
		FROM biometrics
		WHERE user_id = ?
		  AND date >= date('now', '-' || ? || ' days')
		  AND hrv_rmssd IS NOT NULL
		ORDER BY date ASC
	`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get HRV trend: %w", err)
	}
	defer rows.Close()

	var trend []*HRVTrendPoint
	for rows.Next() {
		var p HRVTrendPoint
		if err := rows.Scan(&p.Date, &p.HRVRMSSD, &p.RestingHR); err != nil {
			return nil, fmt.Errorf("failed to scan HRV trend point: %w", err)
		}
		trend = append(trend, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating HRV trend: %w", err)
	}
	return trend, nil
}

// RecentTrendPoint is one day in the dashboard's recent readiness trend
type RecentTrendPoint struct {
	Date       string   `json:"date"`
	HRVRMSSD   *float64 `json:"hrv_rmssd"`
	RestingHR  *float64 `json:"resting_hr"`
	SleepScore *float64 `json:"sleep_score"`
}

// RecentBiometricTrend returns up to limit days on or after sinceDate, most
// recent first.
func (db *DB) RecentBiometricTrend(userID int64, sinceDate string, limit int) ([]*RecentTrendPoint, error) {
	rows, err := db.conn.Query(`
		SELECT date, hrv_rmssd, resting_hr, sleep_score
		FROM biometrics
		WHERE user_id = ? AND date >= ?
		ORDER BY date DESC
		LIMIT ?
	`, userID, sinceDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent biometric trend: %w", err)
	}
	defer rows.Close()

	var trend []*RecentTrendPoint
	for rows.Next() {
		var p RecentTrendPoint
		if err := rows.Scan(&p.Date, &p.HRVRMSSD, &p.RestingHR, &p.SleepScore); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		trend = append(trend, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trend: %w", err)
	}
	return trend, nil
}
