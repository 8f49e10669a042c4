package database

import (
	"database/sql"
	"fmt"
)

// RunBest is the fastest completed run within a qualifying distance band
type RunBest struct {
	DurationSeconds int64   `json:"duration_seconds"`
	StartTime       string  `json:"start_time"`
	Name            *string `json:"name"`
}

// BestRunInBand returns the fastest completed run whose distance falls in
// [minMeters, maxMeters], or nil when none qualifies.
func (db *DB) BestRunInBand(userID int64, minMeters, maxMeters float64) (*RunBest, error) {
	var b RunBest
	err := db.conn.QueryRow(`
		SELECT duration_seconds, start_time, name
		FROM activities
		WHERE user_id = ? AND activity_type = 'run'
		  AND distance_meters BETWEEN ? AND ?
		  AND completed = 1
		ORDER BY duration_seconds ASC
		LIMIT 1
	`, userID, minMeters, maxMeters).Scan(&b.DurationSeconds, &b.StartTime, &b.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get best run: %w", err)
	}
	return &b, nil
}

// PowerBest is the ride with the highest sustained power over a full hour
type PowerBest struct {
	Watts     float64 `json:"watts"`
	StartTime string  `json:"start_time"`
	Name      *string `json:"name"`
}

// BestHourRideByNormalizedPower returns the ride of at least 3600 seconds with
// the highest normalized power, or nil.
func (db *DB) BestHourRideByNormalizedPower(userID int64) (*PowerBest, error) {
	var b PowerBest
	err := db.conn.QueryRow(`
		SELECT normalized_power, start_time, name
		FROM activities
		WHERE user_id = ? AND activity_type = 'cycle'
		  AND normalized_power IS NOT NULL
		  AND duration_seconds >= 3600
		ORDER BY normalized_power DESC
		LIMIT 1
	`, userID).Scan(&b.Watts, &b.StartTime, &b.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get best hour ride: %w", err)
	}
	return &b, nil
}

// HourRideBest is the route-level variant reporting both power figures
type HourRideBest struct {
	AvgPower        float64  `json:"avg_power"`
	NormalizedPower *float64 `json:"normalized_power"`
	StartTime       string   `json:"start_time"`
	Name            *string  `json:"name"`
}

// BestHourRideByAvgPower returns the ride of at least 3600 seconds with the
// highest average power, or nil.
func (db *DB) BestHourRideByAvgPower(userID int64) (*HourRideBest, error) {
	var b HourRideBest
	err := db.conn.QueryRow(`
		SELECT avg_power, normalized_power, start_time, name
		FROM activities
		WHERE user_id = ? AND activity_type = 'cycle'
		  AND avg_power IS NOT NULL
		  AND duration_seconds >= 3600
		ORDER BY avg_power DESC
		LIMIT 1
	`, userID).Scan(&b.AvgPower, &b.NormalizedPower, &b.StartTime, &b.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get best hour ride by avg power: %w", err)
	}
	return &b, nil
}

// VO2MaxBest is the highest recorded VO2max estimate
type VO2MaxBest struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// HighestVO2Max returns the biometric day with the highest VO2max, or nil
func (db *DB) HighestVO2Max(userID int64) (*VO2MaxBest, error) {
	var b VO2MaxBest
	err := db.conn.QueryRow(`
		SELECT vo2_max, date
		FROM biometrics
		WHERE user_id = ? AND vo2_max IS NOT NULL
		ORDER BY vo2_max DESC
		LIMIT 1
	`, userID).Scan(&b.Value, &b.Date)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get highest VO2max: %w", err)
	}
	return &b, nil
}
