package intervals

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-date layout used throughout the bridge API
const DateFormat = "2006-01-02"

// WellnessRecord is one day of wellness data from the bridge API
type WellnessRecord struct {
	ID          string   `json:"id"`
	AthleteID   int64    `json:"icu_athlete_id"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Weight      *float64 `json:"weight"`
	RestingHR   *float64 `json:"restingHR"`
	HRV         *float64 `json:"hrv"` // rMSSD
	SleepSecs   *int64   `json:"sleepSecs"`
	SleepScore  *float64 `json:"sleepScore"`
	VO2Max      *float64 `json:"vo2max"`
	BodyBattery *float64 `json:"bodyBattery"`
	BodyFatPct  *float64 `json:"bodyFat"`
	Updated     *string  `json:"updated"`
}

// Validate rejects records the store must never see: a wellness day without a
// well-formed calendar date has no natural key.
func (w *WellnessRecord) Validate() error {
	if _, err := time.Parse(DateFormat, w.Date); err != nil {
		return fmt.Errorf("invalid wellness date %q: %w", w.Date, err)
	}
	return nil
}

// ActivityPayload is one workout from the bridge API
type ActivityPayload struct {
	ID                 string   `json:"id"`
	AthleteID          int64    `json:"icu_athlete_id"`
	StartDateLocal     string   `json:"start_date_local"`
	Type               string   `json:"type"` // upstream vocabulary: "Ride", "Run", "WeightTraining", ...
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Distance           *float64 `json:"distance"`    // meters
	MovingTime         *int64   `json:"moving_time"` // seconds
	ElapsedTime        *int64   `json:"elapsed_time"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	AverageHR          *float64 `json:"average_hr"`
	MaxHR              *float64 `json:"max_hr"`
	AveragePower       *float64 `json:"average_power"`
	NormalizedPower    *float64 `json:"normalized_power"`
	TrainingLoad       *float64 `json:"training_load"` // TSS
	Intensity          *float64 `json:"intensity"`     // IF
	Calories           *float64 `json:"calories"`
	AverageCadence     *float64 `json:"average_cadence"`
}

// Validate rejects payloads without an external identifier or start timestamp;
// both are required for idempotent storage.
func (a *ActivityPayload) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("activity missing external id")
	}
	if a.StartDateLocal == "" {
		return fmt.Errorf("activity %s missing start time", a.ID)
	}
	return nil
}

// DurationSeconds prefers moving time and falls back to elapsed time. A zero
// reading counts as absent, matching the upstream convention.
func (a *ActivityPayload) DurationSeconds() *int64 {
	if a.MovingTime != nil && *a.MovingTime != 0 {
		return a.MovingTime
	}
	if a.ElapsedTime != nil && *a.ElapsedTime != 0 {
		return a.ElapsedTime
	}
	return nil
}

// Athlete is the bridge API's athlete profile
type Athlete struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     *string  `json:"email"`
	Weight    *float64 `json:"weight"`
	MaxHR     *float64 `json:"max_hr"`
	RestingHR *float64 `json:"resting_hr"`
	LTHR      *float64 `json:"lthr"`
	FTP       *float64 `json:"ftp"`
}
