// Package readiness computes the daily training-readiness indicator from
// today's biometrics and the 30-day rolling averages.
//
// The formula is a product heuristic, not a validated model; it is reproduced
// here exactly as specified.
package readiness

import "math"

// Input holds today's readings and the 30-day averages. Nil means no data.
type Input struct {
	TodayHRV       *float64
	AvgHRV         *float64
	TodayRestingHR *float64
	AvgRestingHR   *float64
	SleepScore     *float64
}

// Readiness is the scored indicator with its tier mapping
type Readiness struct {
	Score          int    `json:"score"`
	Level          string `json:"level"`          // green, yellow, red
	Recommendation string `json:"recommendation"` // train_hard, moderate, rest
}

// Score computes the composite readiness score out of 100:
//
//   - HRV contributes (today/avg)*50, defaulting to 50 when either operand is
//     missing
//   - resting HR contributes (1-(today-avg)/avg)*30, defaulting to 30
//   - sleep score contributes directly, defaulting to 20
//
// The total is clamped to [0, 100].
func Score(in Input) Readiness {
	hrvComponent := 50.0
	if present(in.TodayHRV) && present(in.AvgHRV) {
		hrvComponent = (*in.TodayHRV / *in.AvgHRV) * 50
	}

	rhrComponent := 30.0
	if present(in.TodayRestingHR) && present(in.AvgRestingHR) {
		rhrComponent = (1 - (*in.TodayRestingHR-*in.AvgRestingHR) / *in.AvgRestingHR) * 30
	}

	sleepComponent := 20.0
	if present(in.SleepScore) {
		sleepComponent = *in.SleepScore
	}

	total := hrvComponent + rhrComponent + sleepComponent
	total = math.Max(0, math.Min(100, total))

	r := Readiness{Score: int(math.Round(total))}
	switch {
	case total >= 70:
		r.Level = "green"
		r.Recommendation = "train_hard"
	case total >= 40:
		r.Level = "yellow"
		r.Recommendation = "moderate"
	default:
		r.Level = "red"
		r.Recommendation = "rest"
	}
	return r
}

// present mirrors the truthiness check of the original formula: a zero
// reading counts as missing.
func present(v *float64) bool {
	return v != nil && *v != 0
}
