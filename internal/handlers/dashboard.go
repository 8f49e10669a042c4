package handlers

import (
	"net/http"
	"time"

	"healthdash-sync/internal/database"
	"healthdash-sync/internal/readiness"
)

const dateFormat = "2006-01-02"

// dashboardResponse is the composite payload backing the dashboard view
type dashboardResponse struct {
	TodayBiometrics  *database.Biometric            `json:"todayBiometrics"`
	Averages         *database.BiometricAverages    `json:"averages"`
	HRVTrend         []*database.RecentTrendPoint   `json:"hrvTrend"`
	RecentActivities []*database.RecentActivityGroup `json:"recentActivities"`
	TrainingLoad     *database.TrainingLoad         `json:"trainingLoad"`
	Readiness        *readiness.Readiness           `json:"readiness"`
	LastUpdated      string                         `json:"lastUpdated"`
}

// handleDashboard composes today's biometrics, rolling averages, the recent
// HRV trend, the weekly activity rollup, training load, and the readiness
// indicator into one response. Readiness is null when there is no biometric
// row for today.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	today := now.Format(dateFormat)
	sevenDaysAgo := now.AddDate(0, 0, -7).Format(dateFormat)
	thirtyDaysAgo := now.AddDate(0, 0, -30).Format(dateFormat)

	todayBio, err := s.db.GetBiometricByDate(s.userID, today)
	if err != nil {
		s.logger.Error("dashboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	averages, err := s.db.BiometricAveragesSince(s.userID, thirtyDaysAgo)
	if err != nil {
		s.logger.Error("dashboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	trend, err := s.db.RecentBiometricTrend(s.userID, sevenDaysAgo, 7)
	if err != nil {
		s.logger.Error("dashboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	if trend == nil {
		trend = []*database.RecentTrendPoint{}
	}

	recent, err := s.db.RecentActivitiesSince(s.userID, sevenDaysAgo)
	if err != nil {
		s.logger.Error("dashboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	if recent == nil {
		recent = []*database.RecentActivityGroup{}
	}

	load, err := s.db.TrainingLoadSince(s.userID, thirtyDaysAgo)
	if err != nil {
		s.logger.Error("dashboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var score *readiness.Readiness
	if todayBio != nil {
		computed := readiness.Score(readiness.Input{
			TodayHRV:       todayBio.HRVRMSSD,
			AvgHRV:         averages.AvgHRV30d,
			TodayRestingHR: todayBio.RestingHR,
			AvgRestingHR:   averages.AvgRHR30d,
			SleepScore:     todayBio.SleepScore,
		})
		score = &computed
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TodayBiometrics:  todayBio,
		Averages:         averages,
		HRVTrend:         trend,
		RecentActivities: recent,
		TrainingLoad:     load,
		Readiness:        score,
		LastUpdated:      now.UTC().Format(time.RFC3339),
	})
}

// handleWeeklySummary returns activities of the trailing 7 days grouped by
// day and type.
func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	sevenDaysAgo := time.Now().AddDate(0, 0, -7).Format(dateFormat)

	rows, err := s.db.WeeklySummarySince(s.userID, sevenDaysAgo)
	if err != nil {
		s.logger.Error("weekly summary query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load weekly summary")
		return
	}
	if rows == nil {
		rows = []*database.WeeklySummaryRow{}
	}

	writeJSON(w, http.StatusOK, rows)
}
