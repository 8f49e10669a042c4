package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"healthdash-sync/internal/database"
)

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	activityType := r.URL.Query().Get("type")
	limit := queryInt(r, "limit", 50)

	rows, err := s.db.ListActivities(s.userID, startDate, endDate, activityType, limit)
	if err != nil {
		s.logger.Error("activities query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}
	if rows == nil {
		rows = []*database.Activity{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleActivityByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid activity ID"})
		return
	}

	activity, err := s.db.GetActivity(s.userID, id)
	if err != nil {
		s.logger.Error("activity query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get activity")
		return
	}
	if activity == nil {
		writeNotFound(w, "Activity not found")
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (s *Server) handleActivitySummary(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	summary, err := s.db.GetActivitySummary(s.userID, days)
	if err != nil {
		s.logger.Error("activity summary query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}
	if summary == nil {
		summary = []*database.ActivityTypeSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleActivityBests reports the fastest qualifying 5k and 10k runs and the
// best hour-long ride by average power. Absent bests come back null.
func (s *Server) handleActivityBests(w http.ResponseWriter, r *http.Request) {
	run5k, err := s.db.BestRunInBand(s.userID, 4900, 5100)
	if err != nil {
		s.logger.Error("bests query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute bests")
		return
	}

	run10k, err := s.db.BestRunInBand(s.userID, 9900, 10100)
	if err != nil {
		s.logger.Error("bests query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute bests")
		return
	}

	ftp, err := s.db.BestHourRideByAvgPower(s.userID)
	if err != nil {
		s.logger.Error("bests query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute bests")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run5k":  run5k,
		"run10k": run10k,
		"ftp":    ftp,
	})
}
