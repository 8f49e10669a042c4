package handlers

import (
	"encoding/json"
	"net/http"

	"healthdash-sync/internal/database"
)

// handleSyncTest verifies credentials against the bridge API and reports the
// athlete identity on success.
func (s *Server) handleSyncTest(w http.ResponseWriter, r *http.Request) {
	athlete, err := s.client.FetchAthlete(r.Context())
	if err != nil {
		s.logger.Error("connection test failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to connect to Intervals.icu")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Connected to Intervals.icu",
		"athlete": map[string]any{
			"id":   athlete.ID,
			"name": athlete.Name,
		},
	})
}

// handleDailySync runs the trailing-window sync synchronously; the response
// reports the final outcome.
func (s *Server) handleDailySync(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DailySync(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Daily sync completed",
	})
}

type historicalSyncRequest struct {
	YearsBack int `json:"yearsBack"`
}

// handleHistoricalSync launches a background back-fill and returns its run ID
// immediately. Completion is observable via GET /api/sync/status.
func (s *Server) handleHistoricalSync(w http.ResponseWriter, r *http.Request) {
	var req historicalSyncRequest
	if r.Body != nil {
		// An empty or malformed body means the default span
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.YearsBack <= 0 {
		req.YearsBack = 5
	}

	runID := s.runner.StartHistorical(req.YearsBack)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "started",
		"message": "Historical sync started in background",
		"runId":   runID,
	})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.db.ListSyncStatuses()
	if err != nil {
		s.logger.Error("sync status query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get sync status")
		return
	}
	if statuses == nil {
		statuses = []*database.SyncStatus{}
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleAnalyzeBests(w http.ResponseWriter, r *http.Request) {
	bests, err := s.service.AnalyzeBests()
	if err != nil {
		s.logger.Error("bests analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze bests")
		return
	}
	writeJSON(w, http.StatusOK, bests)
}
