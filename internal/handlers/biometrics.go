package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"healthdash-sync/internal/database"
)

func (s *Server) handleListBiometrics(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	limit := queryInt(r, "limit", 30)

	rows, err := s.db.ListBiometrics(s.userID, startDate, endDate, limit)
	if err != nil {
		s.logger.Error("biometrics query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list biometrics")
		return
	}
	if rows == nil {
		rows = []*database.Biometric{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleBiometricByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	row, err := s.db.GetBiometricByDate(s.userID, date)
	if err != nil {
		s.logger.Error("biometric query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get biometric")
		return
	}
	if row == nil {
		writeNotFound(w, "No data found for this date")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleBiometricSummary(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	summary, err := s.db.GetBiometricSummary(s.userID, days)
	if err != nil {
		s.logger.Error("biometric summary query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHRVTrend(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 90)

	trend, err := s.db.GetHRVTrend(s.userID, days)
	if err != nil {
		s.logger.Error("HRV trend query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get HRV trend")
		return
	}
	if trend == nil {
		trend = []*database.HRVTrendPoint{}
	}
	writeJSON(w, http.StatusOK, trend)
}
