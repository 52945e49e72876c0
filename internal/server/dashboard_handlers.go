package server

import (
	"net/http"
	"strconv"
)

func (s *Server) dashboardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboardService.Summary(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "load dashboard summary")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (s *Server) dashboardRecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit, expected a positive integer")
			return
		}
		limit = n
	}

	recent, err := s.dashboardService.Recent(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, err, "load recent todos")
		return
	}
	respondWithJSON(w, http.StatusOK, recent)
}
