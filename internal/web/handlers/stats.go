package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// statsDays is how many recent distinct days the stats endpoint reports.
const statsDays = 7

// StatsHandler handles attendance statistics endpoints
type StatsHandler struct {
	attendance database.AttendanceStore
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(attendance database.AttendanceStore) *StatsHandler {
	return &StatsHandler{attendance: attendance}
}

// Get returns per-day attendance counts for the most recent days, newest first
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	counts, err := h.attendance.DailyCounts(r.Context(), statsDays)
	if err != nil {
		log.Printf("stats: query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	if counts == nil {
		counts = []database.DayCount{}
	}
	respondJSON(w, http.StatusOK, counts)
}
