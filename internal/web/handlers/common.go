package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/imaging"
	"github.com/kozaktomas/face-attendance/internal/vision"
)

// maxUploadSize bounds multipart request memory.
const maxUploadSize = 32 << 20 // 32 MiB

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps domain failures to HTTP status codes. Clients get a
// plain message, never internals.
func statusForError(err error) int {
	switch {
	case errors.Is(err, attendance.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, vision.ErrProviderTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, vision.ErrNoFaceFound):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
