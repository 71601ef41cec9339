package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/vision"
)

// EnrolledHandler exposes the set of external ids enrolled in the gallery.
type EnrolledHandler struct {
	provider vision.Provider
}

// NewEnrolledHandler creates a new enrolled-ids handler.
func NewEnrolledHandler(provider vision.Provider) *EnrolledHandler {
	return &EnrolledHandler{provider: provider}
}

// List returns the de-duplicated external ids currently enrolled.
func (h *EnrolledHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.provider.ListEnrolledIDs(r.Context())
	if err != nil {
		log.Printf("enrolled-ids: list failed: %v", err)
		respondError(w, statusForError(err), "failed to list enrolled ids")
		return
	}

	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, ids)
}
