package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// DetectHandler handles face recognition requests.
type DetectHandler struct {
	recognizer *attendance.Recognizer
}

// NewDetectHandler creates a new detect handler.
func NewDetectHandler(recognizer *attendance.Recognizer) *DetectHandler {
	return &DetectHandler{recognizer: recognizer}
}

// DetectResponse wraps the per-face recognition results.
type DetectResponse struct {
	Results []attendance.DetectedFace `json:"results"`
}

// Detect accepts a multipart image upload, recognizes all faces in it and
// records attendance for positive matches.
func (h *DetectHandler) Detect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	results, err := h.recognizer.Recognize(r.Context(), image)
	if err != nil {
		log.Printf("detect: recognition failed: %v", err)
		respondError(w, statusForError(err), "recognition failed")
		return
	}

	if results == nil {
		results = []attendance.DetectedFace{}
	}
	respondJSON(w, http.StatusOK, DetectResponse{Results: results})
}
