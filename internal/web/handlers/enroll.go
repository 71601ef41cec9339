package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// EnrollHandler handles identity enrollment requests.
type EnrollHandler struct {
	enroller *attendance.Enroller
}

// NewEnrollHandler creates a new enroll handler.
func NewEnrollHandler(enroller *attendance.Enroller) *EnrollHandler {
	return &EnrollHandler{enroller: enroller}
}

// readUploadedPhotos reads all photo files from the multipart form into memory.
func readUploadedPhotos(files []*multipart.FileHeader) ([][]byte, error) {
	photos := make([][]byte, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %s", fileHeader.Filename)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %s", fileHeader.Filename)
		}
		photos = append(photos, data)
	}
	return photos, nil
}

// Enroll registers a person from a multipart form with fullName, externalId
// and one or more photos.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	fullName := r.FormValue("fullName")
	externalID := r.FormValue("externalId")

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["photos"]
	}
	if fullName == "" || externalID == "" || len(files) == 0 {
		respondError(w, http.StatusBadRequest, "missing name, external id, or photos")
		return
	}

	photos, err := readUploadedPhotos(files)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.enroller.Enroll(r.Context(), fullName, externalID, photos); err != nil {
		log.Printf("enroll: failed for %s: %v", sanitizeForLog(externalID), err)
		message := "enrollment failed"
		if errors.Is(err, attendance.ErrValidation) {
			message = err.Error()
		}
		respondError(w, statusForError(err), message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s registered successfully", fullName),
	})
}
