// Package attendance contains the recognition and enrollment orchestrators.
// They drive the vision provider and the stores; all dependencies are
// injected so both paths are testable with fakes.
package attendance

import (
	"context"
	"fmt"
	"log"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/imaging"
	"github.com/kozaktomas/face-attendance/internal/vision"
)

// UnknownDisplayName labels matches whose external id has no identity row.
// A gallery entry without a name mapping is reported, never treated as an
// error.
const UnknownDisplayName = "Unknown"

// Match describes a positive identification of one detected face.
type Match struct {
	Name       string  `json:"name"`
	ExternalID string  `json:"usn"`
	Similarity float32 `json:"similarity"`
}

// DetectedFace is one face found in a submitted image, with its gallery
// match when identification succeeded.
type DetectedFace struct {
	BoundingBox vision.BoundingBox `json:"boundingBox"`
	Match       *Match             `json:"match"`
}

// Recognizer runs the detect → crop → search → record pipeline for one
// submitted image.
type Recognizer struct {
	provider   vision.Provider
	identities database.IdentityStore
	attendance database.AttendanceStore
	threshold  float32
}

// NewRecognizer creates a recognizer with the given match threshold
// (percent).
func NewRecognizer(provider vision.Provider, identities database.IdentityStore, attendance database.AttendanceStore, threshold float32) *Recognizer {
	return &Recognizer{
		provider:   provider,
		identities: identities,
		attendance: attendance,
		threshold:  threshold,
	}
}

// Recognize detects all faces in the image, identifies each against the
// gallery, and records one attendance event per positive match. Results
// preserve the detector's face order.
//
// Faces are processed sequentially. Bounded-concurrency per-face processing
// would be a valid substitution as long as attendance inserts stay
// independent per face and the result slice keeps detection order.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) ([]DetectedFace, error) {
	width, height, err := imaging.Dimensions(image)
	if err != nil {
		return nil, err
	}

	boxes, err := r.provider.DetectFaces(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	log.Printf("recognize: %d face(s) detected in %dx%d image", len(boxes), width, height)

	results := make([]DetectedFace, 0, len(boxes))
	for i, box := range boxes {
		face := DetectedFace{BoundingBox: box}

		match, err := r.identifyFace(ctx, image, box)
		if err != nil {
			// A bad crop or a failed search must not discard the other
			// faces; this face is reported as unmatched.
			log.Printf("recognize: face %d downgraded to no match: %v", i, err)
		} else if match != nil {
			recorded, err := r.recordMatch(ctx, match)
			if err != nil {
				// Losing an attendance event silently is not acceptable;
				// a store failure fails the whole request.
				return nil, err
			}
			face.Match = recorded
		}

		results = append(results, face)
	}

	return results, nil
}

// identifyFace crops one face and searches the gallery for it. A nil match
// with nil error means the face is genuinely unknown.
func (r *Recognizer) identifyFace(ctx context.Context, image []byte, box vision.BoundingBox) (*vision.FaceMatch, error) {
	crop, err := imaging.Crop(image, box)
	if err != nil {
		return nil, fmt.Errorf("cropping face: %w", err)
	}

	match, err := r.provider.SearchFace(ctx, crop, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("searching face: %w", err)
	}
	return match, nil
}

// recordMatch resolves the display name and appends one attendance event.
func (r *Recognizer) recordMatch(ctx context.Context, match *vision.FaceMatch) (*Match, error) {
	name := UnknownDisplayName
	identity, err := r.identities.Get(ctx, match.ExternalID)
	if err != nil {
		// Name resolution is cosmetic; log and fall back to Unknown.
		log.Printf("recognize: identity lookup for %s failed: %v", match.ExternalID, err)
	} else if identity != nil {
		name = identity.DisplayName
	}

	if _, err := r.attendance.Insert(ctx, match.ExternalID); err != nil {
		return nil, fmt.Errorf("recording attendance for %s: %w", match.ExternalID, err)
	}

	return &Match{
		Name:       name,
		ExternalID: match.ExternalID,
		Similarity: match.Similarity,
	}, nil
}
