// Package vision abstracts the external face detection and recognition
// service behind a small capability interface. The orchestrators only see
// this interface; provider-specific wire formats stay in the implementation.
package vision

import (
	"context"
	"errors"
)

var (
	// ErrProviderTimeout is returned when a provider call exceeds the
	// configured per-call timeout.
	ErrProviderTimeout = errors.New("vision provider call timed out")

	// ErrNoFaceFound is returned by IndexFace when the provider finds no
	// usable face in the submitted photo.
	ErrNoFaceFound = errors.New("no face found in image")
)

// BoundingBox locates a face as fractions of image width/height in [0, 1].
type BoundingBox struct {
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// FaceMatch is the best gallery match for a searched face.
type FaceMatch struct {
	ExternalID string  // id the face was indexed under
	Similarity float32 // provider confidence, percent 0-100
}

// Provider is the capability interface over the external recognition service.
type Provider interface {
	// DetectFaces finds all faces in the image. Zero faces is an empty
	// slice, not an error.
	DetectFaces(ctx context.Context, image []byte) ([]BoundingBox, error)

	// SearchFace returns the single best gallery match at or above
	// minSimilarity, or nil when there is none.
	SearchFace(ctx context.Context, crop []byte, minSimilarity float32) (*FaceMatch, error)

	// IndexFace enrolls one face image under the external id.
	IndexFace(ctx context.Context, image []byte, externalID string) error

	// ListEnrolledIDs returns the de-duplicated, sorted set of external ids
	// currently indexed in the gallery.
	ListEnrolledIDs(ctx context.Context) ([]string, error)

	// EnsureCollection verifies the gallery exists, creating it if absent.
	// Idempotent.
	EnsureCollection(ctx context.Context) error
}
