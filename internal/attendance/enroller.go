package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/vision"
)

// ErrValidation marks enrollment requests with missing required input.
var ErrValidation = errors.New("validation failed")

// Enroller registers identities and indexes their photos in the gallery.
type Enroller struct {
	provider   vision.Provider
	identities database.IdentityStore
}

// NewEnroller creates an enroller.
func NewEnroller(provider vision.Provider, identities database.IdentityStore) *Enroller {
	return &Enroller{provider: provider, identities: identities}
}

// NormalizeExternalID canonicalizes an external id so attendance records and
// gallery entries always join on the same key.
func NormalizeExternalID(externalID string) string {
	return strings.ToUpper(strings.TrimSpace(externalID))
}

// Enroll upserts the identity and indexes each photo under its external id.
// Photos are indexed sequentially; the first indexing failure is returned
// immediately and already-indexed photos stay enrolled (no rollback).
func (e *Enroller) Enroll(ctx context.Context, displayName, externalID string, photos [][]byte) error {
	displayName = strings.TrimSpace(displayName)
	externalID = NormalizeExternalID(externalID)

	switch {
	case displayName == "":
		return fmt.Errorf("%w: display name is required", ErrValidation)
	case externalID == "":
		return fmt.Errorf("%w: external id is required", ErrValidation)
	case len(photos) == 0:
		return fmt.Errorf("%w: at least one photo is required", ErrValidation)
	}

	identity := database.Identity{ExternalID: externalID, DisplayName: displayName}
	if err := e.identities.Upsert(ctx, identity); err != nil {
		return fmt.Errorf("storing identity %s: %w", externalID, err)
	}

	for i, photo := range photos {
		if err := e.provider.IndexFace(ctx, photo, externalID); err != nil {
			return fmt.Errorf("indexing photo %d of %d: %w", i+1, len(photos), err)
		}
	}

	return nil
}
