// Package database defines the storage interfaces and row types shared by
// the PostgreSQL implementation and the in-memory mocks used in tests.
package database

import "context"

// IdentityStore persists the external-id → display-name mapping.
type IdentityStore interface {
	// Upsert inserts the identity or replaces its display name when the
	// external id already exists.
	Upsert(ctx context.Context, identity Identity) error

	// Get returns the identity for the external id, or nil when unknown.
	Get(ctx context.Context, externalID string) (*Identity, error)

	// List returns all identities ordered by external id.
	List(ctx context.Context) ([]Identity, error)
}

// AttendanceStore appends and aggregates attendance events.
type AttendanceStore interface {
	// Insert appends one attendance event for the external id, timestamped
	// by the database.
	Insert(ctx context.Context, externalID string) (*Attendance, error)

	// DailyCounts returns per-day event counts for the most recent `days`
	// distinct days, newest first.
	DailyCounts(ctx context.Context, days int) ([]DayCount, error)

	// RecentByExternalID returns the latest events for one external id,
	// newest first, up to limit.
	RecentByExternalID(ctx context.Context, externalID string, limit int) ([]Attendance, error)
}
