package database

import "time"

// Identity is the durable mapping from an external id (e.g. a registration
// number) to a display name. Rows are upserted on enrollment and never
// deleted by the application.
type Identity struct {
	ExternalID  string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attendance is one append-only attendance event. A row is written for every
// positive gallery match; there is deliberately no dedupe within an image or
// time window.
type Attendance struct {
	ID         int64
	ExternalID string
	RecordedAt time.Time
}

// DayCount is the number of attendance events recorded on one calendar day.
type DayCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}
