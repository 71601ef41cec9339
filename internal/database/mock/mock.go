// Package mock provides in-memory implementations of the database interfaces
// for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// IdentityStore is an in-memory implementation of database.IdentityStore
type IdentityStore struct {
	mu         sync.RWMutex
	identities map[string]database.Identity

	// Error injection
	UpsertError error
	GetError    error
	ListError   error
}

// NewIdentityStore creates a new mock identity store
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		identities: make(map[string]database.Identity),
	}
}

// Upsert inserts or replaces an identity by external id
func (m *IdentityStore) Upsert(ctx context.Context, identity database.Identity) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.identities[identity.ExternalID]; ok {
		identity.CreatedAt = existing.CreatedAt
	} else {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now
	m.identities[identity.ExternalID] = identity
	return nil
}

// Get returns the identity for the external id, or nil when unknown
func (m *IdentityStore) Get(ctx context.Context, externalID string) (*database.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.identities[externalID]; ok {
		return &id, nil
	}
	return nil, nil
}

// List returns all identities ordered by external id
func (m *IdentityStore) List(ctx context.Context) ([]database.Identity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]database.Identity, 0, len(m.identities))
	for _, id := range m.identities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].ExternalID < ids[j].ExternalID })
	return ids, nil
}

// Count returns the number of stored identities
func (m *IdentityStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities)
}

// AttendanceStore is an in-memory implementation of database.AttendanceStore
type AttendanceStore struct {
	mu     sync.RWMutex
	events []database.Attendance
	nextID int64

	// Error injection
	InsertError error
	CountsError error
	RecentError error
}

// NewAttendanceStore creates a new mock attendance store
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{nextID: 1}
}

// Insert appends one attendance event
func (m *AttendanceStore) Insert(ctx context.Context, externalID string) (*database.Attendance, error) {
	if m.InsertError != nil {
		return nil, m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := database.Attendance{
		ID:         m.nextID,
		ExternalID: externalID,
		RecordedAt: time.Now(),
	}
	m.nextID++
	m.events = append(m.events, a)
	return &a, nil
}

// DailyCounts returns per-day counts, newest day first
func (m *AttendanceStore) DailyCounts(ctx context.Context, days int) ([]database.DayCount, error) {
	if m.CountsError != nil {
		return nil, m.CountsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDay := make(map[string]int)
	for _, e := range m.events {
		byDay[e.RecordedAt.Format("2006-01-02")]++
	}
	var counts []database.DayCount
	for day, count := range byDay {
		counts = append(counts, database.DayCount{Day: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Day > counts[j].Day })
	if len(counts) > days {
		counts = counts[:days]
	}
	return counts, nil
}

// RecentByExternalID returns events for one external id, newest first
func (m *AttendanceStore) RecentByExternalID(ctx context.Context, externalID string, limit int) ([]database.Attendance, error) {
	if m.RecentError != nil {
		return nil, m.RecentError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []database.Attendance
	for i := len(m.events) - 1; i >= 0 && len(events) < limit; i-- {
		if m.events[i].ExternalID == externalID {
			events = append(events, m.events[i])
		}
	}
	return events, nil
}

// Events returns a snapshot of all recorded events in insertion order
func (m *AttendanceStore) Events() []database.Attendance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.Attendance, len(m.events))
	copy(out, m.events)
	return out
}
