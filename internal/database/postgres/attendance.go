package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance storage
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Insert appends one attendance event, timestamped by the database
func (r *AttendanceRepository) Insert(ctx context.Context, externalID string) (*database.Attendance, error) {
	query := `
		INSERT INTO attendance (external_id)
		VALUES ($1)
		RETURNING id, external_id, recorded_at
	`

	var a database.Attendance
	err := r.pool.QueryRow(ctx, query, externalID).Scan(&a.ID, &a.ExternalID, &a.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	return &a, nil
}

// DailyCounts returns per-day event counts for the most recent `days`
// distinct days, newest first
func (r *AttendanceRepository) DailyCounts(ctx context.Context, days int) ([]database.DayCount, error) {
	query := `
		SELECT to_char(recorded_at::date, 'YYYY-MM-DD') AS day, count(*) AS count
		FROM attendance
		GROUP BY recorded_at::date
		ORDER BY recorded_at::date DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []database.DayCount
	for rows.Next() {
		var dc database.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day counts: %w", err)
	}
	return counts, nil
}

// RecentByExternalID returns the latest events for one external id, newest first
func (r *AttendanceRepository) RecentByExternalID(ctx context.Context, externalID string, limit int) ([]database.Attendance, error) {
	query := `
		SELECT id, external_id, recorded_at
		FROM attendance
		WHERE external_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, externalID, limit)
	if err != nil {
		return nil, fmt.Errorf("query attendance by external id: %w", err)
	}
	defer rows.Close()

	var events []database.Attendance
	for rows.Next() {
		var a database.Attendance
		if err := rows.Scan(&a.ID, &a.ExternalID, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		events = append(events, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return events, nil
}
