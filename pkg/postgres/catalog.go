package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mlavelle/wardroster/pkg/db"
)

// GetShifts retrieves all shift catalog records
func (d *DB) GetShifts(ctx context.Context) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, role, duration_hours, weekdays
		FROM shift
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		var s db.Shift
		if err := rows.Scan(&s.ID, &s.Role, &s.DurationHours, &s.Weekdays); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// GetAbsenceRequests retrieves all request intake records in submission order
func (d *DB) GetAbsenceRequests(ctx context.Context) ([]db.AbsenceRequest, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, employee_name, start_date, end_date, tokens_bid
		FROM absence_request
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence requests: %w", err)
	}
	defer rows.Close()

	var requests []db.AbsenceRequest
	for rows.Next() {
		var r db.AbsenceRequest
		var start, end time.Time
		if err := rows.Scan(&r.ID, &r.Employee, &start, &end, &r.TokensBid); err != nil {
			return nil, fmt.Errorf("failed to scan absence request: %w", err)
		}
		r.StartDate = start.Format("2006-01-02")
		r.EndDate = end.Format("2006-01-02")
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating absence requests: %w", err)
	}

	return requests, nil
}
