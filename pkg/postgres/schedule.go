package postgres

import (
	"context"
	"fmt"

	"github.com/mlavelle/wardroster/pkg/db"
)

// GetSchedule retrieves the occupied cells of the named grid sheet
func (d *DB) GetSchedule(ctx context.Context, sheet string) ([]db.ScheduleCell, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT shift_id, day_index, employee_name
		FROM schedule_cell
		WHERE sheet = $1
		ORDER BY shift_id, day_index
	`, sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s schedule: %w", sheet, err)
	}
	defer rows.Close()

	var cells []db.ScheduleCell
	for rows.Next() {
		var c db.ScheduleCell
		if err := rows.Scan(&c.ShiftID, &c.Day, &c.Employee); err != nil {
			return nil, fmt.Errorf("failed to scan schedule cell: %w", err)
		}
		cells = append(cells, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule cells: %w", err)
	}

	return cells, nil
}

// WriteSchedule replaces the named grid sheet with the given cells.
// Grids are overwritten entirely, never patched incrementally.
func (d *DB) WriteSchedule(ctx context.Context, sheet string, cells []db.ScheduleCell) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_cell WHERE sheet = $1`, sheet); err != nil {
		return fmt.Errorf("failed to clear %s schedule: %w", sheet, err)
	}

	for _, c := range cells {
		if c.Employee == "" {
			continue
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule_cell (sheet, shift_id, day_index, employee_name)
			VALUES ($1, $2, $3, $4)
		`, sheet, c.ShiftID, c.Day, c.Employee)
		if err != nil {
			return fmt.Errorf("failed to insert schedule cell: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
