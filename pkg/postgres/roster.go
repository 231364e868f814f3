package postgres

import (
	"context"
	"fmt"

	"github.com/mlavelle/wardroster/pkg/db"
)

// GetEmployees retrieves all roster records
func (d *DB) GetEmployees(ctx context.Context) ([]db.Employee, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT name, role, email, tokens
		FROM employee
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []db.Employee
	for rows.Next() {
		var e db.Employee
		if err := rows.Scan(&e.Name, &e.Role, &e.Email, &e.Tokens); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

// UpdateTokenBalances applies all balance changes in a single transaction
func (d *DB) UpdateTokenBalances(ctx context.Context, balances map[string]int) error {
	if len(balances) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for name, tokens := range balances {
		_, err := tx.Exec(ctx, `
			UPDATE employee SET tokens = $2 WHERE name = $1
		`, name, tokens)
		if err != nil {
			return fmt.Errorf("failed to update tokens for %s: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
