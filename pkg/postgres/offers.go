package postgres

import (
	"context"
	"fmt"

	"github.com/mlavelle/wardroster/pkg/db"
)

// AppendOffers inserts new offer records in one transaction
func (d *DB) AppendOffers(ctx context.Context, offers []db.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range offers {
		_, err := tx.Exec(ctx, `
			INSERT INTO offer (id, employee_name, requester_name, changes, status, created_at, expiry)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, o.ID, o.Employee, o.Requester, o.Changes, o.Status, o.Created, o.Expiry)
		if err != nil {
			return fmt.Errorf("failed to insert offer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetOffers retrieves all offer records in creation order
func (d *DB) GetOffers(ctx context.Context) ([]db.Offer, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, employee_name, requester_name, changes, status, created_at, expiry
		FROM offer
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []db.Offer
	for rows.Next() {
		var o db.Offer
		if err := rows.Scan(&o.ID, &o.Employee, &o.Requester, &o.Changes, &o.Status, &o.Created, &o.Expiry); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// UpdateOfferStatus sets the status of a single offer record
func (d *DB) UpdateOfferStatus(ctx context.Context, id, status string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE offer SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("offer not found: %s", id)
	}
	return nil
}
