package db

import "context"

// RosterStore defines roster read and token settlement operations
type RosterStore interface {
	GetEmployees(ctx context.Context) ([]Employee, error)

	// UpdateTokenBalances applies every balance in one batch write
	UpdateTokenBalances(ctx context.Context, balances map[string]int) error
}

// ShiftCatalogStore defines shift catalog reads
type ShiftCatalogStore interface {
	GetShifts(ctx context.Context) ([]Shift, error)
}

// RequestStore defines absence request intake reads
type RequestStore interface {
	GetAbsenceRequests(ctx context.Context) ([]AbsenceRequest, error)
}

// ScheduleStore defines reads and writes of the stored grids
type ScheduleStore interface {
	GetSchedule(ctx context.Context, sheet string) ([]ScheduleCell, error)

	// WriteSchedule replaces the named sheet with the given cells
	WriteSchedule(ctx context.Context, sheet string, cells []ScheduleCell) error
}

// OfferStore defines the offer log operations
type OfferStore interface {
	AppendOffers(ctx context.Context, offers []Offer) error
	GetOffers(ctx context.Context) ([]Offer, error)
	UpdateOfferStatus(ctx context.Context, id, status string) error
}

// Database defines the interface for all database operations.
// The postgres.DB implementation satisfies it.
type Database interface {
	RosterStore
	ShiftCatalogStore
	RequestStore
	ScheduleStore
	OfferStore
}
