package db

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Schedule sheet names, both keyed by shift-row and day-column
const (
	ScheduleOfficial = "official"
	ScheduleSandbox  = "sandbox"
)

var validate = validator.New()

// Employee represents a roster record. The token balance persists across
// runs and is mutated only through UpdateTokenBalances.
type Employee struct {
	Name   string `validate:"required"`
	Role   string `validate:"required"`
	Email  string `validate:"omitempty,email"`
	Tokens int
}

// Validate rejects malformed roster rows at ingestion
func (e Employee) Validate() error {
	return validate.Struct(e)
}

// Shift represents a shift catalog record. Weekdays holds the raw
// applicable-weekday column: either a digit string ("01234") or a weekly
// RRULE; it is parsed into a typed set at model build time.
type Shift struct {
	ID            string  `validate:"required"`
	Role          string  `validate:"required"`
	DurationHours float64 `validate:"gt=0"`
	Weekdays      string  `validate:"required"`
}

// Validate rejects malformed shift catalog rows at ingestion
func (s Shift) Validate() error {
	return validate.Struct(s)
}

// AbsenceRequest represents a request intake record. Dates use the
// 2006-01-02 layout.
type AbsenceRequest struct {
	ID        string `validate:"required"`
	Employee  string `validate:"required"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
	TokensBid int    `validate:"min=0"`
}

// Validate rejects malformed request rows at ingestion
func (r AbsenceRequest) Validate() error {
	return validate.Struct(r)
}

// ScheduleCell is one occupied slot of a stored grid. Empty slots are not
// persisted.
type ScheduleCell struct {
	ShiftID  string
	Day      int
	Employee string
}

// Offer represents a stored offer record
type Offer struct {
	ID        string
	Employee  string
	Requester string
	Changes   []string
	Status    string
	Created   time.Time
	Expiry    time.Time
}
