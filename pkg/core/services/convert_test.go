package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlavelle/wardroster/pkg/db"
)

func TestMonthWindow(t *testing.T) {
	days, today := monthWindow(time.Date(2026, time.June, 10, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, 30, days)
	assert.Equal(t, 9, today)

	days, today = monthWindow(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 28, days)
	assert.Equal(t, 0, today)
}

func TestConvertRequest(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

	req, err := convertRequest(db.AbsenceRequest{
		ID:        "r1",
		Employee:  "Alice",
		StartDate: "2026-06-06",
		EndDate:   "2026-06-08",
		TokensBid: 9,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 5, req.StartDay)
	assert.Equal(t, 7, req.EndDay)
	assert.Equal(t, 9, req.TokensBid)
}

func TestConvertRequest_SpansMonthBoundary(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

	// A request straddling the previous month keeps its raw indices;
	// out-of-window days are discarded at expansion time.
	req, err := convertRequest(db.AbsenceRequest{
		ID:        "r1",
		Employee:  "Alice",
		StartDate: "2026-05-30",
		EndDate:   "2026-06-02",
		TokensBid: 8,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, -2, req.StartDay)
	assert.Equal(t, 1, req.EndDay)
}

func TestConvertRequest_Invalid(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

	_, err := convertRequest(db.AbsenceRequest{
		StartDate: "not-a-date",
		EndDate:   "2026-06-02",
	}, now)
	assert.Error(t, err)

	_, err = convertRequest(db.AbsenceRequest{
		StartDate: "2026-06-05",
		EndDate:   "2026-06-02",
	}, now)
	assert.Error(t, err)
}

func TestGridCellsRoundTrip(t *testing.T) {
	cells := []db.ScheduleCell{
		{ShiftID: "D1", Day: 0, Employee: "Alice"},
		{ShiftID: "N1", Day: 2, Employee: "Bob"},
		{ShiftID: "D1", Day: 99, Employee: "OutOfRange"},
	}

	grid := gridFromCells([]string{"D1", "N1"}, 5, cells)
	assert.Equal(t, "Alice", grid.At("D1", 0).Employee)
	assert.Equal(t, "Bob", grid.At("N1", 2).Employee)
	assert.True(t, grid.At("D1", 3).Empty())

	out := cellsFromGrid(grid)
	require.Len(t, out, 2)
	assert.Equal(t, db.ScheduleCell{ShiftID: "D1", Day: 0, Employee: "Alice"}, out[0])
	assert.Equal(t, db.ScheduleCell{ShiftID: "N1", Day: 2, Employee: "Bob"}, out[1])
}

func TestBuildRoster_GroupFilter(t *testing.T) {
	records := []db.Employee{
		{Name: "Alice", Role: "Nurse", Email: "alice@example.com", Tokens: 10},
		{Name: "Bob", Role: "nurse", Email: "bob@example.com", Tokens: 5},
		{Name: "Carol", Role: "Doctor", Email: "carol@example.com", Tokens: 3},
	}

	roster, emails, balances, err := buildRoster(records, "Nurse")
	require.NoError(t, err)

	require.Len(t, roster, 2)
	assert.Equal(t, "Alice", roster[0].Name)
	assert.Equal(t, "Bob", roster[1].Name)

	// Lookups always cover the whole roster
	assert.Equal(t, "carol@example.com", emails["Carol"])
	assert.Equal(t, 3, balances["Carol"])
}

func TestBuildRoster_InvalidRow(t *testing.T) {
	_, _, _, err := buildRoster([]db.Employee{{Name: "", Role: "Nurse"}}, "")
	assert.Error(t, err)
}

func TestBuildShifts_InvalidWeekdaySpec(t *testing.T) {
	_, err := buildShifts([]db.Shift{
		{ID: "D1", Role: "Nurse", DurationHours: 8, Weekdays: "nonsense"},
	})
	assert.Error(t, err)
}
