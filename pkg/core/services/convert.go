package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/mlavelle/wardroster/pkg/core/model"
	"github.com/mlavelle/wardroster/pkg/core/offers"
	"github.com/mlavelle/wardroster/pkg/db"
)

const dateLayout = "2006-01-02"

// monthWindow returns the active month's day count and the 0-based index
// of today within it
func monthWindow(now time.Time) (days, today int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	days = first.AddDate(0, 1, -1).Day()
	return days, now.Day() - 1
}

// buildRoster validates roster rows and splits them into the solver roster,
// filtered to the optional role group, plus full-roster email and token
// balance lookups. Lookups always cover the whole roster so reply handling
// and settlement work for employees outside the active group.
func buildRoster(records []db.Employee, group string) ([]model.Employee, map[string]string, map[string]int, error) {
	var roster []model.Employee
	emails := make(map[string]string, len(records))
	balances := make(map[string]int, len(records))

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid roster row %q: %w", rec.Name, err)
		}
		emails[rec.Name] = rec.Email
		balances[rec.Name] = rec.Tokens

		if group != "" && !strings.EqualFold(rec.Role, group) {
			continue
		}
		roster = append(roster, model.Employee{
			Name:   rec.Name,
			Role:   rec.Role,
			Email:  rec.Email,
			Tokens: rec.Tokens,
		})
	}

	return roster, emails, balances, nil
}

// buildShifts validates and converts shift catalog rows, parsing the raw
// weekday column into a typed set
func buildShifts(records []db.Shift) ([]model.Shift, error) {
	shifts := make([]model.Shift, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid shift row %q: %w", rec.ID, err)
		}
		weekdays, err := model.ParseWeekdaySet(rec.Weekdays)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday spec for shift %q: %w", rec.ID, err)
		}
		shifts = append(shifts, model.Shift{
			ID:            rec.ID,
			Role:          rec.Role,
			DurationHours: rec.DurationHours,
			Weekdays:      weekdays,
		})
	}
	return shifts, nil
}

// convertRequest maps a dated absence request onto 0-based day indices
// within the month containing now. Indices may fall outside [0, days);
// downstream consumers clip or skip out-of-window days themselves.
func convertRequest(rec db.AbsenceRequest, now time.Time) (model.AbsenceRequest, error) {
	start, err := time.Parse(dateLayout, rec.StartDate)
	if err != nil {
		return model.AbsenceRequest{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(dateLayout, rec.EndDate)
	if err != nil {
		return model.AbsenceRequest{}, fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return model.AbsenceRequest{}, fmt.Errorf("end date %s before start date %s", rec.EndDate, rec.StartDate)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return model.AbsenceRequest{
		Employee:  rec.Employee,
		StartDay:  int(start.Sub(monthStart).Hours() / 24),
		EndDay:    int(end.Sub(monthStart).Hours() / 24),
		TokensBid: rec.TokensBid,
	}, nil
}

// gridFromCells rebuilds a grid from its stored occupied cells
func gridFromCells(shiftIDs []string, days int, cells []db.ScheduleCell) *model.Grid {
	grid := model.NewGrid(shiftIDs, days)
	for _, cell := range cells {
		if cell.Day < 0 || cell.Day >= days {
			continue
		}
		grid.Set(cell.ShiftID, cell.Day, cell.Employee)
	}
	return grid
}

// cellsFromGrid flattens a grid into its occupied cells for storage
func cellsFromGrid(grid *model.Grid) []db.ScheduleCell {
	var cells []db.ScheduleCell
	for _, slot := range grid.Slots() {
		cell := grid.At(slot.ShiftID, slot.Day)
		if cell.Empty() {
			continue
		}
		cells = append(cells, db.ScheduleCell{
			ShiftID:  slot.ShiftID,
			Day:      slot.Day,
			Employee: cell.Employee,
		})
	}
	return cells
}

func dbOffersFrom(list []offers.Offer) []db.Offer {
	records := make([]db.Offer, len(list))
	for i, o := range list {
		records[i] = db.Offer{
			ID:        o.ID,
			Employee:  o.Employee,
			Requester: o.Requester,
			Changes:   o.Changes,
			Status:    o.Status,
			Created:   o.Created,
			Expiry:    o.Expiry,
		}
	}
	return records
}

func offersFromDB(records []db.Offer) []offers.Offer {
	list := make([]offers.Offer, len(records))
	for i, rec := range records {
		list[i] = offers.Offer{
			ID:        rec.ID,
			Employee:  rec.Employee,
			Requester: rec.Requester,
			Changes:   rec.Changes,
			Status:    rec.Status,
			Created:   rec.Created,
			Expiry:    rec.Expiry,
		}
	}
	return list
}
