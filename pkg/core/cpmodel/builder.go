package cpmodel

import (
	"fmt"
	"sort"

	"github.com/mlavelle/wardroster/pkg/core/model"
)

// BuildInput carries everything the model builder needs for one run
type BuildInput struct {
	// Employees is the roster, already filtered to the active role group
	Employees []model.Employee

	// Shifts is the shift catalog
	Shifts []model.Shift

	// Official is the currently binding grid. Days at or before Today are
	// locked to it; unlocked official assignments earn a stability bonus.
	Official *model.Grid

	// SubRequests are the expanded per-day absence requests
	SubRequests []model.SubRequest

	// Today is the locking boundary: every day index <= Today is immutable
	Today int

	// Days is the number of days in the active month
	Days int

	// ExemptEmployee is excluded from the rolling 7-day window cap
	ExemptEmployee string
}

// decisionCell is one (shift, day) slot the solver must fill
type decisionCell struct {
	shiftID string
	day     int

	// candidates are the role-eligible employees for this cell
	candidates []string

	// hint is the official grid's employee for this cell when that
	// employee is still a candidate; assigning it earns a unit bonus
	hint string
}

// offBonus is one soft objective term: TokensPerDay is earned when the
// requester ends the run with no assignment on the day
type offBonus struct {
	employee string
	day      int
	tokens   int
}

// Problem is a built constraint model ready for the solver
type Problem struct {
	shifts []model.Shift
	days   int
	exempt string

	// cells the solver decides, ordered by day then catalog order
	cells []decisionCell

	// locked holds the official assignments for days <= today, copied
	// verbatim into every solution
	locked []lockedCell

	bonuses []offBonus

	// roster membership, for window/busy accounting
	roster map[string]bool
}

type lockedCell struct {
	shiftID  string
	day      int
	employee string
}

// Build formulates the assignment problem: one candidate set per coverage-
// required (shift, day) slot, locked history, and the soft objective terms.
func Build(in BuildInput) (*Problem, error) {
	if in.Days <= 0 {
		return nil, fmt.Errorf("month length must be positive, got %d", in.Days)
	}
	if in.Official == nil {
		return nil, fmt.Errorf("official grid is required")
	}

	byRole := make(map[string][]string)
	roster := make(map[string]bool, len(in.Employees))
	for _, emp := range in.Employees {
		byRole[emp.Role] = append(byRole[emp.Role], emp.Name)
		roster[emp.Name] = true
	}

	prob := &Problem{
		shifts: in.Shifts,
		days:   in.Days,
		exempt: in.ExemptEmployee,
		roster: roster,
	}

	for day := 0; day < in.Days; day++ {
		weekday := model.Weekday(day)
		for _, shift := range in.Shifts {
			if !shift.Weekdays.Contains(weekday) {
				continue
			}
			official := in.Official.At(shift.ID, day)

			if day <= in.Today {
				// Past days mirror the official grid exactly, occupied
				// or not; the solver never touches them.
				if !official.Empty() {
					prob.locked = append(prob.locked, lockedCell{
						shiftID:  shift.ID,
						day:      day,
						employee: official.Employee,
					})
				}
				continue
			}

			candidates := byRole[shift.Role]
			if len(candidates) == 0 {
				return nil, fmt.Errorf("shift %q requires role %q but no employee has it", shift.ID, shift.Role)
			}

			cell := decisionCell{
				shiftID:    shift.ID,
				day:        day,
				candidates: candidates,
			}
			if !official.Empty() && contains(candidates, official.Employee) {
				cell.hint = official.Employee
			}
			prob.cells = append(prob.cells, cell)
		}
	}

	// Chronological fill order keeps the window constraint checks local
	sort.SliceStable(prob.cells, func(i, j int) bool {
		return prob.cells[i].day < prob.cells[j].day
	})

	for _, sub := range in.SubRequests {
		if !roster[sub.Employee] {
			continue
		}
		if sub.Day < 0 || sub.Day >= in.Days {
			continue
		}
		prob.bonuses = append(prob.bonuses, offBonus{
			employee: sub.Employee,
			day:      sub.Day,
			tokens:   sub.TokensPerDay,
		})
	}

	return prob, nil
}

// CellCount returns the number of slots the solver must decide
func (p *Problem) CellCount() int {
	return len(p.cells)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
