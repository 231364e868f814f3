package model

// Cell is a single slot in an assignment grid. The zero value means the
// slot is unassigned; an empty-string sentinel never leaks out of this type.
type Cell struct {
	Employee string
}

// Empty reports whether the cell has no employee assigned
func (c Cell) Empty() bool {
	return c.Employee == ""
}

// Slot identifies a (shift, day) position in a grid
type Slot struct {
	ShiftID string
	Day     int
}

// Grid is an assignment grid keyed by shift row and day column.
// Two instances exist per run: the official (binding) grid and the
// proposed (sandbox) grid, always the same shape.
type Grid struct {
	shiftIDs []string
	days     int
	cells    map[Slot]Cell
}

// NewGrid creates an empty grid with the given shift rows and day count
func NewGrid(shiftIDs []string, days int) *Grid {
	ids := make([]string, len(shiftIDs))
	copy(ids, shiftIDs)
	return &Grid{
		shiftIDs: ids,
		days:     days,
		cells:    make(map[Slot]Cell),
	}
}

// ShiftIDs returns the shift rows in row order
func (g *Grid) ShiftIDs() []string {
	return g.shiftIDs
}

// Days returns the number of day columns
func (g *Grid) Days() int {
	return g.days
}

// At returns the cell at the given slot
func (g *Grid) At(shiftID string, day int) Cell {
	return g.cells[Slot{ShiftID: shiftID, Day: day}]
}

// Set assigns an employee to the given slot
func (g *Grid) Set(shiftID string, day int, employee string) {
	g.cells[Slot{ShiftID: shiftID, Day: day}] = Cell{Employee: employee}
}

// Clear empties the given slot
func (g *Grid) Clear(shiftID string, day int) {
	delete(g.cells, Slot{ShiftID: shiftID, Day: day})
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	clone := NewGrid(g.shiftIDs, g.days)
	for slot, cell := range g.cells {
		clone.cells[slot] = cell
	}
	return clone
}

// Slots returns every (shift, day) position in row-major order:
// all days of the first shift row, then the second, and so on.
func (g *Grid) Slots() []Slot {
	slots := make([]Slot, 0, len(g.shiftIDs)*g.days)
	for _, shiftID := range g.shiftIDs {
		for day := 0; day < g.days; day++ {
			slots = append(slots, Slot{ShiftID: shiftID, Day: day})
		}
	}
	return slots
}

// IsWorking reports whether the employee is assigned to any shift on the day
func (g *Grid) IsWorking(employee string, day int) bool {
	for _, shiftID := range g.shiftIDs {
		if g.At(shiftID, day).Employee == employee {
			return true
		}
	}
	return false
}
