package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdaySet_Digits(t *testing.T) {
	set, err := ParseWeekdaySet("024")
	require.NoError(t, err)

	assert.True(t, set.Contains(0))
	assert.False(t, set.Contains(1))
	assert.True(t, set.Contains(2))
	assert.False(t, set.Contains(3))
	assert.True(t, set.Contains(4))
	assert.False(t, set.Contains(5))
	assert.False(t, set.Contains(6))
}

func TestParseWeekdaySet_AllDays(t *testing.T) {
	set, err := ParseWeekdaySet("0123456")
	require.NoError(t, err)

	for weekday := 0; weekday < 7; weekday++ {
		assert.True(t, set.Contains(weekday), "weekday %d should be in set", weekday)
	}
}

func TestParseWeekdaySet_RRule(t *testing.T) {
	set, err := ParseWeekdaySet("FREQ=WEEKLY;BYDAY=MO,WE,FR")
	require.NoError(t, err)

	assert.True(t, set.Contains(0))
	assert.True(t, set.Contains(2))
	assert.True(t, set.Contains(4))
	assert.False(t, set.Contains(1))
	assert.False(t, set.Contains(5))
	assert.False(t, set.Contains(6))
}

func TestParseWeekdaySet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "out of range digit", raw: "07"},
		{name: "non-digit", raw: "MO"},
		{name: "daily rrule", raw: "FREQ=DAILY"},
		{name: "weekly rrule without byday", raw: "FREQ=WEEKLY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWeekdaySet(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestExpandRequests_SplitsBidAcrossDays(t *testing.T) {
	requests := []AbsenceRequest{
		{Employee: "Alice", StartDay: 4, EndDay: 6, TokensBid: 10},
	}

	subs := ExpandRequests(requests, 30)

	require.Len(t, subs, 3)
	total := 0
	for i, sub := range subs {
		assert.Equal(t, "Alice", sub.Employee)
		assert.Equal(t, 4+i, sub.Day)
		// floor(10 / 3) = 3; the remainder token is dropped
		assert.Equal(t, 3, sub.TokensPerDay)
		total += sub.TokensPerDay
	}
	assert.LessOrEqual(t, total, 10)
}

func TestExpandRequests_SingleDay(t *testing.T) {
	subs := ExpandRequests([]AbsenceRequest{
		{Employee: "Bob", StartDay: 12, EndDay: 12, TokensBid: 7},
	}, 30)

	require.Len(t, subs, 1)
	assert.Equal(t, 7, subs[0].TokensPerDay)
}

func TestExpandRequests_ClipsToMonth(t *testing.T) {
	subs := ExpandRequests([]AbsenceRequest{
		{Employee: "Bob", StartDay: 28, EndDay: 32, TokensBid: 25},
	}, 30)

	// Days 28 and 29 survive; 30..32 fall outside the month
	require.Len(t, subs, 2)
	assert.Equal(t, 28, subs[0].Day)
	assert.Equal(t, 29, subs[1].Day)
	assert.Equal(t, 5, subs[0].TokensPerDay)
}

func TestExpandRequests_InvertedRangeIgnored(t *testing.T) {
	subs := ExpandRequests([]AbsenceRequest{
		{Employee: "Bob", StartDay: 10, EndDay: 8, TokensBid: 5},
	}, 30)

	assert.Empty(t, subs)
}

func TestGrid_SetAndClear(t *testing.T) {
	grid := NewGrid([]string{"Day Shift", "Night Shift"}, 7)

	assert.True(t, grid.At("Day Shift", 3).Empty())

	grid.Set("Day Shift", 3, "Alice")
	assert.Equal(t, "Alice", grid.At("Day Shift", 3).Employee)
	assert.True(t, grid.IsWorking("Alice", 3))
	assert.False(t, grid.IsWorking("Alice", 4))

	grid.Clear("Day Shift", 3)
	assert.True(t, grid.At("Day Shift", 3).Empty())
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	grid := NewGrid([]string{"Day Shift"}, 7)
	grid.Set("Day Shift", 0, "Alice")

	clone := grid.Clone()
	clone.Set("Day Shift", 0, "Bob")
	clone.Set("Day Shift", 1, "Carol")

	assert.Equal(t, "Alice", grid.At("Day Shift", 0).Employee)
	assert.True(t, grid.At("Day Shift", 1).Empty())
	assert.Equal(t, "Bob", clone.At("Day Shift", 0).Employee)
}

func TestGrid_SlotsRowMajor(t *testing.T) {
	grid := NewGrid([]string{"A", "B"}, 2)

	slots := grid.Slots()

	require.Len(t, slots, 4)
	assert.Equal(t, Slot{ShiftID: "A", Day: 0}, slots[0])
	assert.Equal(t, Slot{ShiftID: "A", Day: 1}, slots[1])
	assert.Equal(t, Slot{ShiftID: "B", Day: 0}, slots[2])
	assert.Equal(t, Slot{ShiftID: "B", Day: 1}, slots[3])
}
