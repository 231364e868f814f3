package model

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// Employee represents a member of the roster
type Employee struct {
	// Name uniquely identifies the employee across all stores
	Name string

	// Role determines which shifts the employee is eligible for
	Role string

	// Email is the address offers and confirmations are sent to.
	// May be empty, in which case offers for this employee are skipped.
	Email string

	// Tokens is the employee's current token balance
	Tokens int
}

// Shift represents an entry in the shift catalog, immutable for a run
type Shift struct {
	// ID uniquely identifies the shift row in the schedule
	ID string

	// Role is the role required to work this shift
	Role string

	// DurationHours is the length of the shift
	DurationHours float64

	// Weekdays is the set of weekdays this shift runs on
	Weekdays WeekdaySet
}

// WeekdaySet is a set of weekday indices 0..6
type WeekdaySet uint8

// Contains reports whether the weekday index is in the set
func (s WeekdaySet) Contains(weekday int) bool {
	return s&(1<<uint(weekday)) != 0
}

// Add returns the set with the weekday index included
func (s WeekdaySet) Add(weekday int) WeekdaySet {
	return s | (1 << uint(weekday))
}

// rruleWeekdayIndex maps rrule weekdays onto our 0..6 day indexing,
// where day index mod 7 == 0 is a Monday
var rruleWeekdayIndex = map[rrule.Weekday]int{
	rrule.MO: 0,
	rrule.TU: 1,
	rrule.WE: 2,
	rrule.TH: 3,
	rrule.FR: 4,
	rrule.SA: 5,
	rrule.SU: 6,
}

// ParseWeekdaySet parses the applicable-weekday column of the shift catalog.
// Two formats are accepted: a digit string of weekday indices ("01234"),
// or a weekly RRULE with a BYDAY clause ("FREQ=WEEKLY;BYDAY=MO,TU,WE").
func ParseWeekdaySet(raw string) (WeekdaySet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty weekday set")
	}

	if strings.Contains(raw, "=") {
		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid weekday rrule %q: %w", raw, err)
		}
		if rule.Options.Freq != rrule.WEEKLY {
			return 0, fmt.Errorf("weekday rrule %q must have FREQ=WEEKLY", raw)
		}
		var set WeekdaySet
		for _, wd := range rule.Options.Byweekday {
			set = set.Add(rruleWeekdayIndex[wd])
		}
		if set == 0 {
			return 0, fmt.Errorf("weekday rrule %q has no BYDAY clause", raw)
		}
		return set, nil
	}

	var set WeekdaySet
	for _, r := range raw {
		if r < '0' || r > '6' {
			return 0, fmt.Errorf("invalid weekday digit %q in %q", r, raw)
		}
		set = set.Add(int(r - '0'))
	}
	return set, nil
}

// Weekday maps a day index within the month onto a weekday index 0..6
func Weekday(day int) int {
	return day % 7
}

// AbsenceRequest is a request to be off work for an inclusive day range,
// prioritized by a token bid. Day indices are 0-based within the month.
type AbsenceRequest struct {
	Employee  string
	StartDay  int
	EndDay    int
	TokensBid int
}

// SubRequest is a single-day expansion of an AbsenceRequest
type SubRequest struct {
	Employee string
	Day      int

	// TokensPerDay is the bid divided evenly across the request's days.
	// The division floors and the remainder is dropped, not redistributed.
	TokensPerDay int
}

// ExpandRequests expands each absence request into one sub-request per
// covered day, carrying floor(bid / dayCount) tokens each. Days outside
// the month window [0, numDays) are discarded.
func ExpandRequests(requests []AbsenceRequest, numDays int) []SubRequest {
	var subs []SubRequest
	for _, req := range requests {
		dayCount := req.EndDay - req.StartDay + 1
		if dayCount <= 0 {
			continue
		}
		tokensPerDay := req.TokensBid / dayCount
		for day := req.StartDay; day <= req.EndDay; day++ {
			if day < 0 || day >= numDays {
				continue
			}
			subs = append(subs, SubRequest{
				Employee:     req.Employee,
				Day:          day,
				TokensPerDay: tokensPerDay,
			})
		}
	}
	return subs
}
