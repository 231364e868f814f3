package offers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlavelle/wardroster/pkg/core/model"
)

// Result is the output of diffing a proposed grid against the official one
type Result struct {
	// Offers holds one aggregated consent request per employee who gained
	// at least one previously occupied slot, in first-appearance order.
	Offers []Offer

	// Notes holds informational change descriptions for employees whose
	// slots were taken away. Notes never block finalization.
	Notes map[string][]string

	// FreeMoves are assignments into previously empty slots, auto-applied
	// with no consent required.
	FreeMoves []model.Slot

	// Requester is the winning requester's name, or SystemRequester
	Requester string

	// Reward is the winning request's full token bid
	Reward int
}

// FindWinningRequester scans absence requests in original order and returns
// the first whose requester ends up not working the first day of their
// request in the given grid. Only one winner is selected per run; later
// matches are not separately rewarded.
func FindWinningRequester(grid *model.Grid, requests []model.AbsenceRequest) (model.AbsenceRequest, bool) {
	for _, req := range requests {
		if req.StartDay < 0 || req.StartDay >= grid.Days() {
			continue
		}
		if !grid.IsWorking(req.Employee, req.StartDay) {
			return req, true
		}
	}
	return model.AbsenceRequest{}, false
}

// Generate diffs the proposed grid against the official grid and classifies
// every changed cell: an informational note for the outgoing employee, a
// consent-requiring change for an incoming employee taking an occupied
// slot, or a free move into an empty slot.
func Generate(official, proposed *model.Grid, requests []model.AbsenceRequest, now time.Time) *Result {
	res := &Result{
		Notes:     make(map[string][]string),
		Requester: SystemRequester,
	}

	if winner, ok := FindWinningRequester(proposed, requests); ok {
		res.Requester = winner.Employee
		res.Reward = winner.TokensBid
	}

	// Consent-requiring change descriptions per incoming employee, keyed
	// in first-appearance order so offer listing order is deterministic.
	pending := make(map[string][]string)
	var order []string

	for _, slot := range proposed.Slots() {
		was := official.At(slot.ShiftID, slot.Day)
		is := proposed.At(slot.ShiftID, slot.Day)
		if was == is {
			continue
		}

		dayLabel := slot.Day + 1

		if !was.Empty() {
			to := is.Employee
			if is.Empty() {
				to = "unassigned"
			}
			res.Notes[was.Employee] = append(res.Notes[was.Employee],
				fmt.Sprintf("On day %d, your shift %q was reassigned to %s.", dayLabel, slot.ShiftID, to))
		}

		if is.Empty() {
			continue
		}
		if was.Empty() {
			// Free move: the slot was open, no consent needed
			res.FreeMoves = append(res.FreeMoves, slot)
			continue
		}

		if _, seen := pending[is.Employee]; !seen {
			order = append(order, is.Employee)
		}
		pending[is.Employee] = append(pending[is.Employee],
			fmt.Sprintf("On day %d, you were assigned to shift %q (previously %s).", dayLabel, slot.ShiftID, was.Employee))
	}

	for _, employee := range order {
		res.Offers = append(res.Offers, Offer{
			ID:        uuid.New().String(),
			Employee:  employee,
			Requester: res.Requester,
			Changes:   pending[employee],
			Status:    StatusPending,
			Created:   now,
			Expiry:    now.Add(OfferTTL),
		})
	}

	return res
}
