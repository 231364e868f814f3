package reconcile

import (
	"github.com/mlavelle/wardroster/pkg/core/model"
	"github.com/mlavelle/wardroster/pkg/core/offers"
)

// Outcome is the result of finalizing a run
type Outcome struct {
	// Final is the reconciled grid, the new binding schedule candidate
	Final *model.Grid

	// Reverted reports whether any proposed changes were rolled back
	Reverted bool

	// FailedRequesters are the requesters tied to failed offers, deduplicated
	// in listing order. The SYSTEM sentinel is never included.
	FailedRequesters []string
}

// Finalize settles the proposed grid against the offer ledger. Offers that
// are declined, or still pending once their window has lapsed, fail the run:
// every cell differing from the official grid is reverted.
//
// The rollback is deliberately coarse: one failed offer reverts the entire
// changed-cell set of the run, not just the cells tied to that offer's
// recipient. Accepted changes sharing the grid with a failed offer are
// rolled back with it.
func Finalize(official, proposed *model.Grid, failed []offers.Offer) *Outcome {
	outcome := &Outcome{Final: proposed.Clone()}

	if len(failed) == 0 {
		return outcome
	}
	outcome.Reverted = true

	seen := make(map[string]bool)
	for _, offer := range failed {
		if offer.Requester == offers.SystemRequester || seen[offer.Requester] {
			continue
		}
		seen[offer.Requester] = true
		outcome.FailedRequesters = append(outcome.FailedRequesters, offer.Requester)
	}

	for _, slot := range proposed.Slots() {
		was := official.At(slot.ShiftID, slot.Day)
		is := proposed.At(slot.ShiftID, slot.Day)
		if was == is {
			continue
		}
		if was.Empty() {
			outcome.Final.Clear(slot.ShiftID, slot.Day)
		} else {
			outcome.Final.Set(slot.ShiftID, slot.Day, was.Employee)
		}
	}

	return outcome
}
