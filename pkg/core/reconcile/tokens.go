package reconcile

import (
	"github.com/mlavelle/wardroster/pkg/core/model"
	"github.com/mlavelle/wardroster/pkg/core/offers"
)

// Transfer moves the full bid of a winning absence request from the
// requester to the employee who covered for them. Amounts are never partial.
type Transfer struct {
	From   string
	To     string
	Amount int
}

// Winners returns, in original request order, every requester who ends up
// not working the first day of their request in the final grid.
func Winners(final *model.Grid, requests []model.AbsenceRequest) []model.AbsenceRequest {
	var winners []model.AbsenceRequest
	for _, req := range requests {
		if req.StartDay < 0 || req.StartDay >= final.Days() {
			continue
		}
		if !final.IsWorking(req.Employee, req.StartDay) {
			winners = append(winners, req)
		}
	}
	return winners
}

// Settle computes the token transfers for a finalized run. For each winning
// requester, the first ACCEPTED offer in ledger listing order whose
// requester matches identifies the rewarded employee; the full bid moves
// from requester to that employee. A winner with no accepted offer pays
// nothing and rewards no one.
//
// The returned balances map is a copy with all transfers applied, suitable
// for a single batch write.
func Settle(final *model.Grid, requests []model.AbsenceRequest, ledger []offers.Offer, balances map[string]int) ([]Transfer, map[string]int) {
	updated := make(map[string]int, len(balances))
	for name, tokens := range balances {
		updated[name] = tokens
	}

	var transfers []Transfer
	for _, winner := range Winners(final, requests) {
		recipient := firstAcceptedFor(ledger, winner.Employee)
		if recipient == "" {
			continue
		}
		updated[winner.Employee] -= winner.TokensBid
		updated[recipient] += winner.TokensBid
		transfers = append(transfers, Transfer{
			From:   winner.Employee,
			To:     recipient,
			Amount: winner.TokensBid,
		})
	}

	return transfers, updated
}

func firstAcceptedFor(ledger []offers.Offer, requester string) string {
	for _, offer := range ledger {
		if offer.Requester == requester && offer.Status == offers.StatusAccepted {
			return offer.Employee
		}
	}
	return ""
}
