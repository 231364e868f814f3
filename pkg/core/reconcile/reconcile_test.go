package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlavelle/wardroster/pkg/core/model"
	"github.com/mlavelle/wardroster/pkg/core/offers"
)

func TestFinalize_AllAcceptedKeepsProposal(t *testing.T) {
	official := model.NewGrid([]string{"Ward"}, 7)
	official.Set("Ward", 5, "Bob")
	proposed := official.Clone()
	proposed.Set("Ward", 5, "Carol")

	outcome := Finalize(official, proposed, nil)

	assert.False(t, outcome.Reverted)
	assert.Empty(t, outcome.FailedRequesters)
	assert.Equal(t, "Carol", outcome.Final.At("Ward", 5).Employee)
}

func TestFinalize_FailedOfferRevertsEveryChangedCell(t *testing.T) {
	official := model.NewGrid([]string{"Ward", "Night"}, 7)
	official.Set("Ward", 5, "Bob")
	official.Set("Night", 2, "Dave")

	proposed := official.Clone()
	proposed.Set("Ward", 5, "Carol")  // offer declined
	proposed.Set("Night", 2, "Erin")  // offer accepted, reverted anyway
	proposed.Set("Night", 3, "Frank") // free move, reverted anyway

	failed := []offers.Offer{
		{ID: "o1", Employee: "Carol", Requester: "Alice", Status: offers.StatusDeclined},
	}

	outcome := Finalize(official, proposed, failed)

	assert.True(t, outcome.Reverted)
	assert.Equal(t, []string{"Alice"}, outcome.FailedRequesters)

	// The rollback is coarse: every changed cell reverts, not just Carol's
	assert.Equal(t, "Bob", outcome.Final.At("Ward", 5).Employee)
	assert.Equal(t, "Dave", outcome.Final.At("Night", 2).Employee)
	assert.True(t, outcome.Final.At("Night", 3).Empty())
}

func TestFinalize_PendingOfferCountsAsFailed(t *testing.T) {
	official := model.NewGrid([]string{"Ward"}, 7)
	official.Set("Ward", 5, "Bob")
	proposed := official.Clone()
	proposed.Set("Ward", 5, "Carol")

	failed := []offers.Offer{
		{ID: "o1", Employee: "Carol", Requester: "Alice", Status: offers.StatusPending},
	}

	outcome := Finalize(official, proposed, failed)

	assert.True(t, outcome.Reverted)
	assert.Equal(t, "Bob", outcome.Final.At("Ward", 5).Employee)
}

func TestFinalize_DeduplicatesRequestersAndSkipsSystem(t *testing.T) {
	official := model.NewGrid([]string{"Ward"}, 7)
	proposed := official.Clone()

	failed := []offers.Offer{
		{ID: "o1", Requester: "Alice", Status: offers.StatusDeclined},
		{ID: "o2", Requester: "Alice", Status: offers.StatusPending},
		{ID: "o3", Requester: offers.SystemRequester, Status: offers.StatusDeclined},
	}

	outcome := Finalize(official, proposed, failed)

	assert.Equal(t, []string{"Alice"}, outcome.FailedRequesters)
}

func TestFinalize_DoesNotMutateInputs(t *testing.T) {
	official := model.NewGrid([]string{"Ward"}, 7)
	official.Set("Ward", 0, "Bob")
	proposed := official.Clone()
	proposed.Set("Ward", 0, "Carol")

	Finalize(official, proposed, []offers.Offer{{ID: "o1", Status: offers.StatusDeclined}})

	assert.Equal(t, "Carol", proposed.At("Ward", 0).Employee)
	assert.Equal(t, "Bob", official.At("Ward", 0).Employee)
}

func TestWinners_FirstDayOfRequestDecides(t *testing.T) {
	final := model.NewGrid([]string{"Ward"}, 10)
	final.Set("Ward", 2, "Alice")

	requests := []model.AbsenceRequest{
		{Employee: "Alice", StartDay: 2, EndDay: 3, TokensBid: 10}, // still working day 2
		{Employee: "Bob", StartDay: 4, EndDay: 4, TokensBid: 5},
		{Employee: "Carol", StartDay: 6, EndDay: 6, TokensBid: 8},
	}

	winners := Winners(final, requests)

	require.Len(t, winners, 2)
	assert.Equal(t, "Bob", winners[0].Employee)
	assert.Equal(t, "Carol", winners[1].Employee)
}

func TestSettle_TransfersFullBidToFirstAcceptedResponder(t *testing.T) {
	final := model.NewGrid([]string{"Ward"}, 10)

	requests := []model.AbsenceRequest{
		{Employee: "Alice", StartDay: 5, EndDay: 6, TokensBid: 10},
	}
	ledger := []offers.Offer{
		{ID: "o1", Employee: "Bob", Requester: "Alice", Status: offers.StatusDeclined},
		{ID: "o2", Employee: "Carol", Requester: "Alice", Status: offers.StatusAccepted},
		{ID: "o3", Employee: "Dave", Requester: "Alice", Status: offers.StatusAccepted},
	}
	balances := map[string]int{"Alice": 50, "Bob": 20, "Carol": 20, "Dave": 20}

	transfers, updated := Settle(final, requests, ledger, balances)

	require.Len(t, transfers, 1)
	assert.Equal(t, Transfer{From: "Alice", To: "Carol", Amount: 10}, transfers[0])

	assert.Equal(t, 40, updated["Alice"])
	assert.Equal(t, 30, updated["Carol"])
	assert.Equal(t, 20, updated["Bob"])
	assert.Equal(t, 20, updated["Dave"])

	// Input balances are untouched; updates go out as one batch
	assert.Equal(t, 50, balances["Alice"])
}

func TestSettle_NoAcceptedOfferMeansNoTransfer(t *testing.T) {
	final := model.NewGrid([]string{"Ward"}, 10)

	requests := []model.AbsenceRequest{
		{Employee: "Alice", StartDay: 5, EndDay: 5, TokensBid: 10},
	}
	ledger := []offers.Offer{
		{ID: "o1", Employee: "Bob", Requester: "Alice", Status: offers.StatusDeclined},
	}
	balances := map[string]int{"Alice": 50, "Bob": 20}

	transfers, updated := Settle(final, requests, ledger, balances)

	assert.Empty(t, transfers)
	assert.Equal(t, balances, updated)
}

func TestSettle_EachWinnerSettlesIndependently(t *testing.T) {
	final := model.NewGrid([]string{"Ward"}, 10)

	requests := []model.AbsenceRequest{
		{Employee: "Alice", StartDay: 1, EndDay: 1, TokensBid: 10},
		{Employee: "Bob", StartDay: 2, EndDay: 2, TokensBid: 4},
	}
	ledger := []offers.Offer{
		{ID: "o1", Employee: "Carol", Requester: "Alice", Status: offers.StatusAccepted},
		{ID: "o2", Employee: "Dave", Requester: "Bob", Status: offers.StatusAccepted},
	}
	balances := map[string]int{"Alice": 10, "Bob": 10, "Carol": 0, "Dave": 0}

	transfers, updated := Settle(final, requests, ledger, balances)

	require.Len(t, transfers, 2)
	assert.Equal(t, 0, updated["Alice"])
	assert.Equal(t, 6, updated["Bob"])
	assert.Equal(t, 10, updated["Carol"])
	assert.Equal(t, 4, updated["Dave"])
}
