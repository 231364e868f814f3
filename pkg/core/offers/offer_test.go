package offers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOffer(id string, created time.Time) Offer {
	return Offer{
		ID:      id,
		Status:  StatusPending,
		Created: created,
		Expiry:  created.Add(OfferTTL),
	}
}

func TestParseReplyTag(t *testing.T) {
	tests := []struct {
		name       string
		tag        string
		wantAction Action
		wantID     string
		wantErr    bool
	}{
		{name: "accept", tag: "ACCEPT-abc-123", wantAction: ActionAccept, wantID: "abc-123"},
		{name: "decline", tag: "DECLINE-abc", wantAction: ActionDecline, wantID: "abc"},
		{name: "lowercase action", tag: "accept-abc", wantAction: ActionAccept, wantID: "abc"},
		{name: "surrounding space", tag: "  ACCEPT-abc  ", wantAction: ActionAccept, wantID: "abc"},
		{name: "no separator", tag: "ACCEPTabc", wantErr: true},
		{name: "empty id", tag: "ACCEPT-", wantErr: true},
		{name: "unknown action", tag: "MAYBE-abc", wantErr: true},
		{name: "empty", tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, id, err := ParseReplyTag(tt.tag)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedReply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestLedger_AcceptBeforeExpiry(t *testing.T) {
	created := time.Now()
	ledger := NewLedger([]Offer{pendingOffer("o1", created)})

	offer, err := ledger.Apply(ActionAccept, "o1", created.Add(30*time.Minute))

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, offer.Status)
	assert.Equal(t, StatusAccepted, ledger.Offers()[0].Status)
}

func TestLedger_DeclineBeforeExpiry(t *testing.T) {
	created := time.Now()
	ledger := NewLedger([]Offer{pendingOffer("o1", created)})

	offer, err := ledger.Apply(ActionDecline, "o1", created.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, offer.Status)
}

func TestLedger_ReplyAfterExpiryRejected(t *testing.T) {
	created := time.Now().Add(-2 * time.Hour)
	ledger := NewLedger([]Offer{pendingOffer("o1", created)})

	_, err := ledger.Apply(ActionAccept, "o1", time.Now())

	assert.ErrorIs(t, err, ErrOfferExpired)
	assert.Equal(t, StatusPending, ledger.Offers()[0].Status, "expired offer must not be mutated")
}

func TestLedger_ReplyAtExactExpiryRejected(t *testing.T) {
	created := time.Now()
	ledger := NewLedger([]Offer{pendingOffer("o1", created)})

	_, err := ledger.Apply(ActionAccept, "o1", created.Add(OfferTTL))

	assert.ErrorIs(t, err, ErrOfferExpired)
}

func TestLedger_UnknownOfferSkipped(t *testing.T) {
	ledger := NewLedger([]Offer{pendingOffer("o1", time.Now())})

	_, err := ledger.Apply(ActionAccept, "missing", time.Now())

	assert.ErrorIs(t, err, ErrUnknownOffer)
}

func TestLedger_SecondReplyRejected(t *testing.T) {
	created := time.Now()
	ledger := NewLedger([]Offer{pendingOffer("o1", created)})

	_, err := ledger.Apply(ActionAccept, "o1", created.Add(time.Minute))
	require.NoError(t, err)

	_, err = ledger.Apply(ActionDecline, "o1", created.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrOfferResolved)
	assert.Equal(t, StatusAccepted, ledger.Offers()[0].Status)
}

func TestLedger_FailedIsDeclinedPlusPending(t *testing.T) {
	created := time.Now()
	ledger := NewLedger([]Offer{
		pendingOffer("accepted", created),
		pendingOffer("declined", created),
		pendingOffer("ignored", created),
	})

	_, err := ledger.Apply(ActionAccept, "accepted", created.Add(time.Minute))
	require.NoError(t, err)
	_, err = ledger.Apply(ActionDecline, "declined", created.Add(time.Minute))
	require.NoError(t, err)

	failed := ledger.Failed()

	require.Len(t, failed, 2)
	ids := []string{failed[0].ID, failed[1].ID}
	assert.Contains(t, ids, "declined")
	assert.Contains(t, ids, "ignored")
}
