package offers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Offer statuses
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusDeclined = "DECLINED"
	StatusExpired  = "EXPIRED"
)

// OfferTTL is how long an offer stays open after creation
const OfferTTL = time.Hour

// SystemRequester is the sentinel requester when no absence request won
const SystemRequester = "SYSTEM"

var (
	// ErrMalformedReply means a reply tag could not be parsed
	ErrMalformedReply = errors.New("malformed reply tag")

	// ErrUnknownOffer means a reply referenced an offer id not in the ledger
	ErrUnknownOffer = errors.New("unknown offer id")

	// ErrOfferExpired means a reply arrived after the offer's expiry
	ErrOfferExpired = errors.New("offer expired")

	// ErrOfferResolved means the offer has already left PENDING
	ErrOfferResolved = errors.New("offer already resolved")
)

// Offer is a consent request sent to an employee whose pending schedule
// change reassigns a previously occupied slot to them.
type Offer struct {
	ID        string
	Employee  string
	Requester string
	Changes   []string
	Status    string
	Created   time.Time
	Expiry    time.Time
}

// Action is a reply marker on an inbound reply tag
type Action string

const (
	ActionAccept  Action = "ACCEPT"
	ActionDecline Action = "DECLINE"
)

// ParseReplyTag parses an inbound reply tag of the form <ACTION>-<offerId>
func ParseReplyTag(tag string) (Action, string, error) {
	parts := strings.SplitN(strings.TrimSpace(tag), "-", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReply, tag)
	}

	action := Action(strings.ToUpper(parts[0]))
	if action != ActionAccept && action != ActionDecline {
		return "", "", fmt.Errorf("%w: unknown action in %q", ErrMalformedReply, tag)
	}

	return action, parts[1], nil
}

// Ledger tracks the lifecycle of a run's offers. Replies mutate an offer at
// most once; expiry is evaluated lazily when replies arrive and at finalize,
// never by a background timer.
type Ledger struct {
	offers []*Offer
	byID   map[string]*Offer
}

// NewLedger builds a ledger over a snapshot of offers, preserving their
// listing order.
func NewLedger(offers []Offer) *Ledger {
	l := &Ledger{byID: make(map[string]*Offer, len(offers))}
	for i := range offers {
		o := offers[i]
		l.offers = append(l.offers, &o)
		l.byID[o.ID] = &o
	}
	return l
}

// Offers returns the ledger contents in listing order
func (l *Ledger) Offers() []Offer {
	out := make([]Offer, len(l.offers))
	for i, o := range l.offers {
		out[i] = *o
	}
	return out
}

// Apply records a reply against the ledger. It returns the updated offer,
// or ErrUnknownOffer, ErrOfferResolved, or ErrOfferExpired; in every error
// case no record is mutated.
func (l *Ledger) Apply(action Action, offerID string, now time.Time) (Offer, error) {
	o, ok := l.byID[offerID]
	if !ok {
		return Offer{}, fmt.Errorf("%w: %s", ErrUnknownOffer, offerID)
	}
	if o.Status != StatusPending {
		return *o, fmt.Errorf("%w: %s is %s", ErrOfferResolved, offerID, o.Status)
	}
	if !now.Before(o.Expiry) {
		return *o, fmt.Errorf("%w: %s expired at %s", ErrOfferExpired, offerID, o.Expiry.Format(time.RFC3339))
	}

	switch action {
	case ActionAccept:
		o.Status = StatusAccepted
	case ActionDecline:
		o.Status = StatusDeclined
	default:
		return *o, fmt.Errorf("%w: action %q", ErrMalformedReply, action)
	}
	return *o, nil
}

// Failed returns every offer that did not end up explicitly accepted:
// declined offers and offers still pending at finalize time.
func (l *Ledger) Failed() []Offer {
	var failed []Offer
	for _, o := range l.offers {
		if o.Status == StatusDeclined || o.Status == StatusPending {
			failed = append(failed, *o)
		}
	}
	return failed
}
