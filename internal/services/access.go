package services

import (
	"github.com/jarinsubahh/buet-exchange/internal/db/models"
)

// AccessDecision is the three-way outcome of the access gate.
type AccessDecision int

const (
	// AccessBlocked: the listing is not approved and the viewer is not an
	// admin. No resource URL may be exposed.
	AccessBlocked AccessDecision = iota
	// AccessPaymentRequired: the listing is a paid item and the viewer has
	// not completed the payment step. Redirect to the payment screen.
	AccessPaymentRequired
	// AccessGranted: render the resource URL and listing metadata.
	AccessGranted
)

func (d AccessDecision) String() string {
	switch d {
	case AccessBlocked:
		return "blocked"
	case AccessPaymentRequired:
		return "payment_required"
	case AccessGranted:
		return "granted"
	}
	return "unknown"
}

// DecideAccess applies the gate in order: approval first, then payment.
// Admins bypass both legs, which also gives them preview of pending and
// rejected content from the moderation queue.
func DecideAccess(listing *models.Listing, viewer SessionUser, paid bool) AccessDecision {
	if listing.Status != models.StatusApproved && !viewer.IsAdmin {
		return AccessBlocked
	}
	if listing.Kind == models.KindSell && !viewer.IsAdmin && !paid {
		return AccessPaymentRequired
	}
	return AccessGranted
}
