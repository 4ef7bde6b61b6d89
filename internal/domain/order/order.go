// Package order orchestrates checkout and contact submissions: it resolves
// the cart into a priced order, fans notifications out over both channels,
// and clears the cart. Orders are ephemeral; they exist only while the
// notifications are being built and sent.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kimhut-cafe/internal/domain/pricing"
)

// Customer holds the contact details captured at checkout time. The fields
// are not persisted beyond the notification payload.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Order is a resolved, priced checkout attempt.
type Order struct {
	ID        string
	Customer  Customer
	Items     []pricing.LineItem
	Subtotal  decimal.Decimal
	CreatedAt time.Time
}

// CheckoutResult is returned to the request handler for display. Checkout is
// reported as successful to the end user regardless of the channel outcomes;
// the booleans only distinguish "notified" from "not notified".
type CheckoutResult struct {
	Order   *Order
	PushOK  bool
	EmailOK bool
}

// ContactResult holds the per-channel outcomes of a contact submission.
type ContactResult struct {
	PushOK bool
	AckOK  bool
}

// Sent reports whether at least one channel delivered. When false the caller
// surfaces a neutral "received, not confirmed" status, not an error.
func (r ContactResult) Sent() bool {
	return r.PushOK || r.AckOK
}
