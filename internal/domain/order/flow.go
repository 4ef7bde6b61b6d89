package order

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/kimhut-cafe/internal/domain/cart"
	"github.com/xenking/kimhut-cafe/internal/domain/product"
	"github.com/xenking/kimhut-cafe/internal/notify"
)

// Dispatcher fans one notification out over both channels. Satisfied by
// *notify.Dispatcher; tests inject fakes.
type Dispatcher interface {
	DispatchBoth(ctx context.Context, pushText string, email notify.Email) notify.Outcome
}

// Flow drives a checkout or contact submission end to end. Each attempt is
// handled synchronously: resolve, notify, clear. There is no retry and no
// rollback; delivery is best-effort by design.
type Flow struct {
	catalog  *product.Index
	dispatch Dispatcher
	now      func() time.Time
}

// NewFlow creates a Flow over the immutable catalog index.
func NewFlow(catalog *product.Index, dispatch Dispatcher) *Flow {
	return &Flow{
		catalog:  catalog,
		dispatch: dispatch,
		now:      time.Now,
	}
}

// Checkout resolves the session cart into a priced order, dispatches the
// order summary over both channels, and unconditionally clears the cart.
// The cart is cleared even when both channels fail; an order can be lost
// from the business's perspective if both are down, which is the accepted
// contract of this flow.
func (f *Flow) Checkout(ctx context.Context, customer Customer, store *cart.Store) CheckoutResult {
	items, subtotal := store.Resolve(f.catalog)

	o := &Order{
		ID:        uuid.New().String(),
		Customer:  customer,
		Items:     items,
		Subtotal:  subtotal,
		CreatedAt: f.now(),
	}

	out := f.dispatch.DispatchBoth(ctx, orderPushText(o), notify.Email{
		Recipient: customer.Email,
		Subject:   invoiceSubject,
		Body:      invoiceBody(o),
	})

	store.Clear()

	if !out.Any() {
		zctx.From(ctx).Error("order notifications undelivered",
			zap.String("order_id", o.ID),
			zap.Int("items", len(o.Items)),
		)
	}

	return CheckoutResult{
		Order:   o,
		PushOK:  out.PushOK,
		EmailOK: out.EmailOK,
	}
}

// SubmitContact dispatches an operator-facing push notification and a
// customer-facing acknowledgment email, independently.
func (f *Flow) SubmitContact(ctx context.Context, name, email, message string) ContactResult {
	out := f.dispatch.DispatchBoth(ctx, contactPushText(name, email, message), notify.Email{
		Recipient: email,
		Subject:   contactAckSubject,
		Body:      contactAckBody(name, message),
	})

	return ContactResult{
		PushOK: out.PushOK,
		AckOK:  out.EmailOK,
	}
}
