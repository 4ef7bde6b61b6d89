package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kimhut-cafe/internal/domain/order"
)

// Checkout converts the session cart into an order and fans out the
// notifications. Checkout always succeeds from the end user's perspective;
// the notified flags only say whether anyone heard about it.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	customer := order.Customer{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		Address: r.FormValue("address"),
	}

	res := h.flow.Checkout(r.Context(), customer, h.cart(r))

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
		e.Field("order_id", func(e *jx.Encoder) { e.Str(res.Order.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range res.Order.Items {
					encodeLineItem(e, it)
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(res.Order.Subtotal.StringFixed(2)) })
		e.Field("notified", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("push", func(e *jx.Encoder) { e.Bool(res.PushOK) })
				e.Field("email", func(e *jx.Encoder) { e.Bool(res.EmailOK) })
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}
