package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/kimhut-cafe/internal/domain/pricing"
)

// AddToCart merges a quantity into the session cart. The quantity defaults
// to 1 when absent; a non-numeric product id or quantity is rejected here,
// before the cart is touched.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	rawQty := r.FormValue("qty")
	if rawQty == "" {
		rawQty = "1"
	}
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid qty")
		return
	}

	store := h.cart(r)
	store.Add(productID, qty)

	writeCartCount(w, store.TotalQuantity())
}

// UpdateCart performs a bulk quantity replacement from qty_<id> form fields.
// Values stay raw strings here; the cart decides what to skip or clamp.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	raw := make(map[int64]string)
	for key, vals := range r.PostForm {
		id, ok := strings.CutPrefix(key, "qty_")
		if !ok || len(vals) == 0 {
			continue
		}
		productID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		raw[productID] = vals[0]
	}

	store := h.cart(r)
	store.ReplaceAll(raw)

	writeCartCount(w, store.TotalQuantity())
}

// GetCart renders the resolved cart: priced line items, subtotal, and the
// badge count. Resolution is non-destructive.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.cart(r)
	items, subtotal := store.Resolve(h.catalog)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					encodeLineItem(e, it)
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(subtotal.StringFixed(2)) })
		e.Field("cart_count", func(e *jx.Encoder) { e.Int(store.TotalQuantity()) })
	})
	writeJSON(w, http.StatusOK, &e)
}

func encodeLineItem(e *jx.Encoder, it pricing.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(it.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Str(it.UnitPrice.StringFixed(2)) })
		e.Field("qty", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("line_total", func(e *jx.Encoder) { e.Str(it.LineTotal.StringFixed(2)) })
	})
}

func writeCartCount(w http.ResponseWriter, count int) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
		e.Field("cart_count", func(e *jx.Encoder) { e.Int(count) })
	})
	writeJSON(w, http.StatusOK, &e)
}
