// Package handler wires the HTTP surface onto the cart and order core. The
// handlers are thin glue: form parsing in, jx-encoded JSON out, with all
// business behavior delegated to the domain packages.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kimhut-cafe/internal/domain/cart"
	"github.com/xenking/kimhut-cafe/internal/domain/order"
	"github.com/xenking/kimhut-cafe/internal/domain/product"
	"github.com/xenking/kimhut-cafe/pkg/httpmiddleware"
)

// Handler serves the shop API.
type Handler struct {
	catalog *product.Index
	carts   *cart.Registry
	flow    *order.Flow
}

// New constructs a Handler over the catalog, the session cart registry, and
// the order flow.
func New(catalog *product.Index, carts *cart.Registry, flow *order.Flow) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		flow:    flow,
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart", h.AddToCart)
	mux.HandleFunc("POST /api/cart/update", h.UpdateCart)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("POST /api/contact", h.SubmitContact)
}

// cart returns the request session's cart store.
func (h *Handler) cart(r *http.Request) *cart.Store {
	return h.carts.Get(httpmiddleware.SessionFromContext(r.Context()))
}

// writeJSON sends the encoded object with the given status.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError sends a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, &e)
}
