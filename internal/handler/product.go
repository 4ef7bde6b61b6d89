package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kimhut-cafe/internal/domain/product"
)

// ListProducts returns the catalog filtered by the optional category and q
// query parameters, plus the category list for navigation.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")

	products := h.catalog.Filter(category, query)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range products {
					encodeProduct(e, p)
				}
			})
		})
		e.Field("categories", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				e.Str("All")
				for _, c := range h.catalog.Categories() {
					e.Str(c)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price.StringFixed(2)) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
	})
}
