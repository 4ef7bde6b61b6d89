// Package cart implements the session-scoped shopping cart.
//
// A Store maps product ids to quantities and lives only for the duration of
// a session. Line items and subtotals are derived from the raw map on every
// read; nothing priced is ever cached in the cart.
package cart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/kimhut-cafe/internal/domain/pricing"
	"github.com/xenking/kimhut-cafe/internal/domain/product"
)

// Store holds one session's cart: product id -> quantity. Quantities are
// always positive; an entry reaching zero is removed.
//
// A Store is owned by a single session and is not safe for concurrent use.
// Concurrent requests racing on the same session's cart are last-writer-wins,
// an accepted limitation of session-scoped state.
type Store struct {
	entries map[int64]int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{entries: make(map[int64]int)}
}

// Add merges quantity into the entry for the given product id. Callers are
// responsible for rejecting non-numeric input before calling; the cart never
// invents a quantity. A merge result of zero or less removes the entry.
func (s *Store) Add(productID int64, quantity int) {
	q := s.entries[productID] + quantity
	if q <= 0 {
		delete(s.entries, productID)
		return
	}
	s.entries[productID] = q
}

// ReplaceAll replaces the whole cart from a bulk quantity update. Values are
// raw strings as submitted: surrounding whitespace is tolerated, otherwise
// unparsable values are silently skipped, negatives clamp to zero, and
// zero-valued entries are not inserted. Since this is a full replacement,
// supplying "0" for a line deletes it and any id not re-specified is dropped.
func (s *Store) ReplaceAll(raw map[int64]string) {
	next := make(map[int64]int, len(raw))
	for id, val := range raw {
		q, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			continue
		}
		if q > 0 {
			next[id] = q
		}
	}
	s.entries = next
}

// Resolve derives priced line items from the cart using the catalog index.
// Entries whose product id is unknown to the catalog are silently dropped
// from the result; they stay in the raw map until the next ReplaceAll.
// Items are returned sorted by product id so rendered carts and invoices
// are stable.
func (s *Store) Resolve(idx *product.Index) ([]pricing.LineItem, decimal.Decimal) {
	items := make([]pricing.LineItem, 0, len(s.entries))
	for id, qty := range s.entries {
		p, ok := idx.Get(id)
		if !ok {
			continue
		}
		items = append(items, pricing.LineItem{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: pricing.Quantize(p.Price),
			Quantity:  qty,
			LineTotal: pricing.LineTotal(p.Price, qty),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, pricing.Subtotal(items)
}

// Clear resets the cart to empty. Idempotent.
func (s *Store) Clear() {
	s.entries = make(map[int64]int)
}

// TotalQuantity returns the sum of all quantities, for the cart badge.
// Non-positive entries count as zero rather than failing.
func (s *Store) TotalQuantity() int {
	total := 0
	for _, q := range s.entries {
		if q > 0 {
			total += q
		}
	}
	return total
}

// Len returns the number of distinct product entries, including entries not
// resolvable against the catalog.
func (s *Store) Len() int {
	return len(s.entries)
}
