// Package product defines the read-only catalog consumed by the cart engine.
package product

import (
	"context"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrEmptyCatalog is returned when a source yields no products.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Product represents a catalog item available for purchase.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Category string
}

// Source loads the full product catalog. Implementations read from a JSON
// file or a database; the catalog is loaded exactly once at process start.
type Source interface {
	Load(ctx context.Context) ([]Product, error)
}

// Index is an immutable id-indexed view of the catalog. It is built once at
// startup and safely shared across all sessions without synchronization.
type Index struct {
	products   []Product
	byID       map[int64]Product
	categories []string
}

// NewIndex builds an Index from the loaded catalog. Products keep their load
// order; categories are deduplicated and sorted.
func NewIndex(products []Product) *Index {
	byID := make(map[int64]Product, len(products))
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		byID[p.ID] = p
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			categories = append(categories, p.Category)
		}
	}
	slices.Sort(categories)

	return &Index{
		products:   slices.Clone(products),
		byID:       byID,
		categories: categories,
	}
}

// Get returns the product with the given id, if present.
func (idx *Index) Get(id int64) (Product, bool) {
	p, ok := idx.byID[id]
	return p, ok
}

// Len returns the number of products in the catalog.
func (idx *Index) Len() int {
	return len(idx.products)
}

// Categories returns the sorted distinct category names.
func (idx *Index) Categories() []string {
	return idx.categories
}

// Filter returns products matching the given category and case-insensitive
// name substring. An empty category or the literal "All" matches every
// category; an empty query matches every name.
func (idx *Index) Filter(category, query string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	all := category == "" || strings.EqualFold(category, "All")

	out := make([]Product, 0, len(idx.products))
	for _, p := range idx.products {
		if !all && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
