// Package jsonfile loads the product catalog from a products.json file.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kimhut-cafe/internal/domain/product"
)

// productJSON mirrors one products.json record. Prices may be JSON numbers
// or strings; decimal handles both.
type productJSON struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// Source reads the catalog from a JSON file on disk.
type Source struct {
	path string
}

var _ product.Source = (*Source)(nil)

// New returns a Source reading from path.
func New(path string) *Source {
	return &Source{path: path}
}

// Load reads and decodes the catalog file.
func (s *Source) Load(_ context.Context) ([]product.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog file %s", s.path)
	}

	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "decode catalog file %s", s.path)
	}
	if len(raw) == 0 {
		return nil, product.ErrEmptyCatalog
	}

	products := make([]product.Product, len(raw))
	for i, p := range raw {
		products[i] = product.Product{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
		}
	}
	return products, nil
}
