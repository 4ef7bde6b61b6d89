package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kimhut-cafe/internal/domain/product"
)

// ProductSource implements product.Source backed by the products table.
type ProductSource struct {
	pool *pgxpool.Pool
}

var _ product.Source = (*ProductSource)(nil)

// NewProductSource returns a ProductSource that uses the given pool.
func NewProductSource(pool *pgxpool.Pool) *ProductSource {
	return &ProductSource{pool: pool}
}

// Load reads the full catalog in id order.
func (s *ProductSource) Load(ctx context.Context) ([]product.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, price, category FROM products ORDER BY id`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	if len(products) == 0 {
		return nil, product.ErrEmptyCatalog
	}
	return products, nil
}

// Upsert inserts or updates one catalog record. Used by the seed tool.
func (s *ProductSource) Upsert(ctx context.Context, p product.Product) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO products (id, name, price, category)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category`,
		p.ID, p.Name, p.Price, p.Category,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert product %d", p.ID)
	}
	return nil
}
