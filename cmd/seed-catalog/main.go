// Command seed-catalog loads a products.json file into the PostgreSQL
// catalog table, creating the schema if needed. Existing products are
// updated in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kimhut-cafe/internal/domain/product"
	"github.com/xenking/kimhut-cafe/internal/storage/postgres"
)

type productJSON struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

func main() {
	var (
		productsFile string
		databaseURL  string
	)

	flag.StringVar(&productsFile, "products", "products.json", "path to the products JSON file")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, productsFile, databaseURL); err != nil {
		slog.Error("catalog seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog seed completed successfully")
}

func run(ctx context.Context, productsFile, databaseURL string) error {
	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrapf(err, "read %s", productsFile)
	}

	var records []productJSON
	if err := json.Unmarshal(data, &records); err != nil {
		return errors.Wrapf(err, "decode %s", productsFile)
	}
	if len(records) == 0 {
		return errors.Errorf("%s contains no products", productsFile)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	src := postgres.NewProductSource(pool)
	for _, r := range records {
		p := product.Product{
			ID:       r.ID,
			Name:     r.Name,
			Price:    r.Price,
			Category: r.Category,
		}
		if err := src.Upsert(ctx, p); err != nil {
			return err
		}
	}

	slog.Info("products seeded", slog.Int("count", len(records)))
	return nil
}
