// Package pricing implements exact monetary computation for carts and orders.
//
// All amounts are decimal.Decimal values; binary floating point is never used
// for money. A value that has passed through Quantize carries exactly two
// fraction digits.
package pricing

import (
	"github.com/shopspring/decimal"
)

// LineItem is a priced, named, quantity-resolved cart entry. Line items are
// derived on every read from the raw cart and the catalog; they are never
// stored or cached.
type LineItem struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// Quantize rounds an amount to two fraction digits, half away from zero.
// On the non-negative price domain this is exactly half-up rounding
// (10.005 -> 10.01, 10.004 -> 10.00). Negative inputs round away from zero
// (-0.005 -> -0.01); prices are never negative in practice, but the behavior
// is pinned so callers are not surprised. Quantize is idempotent.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal computes the quantized total for a unit price and quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Quantize(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Subtotal sums the already-quantized line totals of items and quantizes the
// result. The subtotal is defined over quantized line totals, not recomputed
// from raw unit prices; on heterogeneous quantities the two differ at the
// penny level and the former is the contract.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal)
	}
	return Quantize(sum)
}
