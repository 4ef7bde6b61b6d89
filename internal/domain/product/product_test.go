package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Product {
	return []Product{
		{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("2.50"), Category: "Coffee"},
		{ID: 2, Name: "Iced Latte", Price: decimal.RequireFromString("4.00"), Category: "Coffee"},
		{ID: 3, Name: "Croissant", Price: decimal.RequireFromString("4.50"), Category: "Bakery"},
	}
}

func TestIndex_Get(t *testing.T) {
	idx := NewIndex(testCatalog())

	p, ok := idx.Get(3)
	require.True(t, ok)
	assert.Equal(t, "Croissant", p.Name)

	_, ok = idx.Get(99)
	assert.False(t, ok)
}

func TestIndex_Categories(t *testing.T) {
	idx := NewIndex(testCatalog())
	assert.Equal(t, []string{"Bakery", "Coffee"}, idx.Categories())
}

func TestIndex_Filter(t *testing.T) {
	idx := NewIndex(testCatalog())

	assert.Len(t, idx.Filter("", ""), 3)
	assert.Len(t, idx.Filter("All", ""), 3)
	assert.Len(t, idx.Filter("coffee", ""), 2)
	assert.Len(t, idx.Filter("Bakery", ""), 1)
	assert.Len(t, idx.Filter("", "LATTE"), 1)
	assert.Len(t, idx.Filter("Coffee", "latte"), 1)
	assert.Empty(t, idx.Filter("Bakery", "latte"))
	assert.Empty(t, idx.Filter("Tea", ""))
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Categories())
	assert.Empty(t, idx.Filter("", ""))
}
