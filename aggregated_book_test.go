package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depthResponse() *Response {
	return &Response{
		Bids: Level2Summary{Depths: []PriceQuantity{
			{Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(3)},
			{Price: decimal.NewFromInt(99), Quantity: decimal.Zero},
			{Price: decimal.NewFromInt(98), Quantity: decimal.NewFromInt(7)},
		}},
		Asks: Level2Summary{Depths: []PriceQuantity{
			{Price: decimal.NewFromInt(101), Quantity: decimal.NewFromInt(5)},
			{Price: decimal.NewFromInt(102), Quantity: decimal.NewFromInt(2)},
		}},
	}
}

func TestAggregatedBookApply(t *testing.T) {
	book := NewAggregatedBook()
	book.Apply(depthResponse())

	assert.Equal(t, "3", book.Depth(Buy, decimal.NewFromInt(100)).String())
	assert.Equal(t, "7", book.Depth(Buy, decimal.NewFromInt(98)).String())
	assert.Equal(t, "5", book.Depth(Sell, decimal.NewFromInt(101)).String())

	t.Run("zero quantity levels are not stored", func(t *testing.T) {
		assert.True(t, book.Depth(Buy, decimal.NewFromInt(99)).IsZero())
		assert.Len(t, book.Levels(Buy), 2)
	})

	t.Run("a later apply replaces the previous state", func(t *testing.T) {
		book.Apply(&Response{
			Asks: Level2Summary{Depths: []PriceQuantity{
				{Price: decimal.NewFromInt(105), Quantity: decimal.NewFromInt(1)},
			}},
		})

		assert.True(t, book.Depth(Buy, decimal.NewFromInt(100)).IsZero())
		assert.Equal(t, "1", book.Depth(Sell, decimal.NewFromInt(105)).String())
	})
}

func TestAggregatedBookBest(t *testing.T) {
	book := NewAggregatedBook()

	_, _, ok := book.Best(Buy)
	assert.False(t, ok)

	book.Apply(depthResponse())

	price, quantity, ok := book.Best(Buy)
	require.True(t, ok)
	assert.Equal(t, "100", price.String())
	assert.Equal(t, "3", quantity.String())

	price, quantity, ok = book.Best(Sell)
	require.True(t, ok)
	assert.Equal(t, "101", price.String())
	assert.Equal(t, "5", quantity.String())
}

func TestAggregatedBookLevels(t *testing.T) {
	book := NewAggregatedBook()
	book.Apply(depthResponse())

	bids := book.Levels(Buy)
	require.Len(t, bids, 2)
	assert.Equal(t, "100", bids[0].Price.String())
	assert.Equal(t, "98", bids[1].Price.String())

	asks := book.Levels(Sell)
	require.Len(t, asks, 2)
	assert.Equal(t, "101", asks[0].Price.String())
	assert.Equal(t, "102", asks[1].Price.String())

	assert.Empty(t, NewAggregatedBook().Levels(Buy))
}
