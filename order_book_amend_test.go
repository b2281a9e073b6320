package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitAmend(t *testing.T, book *OrderBook, orderID int64, side Side, orderType OrderType, quantity, price int64) *Response {
	t.Helper()
	req, err := BuildAmendRequest(orderID, side, orderType, decimal.NewFromInt(quantity), decimal.NewFromInt(price))
	require.NoError(t, err)
	return book.Submit(req)
}

func TestOrderBookAmendSamePrice(t *testing.T) {
	t.Run("sizing down keeps time priority", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		submitNew(t, book, 1, Buy, Limit, 10, 100)
		submitNew(t, book, 2, Buy, Limit, 10, 100)

		resp := submitAmend(t, book, 1, Buy, Limit, 4, 100)
		require.False(t, resp.IsError())

		snapshot := book.Snapshot()
		require.Len(t, snapshot.Bids, 1)
		require.Len(t, snapshot.Bids[0].Orders, 2)
		assert.Equal(t, int64(1), snapshot.Bids[0].Orders[0].OrderID)
		assert.Equal(t, "4", snapshot.Bids[0].Orders[0].OpenQty.String())
	})

	t.Run("sizing up forfeits time priority", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		submitNew(t, book, 1, Buy, Limit, 10, 100)
		submitNew(t, book, 2, Buy, Limit, 10, 100)

		resp := submitAmend(t, book, 1, Buy, Limit, 15, 100)
		require.False(t, resp.IsError())

		snapshot := book.Snapshot()
		require.Len(t, snapshot.Bids[0].Orders, 2)
		assert.Equal(t, int64(2), snapshot.Bids[0].Orders[0].OrderID)
		assert.Equal(t, int64(1), snapshot.Bids[0].Orders[1].OrderID)
		assert.Equal(t, "15", snapshot.Bids[0].Orders[1].OpenQty.String())
	})

	t.Run("same quantity keeps time priority", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		submitNew(t, book, 1, Buy, Limit, 10, 100)
		submitNew(t, book, 2, Buy, Limit, 10, 100)

		resp := submitAmend(t, book, 1, Buy, Limit, 10, 100)
		require.False(t, resp.IsError())

		snapshot := book.Snapshot()
		assert.Equal(t, int64(1), snapshot.Bids[0].Orders[0].OrderID)
	})
}

func TestOrderBookAmendPriceChange(t *testing.T) {
	t.Run("repriced order joins the back of the new level", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		submitNew(t, book, 1, Buy, Limit, 10, 100)
		submitNew(t, book, 2, Buy, Limit, 10, 101)

		resp := submitAmend(t, book, 1, Buy, Limit, 10, 101)
		require.False(t, resp.IsError())

		snapshot := book.Snapshot()
		require.Len(t, snapshot.Bids[0].Orders, 2)
		assert.Equal(t, int64(2), snapshot.Bids[0].Orders[0].OrderID)
		assert.Equal(t, int64(1), snapshot.Bids[0].Orders[1].OrderID)
	})

	t.Run("repricing across the spread executes immediately", func(t *testing.T) {
		book := createTestOrderBook(t)

		resp := submitAmend(t, book, 1, Buy, Limit, 2, 110)
		require.False(t, resp.IsError())
		require.Len(t, resp.Executions, 1)
		assert.Equal(t, int64(1), resp.Executions[0].BuyOrderID)
		assert.Equal(t, int64(4), resp.Executions[0].SellOrderID)
		assert.Equal(t, "110", resp.Executions[0].Price.String())

		// the unfilled remainder rests at the new price
		require.NotEmpty(t, resp.Bids.Depths)
		assert.Equal(t, "110", resp.Bids.Depths[0].Price.String())
		assert.Equal(t, "1", resp.Bids.Depths[0].Quantity.String())
	})

	t.Run("amend unknown order fails", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		resp := submitAmend(t, book, 42, Buy, Limit, 1, 100)
		assert.True(t, resp.IsError())
		assert.Contains(t, resp.ErrorMsg, "cannot be found")
	})
}

func TestOrderBookAmendMarketOrders(t *testing.T) {
	t.Run("market order resized in the market queue", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		submitNew(t, book, 1, Buy, Market, 5, 0)

		resp := submitAmend(t, book, 1, Buy, Market, 3, 0)
		require.False(t, resp.IsError())

		snapshot := book.Snapshot()
		require.Len(t, snapshot.BidMarketQueue, 1)
		assert.Equal(t, "3", snapshot.BidMarketQueue[0].OpenQty.String())
	})

	t.Run("market to limit re-enters as a priced order", func(t *testing.T) {
		book := NewOrderBook(decimal.NewFromInt(100))
		submitNew(t, book, 1, Buy, Market, 5, 0)

		resp := submitAmend(t, book, 1, Buy, Limit, 5, 95)
		require.False(t, resp.IsError())

		snapshot := book.Snapshot()
		assert.Empty(t, snapshot.BidMarketQueue)
		require.Len(t, snapshot.Bids, 1)
		assert.Equal(t, "95", snapshot.Bids[0].Price.String())
	})

	t.Run("limit to market sweeps the opposite side", func(t *testing.T) {
		book := createTestOrderBook(t)

		resp := submitAmend(t, book, 1, Buy, Market, 4, 0)
		require.False(t, resp.IsError())
		require.Len(t, resp.Executions, 3)
		assert.Equal(t, "130", book.LastPrice().String())

		snapshot := book.Snapshot()
		require.Len(t, snapshot.BidMarketQueue, 1)
		assert.Equal(t, int64(1), snapshot.BidMarketQueue[0].OrderID)
		assert.Equal(t, "1", snapshot.BidMarketQueue[0].OpenQty.String())
	})
}
