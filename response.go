package match

import "github.com/shopspring/decimal"

// Execution is one fill between two orders, produced only by matching.
type Execution struct {
	BuyOrderID  int64
	SellOrderID int64
	Quantity    decimal.Decimal
	Price       decimal.Decimal
}

// PriceQuantity is the aggregate open quantity at one price level.
type PriceQuantity struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Level2Summary is the per-price depth of one side, best price first.
type Level2Summary struct {
	Depths []PriceQuantity
}

// Response is the outcome of a single request submitted to the OrderBook.
// Bids/Asks always reflect the book state after the request was applied
// (or, for a failed request, the unchanged state).
type Response struct {
	OrderID    int64
	Bids       Level2Summary
	Asks       Level2Summary
	Executions []Execution
	ErrorMsg   string
}

// IsError reports whether the request failed as a business error.
func (r *Response) IsError() bool {
	return r.ErrorMsg != ""
}
