package match

import "github.com/shopspring/decimal"

// OrderOpenQty maps an order ID to its open quantity on the book.
type OrderOpenQty struct {
	OrderID int64           `json:"order_id"`
	OpenQty decimal.Decimal `json:"open_qty"`
}

// PriceLevelSnapshot is the full queue content at one price, in time
// priority order (oldest first).
type PriceLevelSnapshot struct {
	Price  decimal.Decimal `json:"price"`
	Orders []OrderOpenQty  `json:"orders"`
}

// OrderBookSnapshot is a full-depth view of the book: per-order open
// quantity at every displayed price level plus the two unpriced market
// order queues. Bid levels run highest price to lowest, ask levels lowest
// to highest; queues within a level run highest time priority first.
type OrderBookSnapshot struct {
	BidMarketQueue []OrderOpenQty       `json:"bid_market_queue"`
	AskMarketQueue []OrderOpenQty       `json:"ask_market_queue"`
	Bids           []PriceLevelSnapshot `json:"bids"`
	Asks           []PriceLevelSnapshot `json:"asks"`
}
