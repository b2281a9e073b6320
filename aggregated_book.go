package match

import (
	"sync"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// AggregatedBook maintains a price-level view of the order book, tracking
// only prices and their aggregated open sizes. It is rebuilt from the
// Level2 summaries attached to responses, so downstream consumers (UIs,
// market-data feeds) can track depth without touching the book itself.
//
// Unlike the book's own ladders, empty price levels are dropped here: the
// aggregated view holds displayable depth only.
type AggregatedBook struct {
	mu  sync.RWMutex
	ask *treemap.TreeMap[decimal.Decimal, decimal.Decimal]
	bid *treemap.TreeMap[decimal.Decimal, decimal.Decimal]
}

// NewAggregatedBook creates an AggregatedBook with empty ask and bid sides.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		ask: treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](func(a, b decimal.Decimal) bool {
			return a.LessThan(b)
		}),
		bid: treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](func(a, b decimal.Decimal) bool {
			return a.LessThan(b)
		}),
	}
}

// Apply replaces the aggregated state with the depth carried by a
// response. Zero-quantity levels in the summary are not stored.
func (ab *AggregatedBook) Apply(resp *Response) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	ab.bid.Clear()
	for _, depth := range resp.Bids.Depths {
		if depth.Quantity.Sign() > 0 {
			ab.bid.Set(depth.Price, depth.Quantity)
		}
	}

	ab.ask.Clear()
	for _, depth := range resp.Asks.Depths {
		if depth.Quantity.Sign() > 0 {
			ab.ask.Set(depth.Price, depth.Quantity)
		}
	}
}

// Depth returns the aggregated size at a price level for the given side,
// or zero if the level has no open quantity.
func (ab *AggregatedBook) Depth(side Side, price decimal.Decimal) decimal.Decimal {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	tree := ab.bid
	if side == Sell {
		tree = ab.ask
	}
	if quantity, ok := tree.Get(price); ok {
		return quantity
	}
	return decimal.Zero
}

// Best returns the best price and its size for the given side. ok is
// false when the side is empty.
func (ab *AggregatedBook) Best(side Side) (price, quantity decimal.Decimal, ok bool) {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	if side == Sell {
		it := ab.ask.Iterator()
		if !it.Valid() {
			return decimal.Zero, decimal.Zero, false
		}
		return it.Key(), it.Value(), true
	}

	it := ab.bid.Reverse()
	if !it.Valid() {
		return decimal.Zero, decimal.Zero, false
	}
	return it.Key(), it.Value(), true
}

// Levels returns the displayable depth of one side, best price first.
func (ab *AggregatedBook) Levels(side Side) []PriceQuantity {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	var levels []PriceQuantity
	if side == Sell {
		for it := ab.ask.Iterator(); it.Valid(); it.Next() {
			levels = append(levels, PriceQuantity{Price: it.Key(), Quantity: it.Value()})
		}
		return levels
	}
	for it := ab.bid.Reverse(); it.Valid(); it.Next() {
		levels = append(levels, PriceQuantity{Price: it.Key(), Quantity: it.Value()})
	}
	return levels
}
