package match

import (
	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
)

// ladder is one side's price-ordered collection of buckets. Bids are
// sorted best (highest) price first, asks best (lowest) price first.
//
// A price level is never removed once created: an emptied bucket stays in
// the list as a tombstone so resting index entries remain valid, and the
// read paths elide the leading run of empty buckets instead.
type ladder struct {
	side    Side
	list    *skiplist.SkipList
	byPrice map[string]*skiplist.Element
}

// newBidLadder creates the buy-side ladder (highest price first).
func newBidLadder() *ladder {
	return &ladder{
		side: Buy,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(decimal.Decimal)
			d2, _ := rhs.(decimal.Decimal)
			return d2.Cmp(d1)
		})),
		byPrice: make(map[string]*skiplist.Element),
	}
}

// newAskLadder creates the sell-side ladder (lowest price first).
func newAskLadder() *ladder {
	return &ladder{
		side: Sell,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(decimal.Decimal)
			d2, _ := rhs.(decimal.Decimal)
			return d1.Cmp(d2)
		})),
		byPrice: make(map[string]*skiplist.Element),
	}
}

// bucketFor returns the bucket at the given price, creating the level at
// its sorted position if it does not exist yet.
func (l *ladder) bucketFor(price decimal.Decimal) *orderBucket {
	key := price.String()
	if el, ok := l.byPrice[key]; ok {
		return el.Value.(*orderBucket)
	}
	bucket := newOrderBucket(price)
	l.byPrice[key] = l.list.Set(price, bucket)
	return bucket
}

// walk visits buckets from best price to worst, stopping when fn returns false.
func (l *ladder) walk(fn func(bucket *orderBucket) bool) {
	for el := l.list.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*orderBucket)) {
			return
		}
	}
}

// summary aggregates the ladder into per-price open quantity, best price
// first. Buckets before the first non-empty one are elided; empty buckets
// interleaved with or following live ones are reported with zero quantity.
func (l *ladder) summary() Level2Summary {
	depths := make([]PriceQuantity, 0, l.list.Len())
	seenNonEmpty := false
	l.walk(func(bucket *orderBucket) bool {
		seenNonEmpty = seenNonEmpty || !bucket.empty()
		if seenNonEmpty {
			depths = append(depths, PriceQuantity{Price: bucket.price, Quantity: bucket.quantityInQueue})
		}
		return true
	})
	return Level2Summary{Depths: depths}
}

// snapshotLevels captures per-order queue contents level by level, best
// price first, with the same leading-empty elision as summary.
func (l *ladder) snapshotLevels() []PriceLevelSnapshot {
	levels := make([]PriceLevelSnapshot, 0, l.list.Len())
	seenNonEmpty := false
	l.walk(func(bucket *orderBucket) bool {
		seenNonEmpty = seenNonEmpty || !bucket.empty()
		if seenNonEmpty {
			levels = append(levels, PriceLevelSnapshot{Price: bucket.price, Orders: bucket.openOrders()})
		}
		return true
	})
	return levels
}
