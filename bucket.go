package match

import "github.com/shopspring/decimal"

// orderEntry is the minimal resting-order record kept inside a bucket:
// the order ID and how much of it is still open.
type orderEntry struct {
	orderID   int64
	remaining decimal.Decimal

	next *orderEntry
	prev *orderEntry
}

func newOrderEntry(orderID int64, quantity decimal.Decimal) *orderEntry {
	return &orderEntry{orderID: orderID, remaining: quantity}
}

// takeQuantity removes up to quantityToTake from the entry's remaining
// quantity and returns how much was actually taken. Remaining never goes
// negative.
func (e *orderEntry) takeQuantity(quantityToTake decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(e.remaining, quantityToTake)
	e.remaining = e.remaining.Sub(taken)
	return taken
}

func (e *orderEntry) isDone() bool {
	return e.remaining.IsZero()
}

// matchedOrder is one resting order hit during a match, with the quantity
// taken from it.
type matchedOrder struct {
	orderID  int64
	quantity decimal.Decimal
}

// matchResult summarizes one crossing against a bucket.
type matchResult struct {
	totalMatched decimal.Decimal
	matched      []matchedOrder
	doneOrderIDs []int64
}

// orderBucket is a FIFO queue of resting orders at a single price.
// A bucket with isMarket set holds unpriced market orders; its price is
// zero and never participates in price comparison.
type orderBucket struct {
	price    decimal.Decimal
	isMarket bool

	quantityInQueue decimal.Decimal
	head            *orderEntry
	tail            *orderEntry
}

func newOrderBucket(price decimal.Decimal) *orderBucket {
	return &orderBucket{price: price}
}

func newMarketOrderBucket() *orderBucket {
	return &orderBucket{isMarket: true}
}

// empty reports whether there is no open quantity waiting in this bucket.
func (b *orderBucket) empty() bool {
	return b.quantityInQueue.IsZero()
}

// enqueue appends the entry at the back of the queue.
func (b *orderBucket) enqueue(entry *orderEntry) bool {
	entry.next = nil
	entry.prev = b.tail
	if b.tail != nil {
		b.tail.next = entry
	} else {
		b.head = entry
	}
	b.tail = entry
	b.quantityInQueue = b.quantityInQueue.Add(entry.remaining)
	return true
}

func (b *orderBucket) unlink(entry *orderEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		b.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		b.tail = entry.prev
	}
	entry.next = nil
	entry.prev = nil
}

func (b *orderBucket) find(orderID int64) *orderEntry {
	for e := b.head; e != nil; e = e.next {
		if e.orderID == orderID {
			return e
		}
	}
	return nil
}

// match crosses the given opposite-side entry against this bucket's queue
// in arrival order, taking as much quantity as possible. Fully exhausted
// resting entries are removed from the queue. The caller is responsible
// for reducing the incoming entry by totalMatched.
func (b *orderBucket) match(opposite *orderEntry) matchResult {
	var matched []matchedOrder
	var doneIDs []int64

	remainingToMatch := opposite.remaining
	entry := b.head
	for entry != nil && remainingToMatch.IsPositive() {
		next := entry.next
		taken := entry.takeQuantity(remainingToMatch)
		if taken.IsPositive() {
			matched = append(matched, matchedOrder{orderID: entry.orderID, quantity: taken})
			remainingToMatch = remainingToMatch.Sub(taken)
			if entry.isDone() {
				b.unlink(entry)
				doneIDs = append(doneIDs, entry.orderID)
			}
		}
		entry = next
	}

	totalMatched := opposite.remaining.Sub(remainingToMatch)
	b.quantityInQueue = b.quantityInQueue.Sub(totalMatched)

	return matchResult{
		totalMatched: totalMatched,
		matched:      matched,
		doneOrderIDs: doneIDs,
	}
}

// cancel removes the order with the given ID, returning whether it was found.
func (b *orderBucket) cancel(orderID int64) bool {
	entry := b.find(orderID)
	if entry == nil {
		return false
	}
	b.unlink(entry)
	// drain the entry for consistency, in case it is referenced elsewhere
	b.quantityInQueue = b.quantityInQueue.Sub(entry.takeQuantity(entry.remaining))
	return true
}

// resize changes the open quantity of the order with the given ID.
// Sizing down (or keeping the same quantity) updates the entry in place
// and retains its queue position; sizing up re-queues a fresh entry at
// the back, forfeiting time priority.
func (b *orderBucket) resize(orderID int64, newQuantity decimal.Decimal) bool {
	entry := b.find(orderID)
	if entry == nil {
		return false
	}

	delta := entry.remaining.Sub(newQuantity)
	if delta.Sign() >= 0 {
		entry.takeQuantity(delta)
		b.quantityInQueue = b.quantityInQueue.Sub(delta)
		return true
	}

	b.quantityInQueue = b.quantityInQueue.Sub(entry.remaining)
	b.unlink(entry)
	return b.enqueue(newOrderEntry(orderID, newQuantity))
}

// openOrders returns (orderID, remaining) pairs in queue order.
func (b *orderBucket) openOrders() []OrderOpenQty {
	orders := make([]OrderOpenQty, 0)
	for e := b.head; e != nil; e = e.next {
		orders = append(orders, OrderOpenQty{OrderID: e.orderID, OpenQty: e.remaining})
	}
	return orders
}
