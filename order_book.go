package match

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderBook holds the bid/ask queues of one instrument. It tracks the
// minimal amount of information per resting order: the order ID and its
// remaining quantity.
//
// There is a single point of entry, Submit, which handles new, amend and
// cancel requests.
//
// The OrderBook is not safe for concurrent use; it performs no internal
// locking and must only ever be driven by one goroutine. MatchingEngine
// provides the thread-safe wrapper.
type OrderBook struct {
	bids *ladder
	asks *ladder

	// residual market orders queue here after wiping out the other side;
	// NYSE does not display them, Japan rejects them instead
	buyMarketBucket  *orderBucket
	sellMarketBucket *orderBucket

	// which bucket currently holds each resting order
	orderIndex map[int64]*orderBucket

	// last executed trade price, seeded with the reference price; used to
	// price a cross between two market orders
	lastPrice decimal.Decimal
}

// NewOrderBook creates an order book seeded with the instrument's
// reference price (the last traded price, or the IPO reference price).
func NewOrderBook(referencePrice decimal.Decimal) *OrderBook {
	return &OrderBook{
		bids:             newBidLadder(),
		asks:             newAskLadder(),
		buyMarketBucket:  newMarketOrderBucket(),
		sellMarketBucket: newMarketOrderBucket(),
		orderIndex:       make(map[int64]*orderBucket),
		lastPrice:        referencePrice,
	}
}

// LastPrice returns the price of the most recent execution, or the
// reference price if nothing has traded yet.
func (book *OrderBook) LastPrice() decimal.Decimal {
	return book.lastPrice
}

// Submit applies a single request to the book and returns the outcome
// together with the post-request depth of both sides.
//
// Business failures (unknown order ID) come back as error responses with
// the book untouched. An unrecognized request kind is a programming
// error and panics.
func (book *OrderBook) Submit(request Request) *Response {
	var resp *Response
	switch req := request.(type) {
	case *NewRequest:
		resp = book.handleNew(req)
	case *AmendRequest:
		resp = book.handleAmend(req)
	case *CancelRequest:
		resp = book.handleCancel(req)
	default:
		panic(fmt.Sprintf("unsupported request type %T for order ID %d", request, request.RequestOrderID()))
	}

	resp.Bids = book.bids.summary()
	resp.Asks = book.asks.summary()
	return resp
}

func (book *OrderBook) handleNew(req *NewRequest) *Response {
	entry := newOrderEntry(req.OrderID, req.Quantity)
	isMarket := req.OrderType.IsMarket()

	var ownLadder, targetLadder *ladder
	var ownMarketBucket, targetMarketBucket *orderBucket
	var crosses func(bucketPrice decimal.Decimal) bool
	if req.Side == Buy {
		ownLadder, targetLadder = book.bids, book.asks
		ownMarketBucket, targetMarketBucket = book.buyMarketBucket, book.sellMarketBucket
		crosses = func(bucketPrice decimal.Decimal) bool { return bucketPrice.LessThanOrEqual(req.Price) }
	} else {
		ownLadder, targetLadder = book.asks, book.bids
		ownMarketBucket, targetMarketBucket = book.sellMarketBucket, book.buyMarketBucket
		crosses = func(bucketPrice decimal.Decimal) bool { return bucketPrice.GreaterThanOrEqual(req.Price) }
	}

	var executions []Execution

	// cross with any market order resting on the other side first
	if !targetMarketBucket.empty() {
		execPrice := req.Price
		if isMarket {
			execPrice = book.lastPrice
		}
		executions = append(executions, book.matchAgainstBucket(entry, req.Side, targetMarketBucket, execPrice)...)
	}

	// then walk the opposite limit queue from the best price out
	if !entry.isDone() {
		targetLadder.walk(func(bucket *orderBucket) bool {
			if !isMarket && !crosses(bucket.price) {
				return false
			}
			if !bucket.empty() {
				executions = append(executions, book.matchAgainstBucket(entry, req.Side, bucket, bucket.price)...)
			}
			return !entry.isDone()
		})
	}

	if len(executions) > 0 {
		book.lastPrice = executions[len(executions)-1].Price
	}

	// queue whatever is left
	if !entry.isDone() {
		bucket := ownMarketBucket
		if !isMarket {
			bucket = ownLadder.bucketFor(req.Price)
		}
		if !bucket.enqueue(entry) {
			return &Response{
				OrderID:    req.OrderID,
				Executions: executions,
				ErrorMsg:   fmt.Sprintf("unable to queue new order '%d'", req.OrderID),
			}
		}
		book.orderIndex[req.OrderID] = bucket
	}

	return &Response{OrderID: req.OrderID, Executions: executions}
}

// matchAgainstBucket crosses the incoming entry with the bucket's queue at
// the given execution price, reduces the incoming entry by the matched
// quantity, and drops fully filled resting orders from the order index.
// Buy/sell order IDs on each execution are assigned by side, regardless
// of which one was the aggressor.
func (book *OrderBook) matchAgainstBucket(entry *orderEntry, side Side, bucket *orderBucket, execPrice decimal.Decimal) []Execution {
	result := bucket.match(entry)
	if !result.totalMatched.IsPositive() {
		return nil
	}
	entry.takeQuantity(result.totalMatched)

	for _, doneID := range result.doneOrderIDs {
		delete(book.orderIndex, doneID)
	}

	executions := make([]Execution, 0, len(result.matched))
	for _, m := range result.matched {
		exec := Execution{Quantity: m.quantity, Price: execPrice}
		if side == Buy {
			exec.BuyOrderID, exec.SellOrderID = entry.orderID, m.orderID
		} else {
			exec.BuyOrderID, exec.SellOrderID = m.orderID, entry.orderID
		}
		executions = append(executions, exec)
	}
	return executions
}

func (book *OrderBook) handleCancel(req *CancelRequest) *Response {
	bucket, ok := book.orderIndex[req.OrderID]
	if !ok {
		return &Response{
			OrderID:  req.OrderID,
			ErrorMsg: fmt.Sprintf("order not found for ID '%d'", req.OrderID),
		}
	}

	cancelled := bucket.cancel(req.OrderID)
	delete(book.orderIndex, req.OrderID)
	if !cancelled {
		return &Response{
			OrderID:  req.OrderID,
			ErrorMsg: fmt.Sprintf("the given order ID '%d' cannot be found", req.OrderID),
		}
	}
	return &Response{OrderID: req.OrderID}
}

func (book *OrderBook) handleAmend(req *AmendRequest) *Response {
	bucket, ok := book.orderIndex[req.OrderID]
	if !ok {
		return &Response{
			OrderID:  req.OrderID,
			ErrorMsg: fmt.Sprintf("the given order ID '%d' cannot be found", req.OrderID),
		}
	}

	// order currently rests as a market order
	if bucket.isMarket {
		if req.OrderType.IsMarket() {
			return book.resizeInBucket(bucket, req.OrderID, req.NewQuantity)
		}
		// market to limit goes through cancel + new and may execute immediately
		return book.cancelThenNew(bucket, req)
	}

	// same price: resize in place, keeping time priority unless sized up
	if bucket.price.Equal(req.NewPrice) {
		return book.resizeInBucket(bucket, req.OrderID, req.NewQuantity)
	}

	// price or type change forfeits queue position
	return book.cancelThenNew(bucket, req)
}

func (book *OrderBook) resizeInBucket(bucket *orderBucket, orderID int64, newQuantity decimal.Decimal) *Response {
	if !bucket.resize(orderID, newQuantity) {
		return &Response{
			OrderID:  orderID,
			ErrorMsg: fmt.Sprintf("the given order ID '%d' cannot be found", orderID),
		}
	}
	return &Response{OrderID: orderID}
}

func (book *OrderBook) cancelThenNew(bucket *orderBucket, req *AmendRequest) *Response {
	if !bucket.cancel(req.OrderID) {
		return &Response{
			OrderID:  req.OrderID,
			ErrorMsg: fmt.Sprintf("failed to amend the given order ID '%d'", req.OrderID),
		}
	}
	delete(book.orderIndex, req.OrderID)

	return book.handleNew(&NewRequest{
		OrderID:   req.OrderID,
		Side:      req.Side,
		OrderType: req.OrderType,
		Quantity:  req.NewQuantity,
		Price:     req.NewPrice,
	})
}

// Snapshot captures the full per-order depth of the book, including the
// two market order queues, in time priority order.
func (book *OrderBook) Snapshot() *OrderBookSnapshot {
	return &OrderBookSnapshot{
		BidMarketQueue: book.buyMarketBucket.openOrders(),
		AskMarketQueue: book.sellMarketBucket.openOrders(),
		Bids:           book.bids.snapshotLevels(),
		Asks:           book.asks.snapshotLevels(),
	}
}
