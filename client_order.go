package match

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one completed execution as seen by the client layer.
type Trade struct {
	ExecQty      decimal.Decimal
	TradePx      decimal.Decimal
	TransactTime time.Time
}

// orderState is the immutable snapshot of a ClientOrder's mutable fields.
// Every business event replaces the whole record so concurrent readers
// never observe a torn update.
type orderState struct {
	clOrdID     string
	origClOrdID string
	orderType   OrderType

	orderQty decimal.Decimal
	price    decimal.Decimal

	cumQty        decimal.Decimal
	leavesQty     decimal.Decimal
	totalNotional decimal.Decimal
	status        OrderStatus
}

func (s *orderState) avgPx() decimal.Decimal {
	if s.cumQty.Sign() <= 0 {
		return decimal.Zero
	}
	return s.totalNotional.Div(s.cumQty)
}

// ClientOrder is the engine-side view of one order over its whole life.
// Order ID and side are fixed at creation; everything else lives in an
// atomically swapped state record. State transitions are performed by the
// engine's worker under its registry lock; readers load lock-free.
type ClientOrder struct {
	orderID int64
	side    Side

	state atomic.Pointer[orderState]

	mu         sync.Mutex
	executions []*Trade
}

func newClientOrder(orderID int64, clOrdID string, side Side, orderType OrderType, orderQty, price decimal.Decimal) *ClientOrder {
	order := &ClientOrder{orderID: orderID, side: side}
	order.state.Store(&orderState{
		clOrdID:   clOrdID,
		orderType: orderType,
		orderQty:  orderQty,
		price:     price,
		cumQty:    decimal.Zero,
		leavesQty: orderQty,
		status:    StatusNew,
	})
	return order
}

func (o *ClientOrder) OrderID() int64 { return o.orderID }
func (o *ClientOrder) Side() Side     { return o.side }

func (o *ClientOrder) ClOrdID() string            { return o.state.Load().clOrdID }
func (o *ClientOrder) OrigClOrdID() string        { return o.state.Load().origClOrdID }
func (o *ClientOrder) OrderType() OrderType       { return o.state.Load().orderType }
func (o *ClientOrder) OrderQty() decimal.Decimal  { return o.state.Load().orderQty }
func (o *ClientOrder) Price() decimal.Decimal     { return o.state.Load().price }
func (o *ClientOrder) CumQty() decimal.Decimal    { return o.state.Load().cumQty }
func (o *ClientOrder) LeavesQty() decimal.Decimal { return o.state.Load().leavesQty }
func (o *ClientOrder) AvgPx() decimal.Decimal     { return o.state.Load().avgPx() }
func (o *ClientOrder) Status() OrderStatus        { return o.state.Load().status }

// Executions returns a copy of the fills applied to this order.
func (o *ClientOrder) Executions() []*Trade {
	o.mu.Lock()
	defer o.mu.Unlock()
	trades := make([]*Trade, len(o.executions))
	copy(trades, o.executions)
	return trades
}

// addTrade applies a fill to the order's running totals.
func (o *ClientOrder) addTrade(trade *Trade) {
	o.mu.Lock()
	o.executions = append(o.executions, trade)
	o.mu.Unlock()

	cur := o.state.Load()
	updatedCumQty := cur.cumQty.Add(trade.ExecQty)
	updatedLeavesQty := cur.leavesQty.Sub(trade.ExecQty)
	updatedNotional := cur.totalNotional.Add(trade.ExecQty.Mul(trade.TradePx))

	// over-execution is possible in general, hence >= rather than ==
	status := StatusPartialFilled
	if updatedCumQty.GreaterThanOrEqual(cur.orderQty) {
		status = StatusFilled
	}

	o.state.Store(&orderState{
		clOrdID:       cur.clOrdID,
		origClOrdID:   cur.origClOrdID,
		orderType:     cur.orderType,
		orderQty:      cur.orderQty,
		price:         cur.price,
		cumQty:        updatedCumQty,
		leavesQty:     updatedLeavesQty,
		totalNotional: updatedNotional,
		status:        status,
	})
}

// orderAmended installs the replacement terms. Leaves quantity is
// recomputed against the new order quantity.
func (o *ClientOrder) orderAmended(clOrdID, origClOrdID string, orderType OrderType, newQty, newPrice decimal.Decimal) {
	cur := o.state.Load()
	leaves := newQty.Sub(cur.cumQty)
	if leaves.Sign() < 0 {
		leaves = decimal.Zero
	}
	o.state.Store(&orderState{
		clOrdID:       clOrdID,
		origClOrdID:   origClOrdID,
		orderType:     orderType,
		orderQty:      newQty,
		price:         newPrice,
		cumQty:        cur.cumQty,
		leavesQty:     leaves,
		totalNotional: cur.totalNotional,
		status:        StatusReplaced,
	})
}

func (o *ClientOrder) orderCancelled(clOrdID, origClOrdID string) {
	cur := o.state.Load()
	o.state.Store(&orderState{
		clOrdID:       clOrdID,
		origClOrdID:   origClOrdID,
		orderType:     cur.orderType,
		orderQty:      cur.orderQty,
		price:         cur.price,
		cumQty:        cur.cumQty,
		leavesQty:     decimal.Zero,
		totalNotional: cur.totalNotional,
		status:        StatusCancelled,
	})
}

func (o *ClientOrder) orderRejected() {
	cur := o.state.Load()
	o.state.Store(&orderState{
		clOrdID:       cur.clOrdID,
		origClOrdID:   cur.origClOrdID,
		orderType:     cur.orderType,
		orderQty:      cur.orderQty,
		price:         cur.price,
		cumQty:        cur.cumQty,
		leavesQty:     decimal.Zero,
		totalNotional: cur.totalNotional,
		status:        StatusRejected,
	})
}
