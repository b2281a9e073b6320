package match

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

const defaultActionBuffer = 16384

// bookAction is one command enqueued to the worker goroutine: either a
// book request or a snapshot query, plus the slot its caller blocks on.
type bookAction struct {
	request  Request
	snapshot bool
	resp     chan bookResult
}

type bookResult struct {
	resp         *Response
	snap         *OrderBookSnapshot
	transactTime time.Time
	err          error
}

// EngineOption customizes a MatchingEngine.
type EngineOption func(*MatchingEngine)

// WithIdGenerator replaces the order ID allocator.
func WithIdGenerator(gen *IdGenerator) EngineOption {
	return func(engine *MatchingEngine) {
		engine.idGen = gen
	}
}

// WithPublishTrader sets the outbound trade sink.
func WithPublishTrader(publisher PublishTrader) EngineOption {
	return func(engine *MatchingEngine) {
		engine.publishTrader = publisher
	}
}

// WithActionBuffer sets the capacity of the command queue.
func WithActionBuffer(size int) EngineOption {
	return func(engine *MatchingEngine) {
		engine.actionChan = make(chan *bookAction, size)
	}
}

// WithBookListener registers a callback invoked with the raw book
// response of every applied command. The worker goroutine calls the
// listener before answering the command, so responses arrive strictly
// in book order and a caller observes the listener's effects by the
// time its own call returns. The listener must not block.
func WithBookListener(listener func(*Response)) EngineOption {
	return func(engine *MatchingEngine) {
		engine.bookListener = listener
	}
}

// MatchingEngine is the thread-safe front of one instrument's order book.
//
// The book itself performs no locking: a single worker goroutine owns it
// and applies commands strictly in arrival order. Any number of caller
// goroutines may submit concurrently; each call enqueues a command and
// blocks until the worker has applied it, so a call's response always
// reflects the complete post-application book state.
//
// On top of the book, the engine keeps the client-facing order registry
// (clOrdID correlation, order lifecycle state, trade history) and renders
// book responses into FIX-style outbound messages.
type MatchingEngine struct {
	instrument    string
	book          *OrderBook
	idGen         *IdGenerator
	publishTrader PublishTrader
	bookListener  func(*Response)

	actionChan       chan *bookAction
	done             chan struct{}
	shutdownComplete chan struct{}
	isShutdown       atomic.Bool

	mu           sync.Mutex // guards orders, clOrdIDIndex and tradeHistory
	orders       map[int64]*ClientOrder
	clOrdIDIndex map[string]int64
	tradeHistory []*Trade
}

// NewMatchingEngine creates an engine for one instrument, seeded with the
// instrument's reference price. Call Start before submitting.
func NewMatchingEngine(instrument string, referencePrice decimal.Decimal, opts ...EngineOption) *MatchingEngine {
	engine := &MatchingEngine{
		instrument:       instrument,
		book:             NewOrderBook(referencePrice),
		idGen:            NewIdGenerator(),
		publishTrader:    NewDiscardPublishTrader(),
		actionChan:       make(chan *bookAction, defaultActionBuffer),
		done:             make(chan struct{}),
		shutdownComplete: make(chan struct{}),
		orders:           make(map[int64]*ClientOrder),
		clOrdIDIndex:     make(map[string]int64),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Start launches the worker goroutine that owns the order book.
func (engine *MatchingEngine) Start() {
	logger.Info("matching engine starting", "instrument", engine.instrument)
	go engine.run()
}

// Shutdown stops the worker. Commands still queued are failed with
// ErrShutdown rather than applied, so no caller stays blocked. Blocks
// until the worker has exited or the context is cancelled.
func (engine *MatchingEngine) Shutdown(ctx context.Context) error {
	if engine.isShutdown.CompareAndSwap(false, true) {
		logger.Info("matching engine stopping", "instrument", engine.instrument)
		close(engine.done)
	}

	select {
	case <-engine.shutdownComplete:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (engine *MatchingEngine) run() {
	for {
		select {
		case <-engine.done:
			engine.drain()
			return
		case action := <-engine.actionChan:
			engine.apply(action)
		}
	}
}

func (engine *MatchingEngine) apply(action *bookAction) {
	if action.snapshot {
		action.resp <- bookResult{snap: engine.book.Snapshot()}
		return
	}
	resp := engine.book.Submit(action.request)
	if engine.bookListener != nil {
		engine.bookListener(resp)
	}
	action.resp <- bookResult{resp: resp, transactTime: time.Now().UTC()}
}

// drain fails every queued command so its caller can return.
func (engine *MatchingEngine) drain() {
	defer close(engine.shutdownComplete)

	for {
		select {
		case action := <-engine.actionChan:
			action.resp <- bookResult{err: ErrShutdown}
		default:
			return
		}
	}
}

// submit enqueues one command and blocks until the worker answers it.
// A cancelled context abandons the wait but not the command: once
// enqueued, the command still executes against the book.
func (engine *MatchingEngine) submit(ctx context.Context, action *bookAction) (bookResult, error) {
	if engine.isShutdown.Load() {
		return bookResult{}, ErrShutdown
	}

	select {
	case engine.actionChan <- action:
	case <-engine.done:
		return bookResult{}, ErrShutdown
	case <-ctx.Done():
		return bookResult{}, ctx.Err()
	}

	select {
	case result := <-action.resp:
		return result, result.err
	case <-ctx.Done():
		return bookResult{}, ctx.Err()
	case <-engine.shutdownComplete:
		// the worker answers every action before it exits; pick up the
		// response if it raced with shutdown
		select {
		case result := <-action.resp:
			return result, result.err
		default:
			return bookResult{}, ErrShutdown
		}
	}
}

func newBookAction(request Request) *bookAction {
	return &bookAction{request: request, resp: make(chan bookResult, 1)}
}

// SubmitNew submits a new order. The returned messages start with a
// single acknowledgement (or rejection) followed by one execution report
// per filled side, in the order the book produced the executions.
func (engine *MatchingEngine) SubmitNew(ctx context.Context, clOrdID string, side Side, orderType OrderType, quantity, price decimal.Decimal) ([]ResponseMessage, error) {
	orderID := engine.idGen.NextID()
	req, err := BuildNewRequest(orderID, side, orderType, quantity, price)
	if err != nil {
		return nil, err
	}

	order := newClientOrder(orderID, clOrdID, side, orderType, quantity, price)

	engine.mu.Lock()
	if _, dup := engine.clOrdIDIndex[clOrdID]; dup {
		engine.mu.Unlock()
		report := stateReport(order, StatusRejected, "duplicated ClOrdId")
		return []ResponseMessage{report}, nil
	}
	engine.orders[orderID] = order
	engine.clOrdIDIndex[clOrdID] = orderID
	engine.mu.Unlock()

	result, err := engine.submit(ctx, newBookAction(req))
	if err != nil {
		return nil, err
	}

	if result.resp.IsError() {
		order.orderRejected()
		return []ResponseMessage{stateReport(order, order.Status(), result.resp.ErrorMsg)}, nil
	}

	messages := make([]ResponseMessage, 0, 2*len(result.resp.Executions)+1)
	messages = append(messages, &ExecutionReport{
		ClOrdID:     clOrdID,
		OrderID:     orderID,
		OrderStatus: StatusNew,
		Side:        side,
		OrderType:   orderType,
		OrderQty:    quantity,
		Price:       price,
		CumQty:      decimal.Zero,
		LeavesQty:   quantity,
		AvgPx:       decimal.Zero,
	})
	messages = append(messages, engine.applyExecutions(result.resp.Executions, result.transactTime)...)
	return messages, nil
}

// SubmitAmend modifies an open order resolved through its original client
// order ID. The new client order ID is attached to the order before the
// amend is known to succeed and unmapped again when the book rejects it.
func (engine *MatchingEngine) SubmitAmend(ctx context.Context, origClOrdID, clOrdID string, side Side, orderType OrderType, newQuantity, newPrice decimal.Decimal) ([]ResponseMessage, error) {
	engine.mu.Lock()
	order := engine.lookupLocked(origClOrdID)
	if order == nil {
		engine.mu.Unlock()
		return []ResponseMessage{&OrderCancelReject{
			ClOrdID:      clOrdID,
			OrigClOrdID:  origClOrdID,
			RejectReason: "unknown origClOrdId = " + origClOrdID,
		}}, nil
	}
	orderID := order.OrderID()
	engine.mu.Unlock()

	req, err := BuildAmendRequest(orderID, side, orderType, newQuantity, newPrice)
	if err != nil {
		return nil, err
	}

	engine.mu.Lock()
	engine.clOrdIDIndex[clOrdID] = orderID // both old and new clOrdID resolve to the order from here on
	engine.mu.Unlock()

	result, err := engine.submit(ctx, newBookAction(req))
	if err != nil {
		return nil, err
	}

	if result.resp.IsError() {
		engine.mu.Lock()
		delete(engine.clOrdIDIndex, clOrdID)
		engine.mu.Unlock()

		state := order.state.Load()
		return []ResponseMessage{&ExecutionReport{
			ClOrdID:      clOrdID,
			OrigClOrdID:  origClOrdID,
			OrderID:      orderID,
			OrderStatus:  StatusRejected,
			Side:         side,
			OrderType:    state.orderType,
			OrderQty:     state.orderQty,
			Price:        state.price,
			CumQty:       state.cumQty,
			LeavesQty:    state.leavesQty,
			AvgPx:        state.avgPx(),
			RejectReason: result.resp.ErrorMsg,
		}}, nil
	}

	order.orderAmended(clOrdID, origClOrdID, orderType, newQuantity, newPrice)

	messages := make([]ResponseMessage, 0, 2*len(result.resp.Executions)+1)
	messages = append(messages, stateReport(order, StatusReplaced, ""))
	messages = append(messages, engine.applyExecutions(result.resp.Executions, result.transactTime)...)
	return messages, nil
}

// SubmitCancel cancels an open order resolved through its original client
// order ID.
func (engine *MatchingEngine) SubmitCancel(ctx context.Context, origClOrdID, clOrdID string) ([]ResponseMessage, error) {
	engine.mu.Lock()
	order := engine.lookupLocked(origClOrdID)
	if order == nil {
		engine.mu.Unlock()
		return []ResponseMessage{&OrderCancelReject{
			ClOrdID:      clOrdID,
			OrigClOrdID:  origClOrdID,
			RejectReason: "unknown origClOrdId = " + origClOrdID,
		}}, nil
	}
	orderID := order.OrderID()
	engine.clOrdIDIndex[clOrdID] = orderID
	engine.mu.Unlock()

	result, err := engine.submit(ctx, newBookAction(&CancelRequest{OrderID: orderID}))
	if err != nil {
		return nil, err
	}

	if result.resp.IsError() {
		return []ResponseMessage{stateReport(order, order.Status(), result.resp.ErrorMsg)}, nil
	}

	order.orderCancelled(clOrdID, origClOrdID)
	return []ResponseMessage{stateReport(order, StatusCancelled, "")}, nil
}

// Snapshot captures the current full depth of the book. It is applied by
// the worker in queue order, so it reflects a consistent point between
// two commands.
func (engine *MatchingEngine) Snapshot(ctx context.Context) (*OrderBookSnapshot, error) {
	action := &bookAction{snapshot: true, resp: make(chan bookResult, 1)}
	result, err := engine.submit(ctx, action)
	if err != nil {
		return nil, err
	}
	return result.snap, nil
}

// applyExecutions folds each execution into both sides' client orders and
// returns the per-fill execution reports, buy side first.
func (engine *MatchingEngine) applyExecutions(executions []Execution, transactTime time.Time) []ResponseMessage {
	if len(executions) == 0 {
		return nil
	}

	messages := make([]ResponseMessage, 0, 2*len(executions))
	trades := make([]*Trade, 0, len(executions))

	engine.mu.Lock()
	for _, execution := range executions {
		trade := &Trade{
			ExecQty:      execution.Quantity,
			TradePx:      execution.Price,
			TransactTime: transactTime,
		}
		if buyOrder := engine.orders[execution.BuyOrderID]; buyOrder != nil {
			buyOrder.addTrade(trade)
			messages = append(messages, fillReport(buyOrder, trade))
		}
		if sellOrder := engine.orders[execution.SellOrderID]; sellOrder != nil {
			sellOrder.addTrade(trade)
			messages = append(messages, fillReport(sellOrder, trade))
		}
		engine.tradeHistory = append(engine.tradeHistory, trade)
		trades = append(trades, trade)
	}
	engine.mu.Unlock()

	engine.publishTrader.PublishTrades(trades...)
	return messages
}

// lookupLocked resolves a client order ID; callers must hold engine.mu.
func (engine *MatchingEngine) lookupLocked(clOrdID string) *ClientOrder {
	orderID, ok := engine.clOrdIDIndex[clOrdID]
	if !ok {
		return nil
	}
	return engine.orders[orderID]
}

// OrderByClOrdID returns the order a client order ID resolves to, or nil.
func (engine *MatchingEngine) OrderByClOrdID(clOrdID string) *ClientOrder {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.lookupLocked(clOrdID)
}

// OrderByOrderID returns the order with the given engine order ID, or nil.
func (engine *MatchingEngine) OrderByOrderID(orderID int64) *ClientOrder {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.orders[orderID]
}

// TradeHistory returns a copy of all completed trades in execution order.
func (engine *MatchingEngine) TradeHistory() []*Trade {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	trades := make([]*Trade, len(engine.tradeHistory))
	copy(trades, engine.tradeHistory)
	return trades
}

// stateReport renders the order's current running state with the given
// report status and optional reject reason.
func stateReport(order *ClientOrder, status OrderStatus, rejectReason string) *ExecutionReport {
	state := order.state.Load()
	return &ExecutionReport{
		ClOrdID:      state.clOrdID,
		OrigClOrdID:  state.origClOrdID,
		OrderID:      order.OrderID(),
		OrderStatus:  status,
		Side:         order.Side(),
		OrderType:    state.orderType,
		OrderQty:     state.orderQty,
		Price:        state.price,
		CumQty:       state.cumQty,
		LeavesQty:    state.leavesQty,
		AvgPx:        state.avgPx(),
		RejectReason: rejectReason,
	}
}

// fillReport renders the order's state after a fill, carrying the fill's
// quantity and price as LastQty/LastPx.
func fillReport(order *ClientOrder, trade *Trade) *ExecutionReport {
	report := stateReport(order, order.Status(), "")
	lastQty := trade.ExecQty
	lastPx := trade.TradePx
	report.LastQty = &lastQty
	report.LastPx = &lastPx
	return report
}
