package match

import "github.com/shopspring/decimal"

// MessageType discriminates the outbound message variants.
type MessageType string

const (
	MsgExecutionReport       MessageType = "execution_report"
	MsgOrderCancelReject     MessageType = "order_cancel_reject"
	MsgBusinessMessageReject MessageType = "business_message_reject"
)

// ResponseMessage is the FIX-style outbound message produced by the
// engine. Formatting and transport are the caller's concern.
type ResponseMessage interface {
	MessageType() MessageType
}

// ExecutionReport carries an order's running state after an
// acknowledgement, fill, replace, cancel or reject.
type ExecutionReport struct {
	ClOrdID     string
	OrigClOrdID string
	OrderID     int64
	OrderStatus OrderStatus

	Side      Side
	OrderType OrderType

	OrderQty  decimal.Decimal
	Price     decimal.Decimal
	CumQty    decimal.Decimal
	LeavesQty decimal.Decimal
	AvgPx     decimal.Decimal

	// set only on fills
	LastQty *decimal.Decimal
	LastPx  *decimal.Decimal

	RejectReason string
}

func (r *ExecutionReport) MessageType() MessageType { return MsgExecutionReport }

// OrderCancelReject reports a failed amend or cancel whose target order
// could not be resolved.
type OrderCancelReject struct {
	ClOrdID      string
	OrigClOrdID  string
	RejectReason string
}

func (r *OrderCancelReject) MessageType() MessageType { return MsgOrderCancelReject }

// BusinessMessageReject denotes the rejection of a request that was
// invalid at the message level.
type BusinessMessageReject struct {
	RefMsgType string
	Reason     string
}

func (r *BusinessMessageReject) MessageType() MessageType { return MsgBusinessMessageReject }
