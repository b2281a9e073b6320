package match

const (
	// EngineVersion is the current version of the matching engine
	EngineVersion = "v1.0.0"
)

// Side represents the order side (Buy/Sell).
type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents the type of order.
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// IsMarket reports whether the order type is a market order.
func (t OrderType) IsMarket() bool {
	return t == Market
}

// OrderStatus mimics the FIX order state machine.
type OrderStatus string

const (
	StatusNew           OrderStatus = "new"
	StatusPartialFilled OrderStatus = "partial_filled"
	StatusFilled        OrderStatus = "filled"
	StatusCancelled     OrderStatus = "cancelled"
	StatusReplaced      OrderStatus = "replaced"
	StatusRejected      OrderStatus = "rejected"
)
