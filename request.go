package match

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Request is the single entry type accepted by OrderBook.Submit.
// The concrete kinds are NewRequest, AmendRequest and CancelRequest;
// anything else reaching the book is a programming error.
type Request interface {
	RequestOrderID() int64
}

// NewRequest asks the book to accept a new order.
type NewRequest struct {
	OrderID   int64
	Side      Side
	OrderType OrderType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// AmendRequest asks the book to change an open order's type, quantity or price.
type AmendRequest struct {
	OrderID     int64
	Side        Side
	OrderType   OrderType
	NewQuantity decimal.Decimal
	NewPrice    decimal.Decimal
}

// CancelRequest asks the book to remove an open order.
type CancelRequest struct {
	OrderID int64
}

func (r *NewRequest) RequestOrderID() int64    { return r.OrderID }
func (r *AmendRequest) RequestOrderID() int64  { return r.OrderID }
func (r *CancelRequest) RequestOrderID() int64 { return r.OrderID }

// validateOrderTerms rejects the combinations that must never reach the book:
// a non-positive quantity, or a zero price on anything but a market order.
// A negative price is allowed for limit orders (oil futures, April 2020).
func validateOrderTerms(orderID int64, orderType OrderType, quantity, price decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("order %d: quantity must be positive: %w", orderID, ErrInvalidParam)
	}
	if price.IsZero() && !orderType.IsMarket() {
		return fmt.Errorf("order %d: price is zero but order type is %s: %w", orderID, orderType, ErrInvalidParam)
	}
	return nil
}

// BuildNewRequest validates the order terms and builds a NewRequest.
func BuildNewRequest(orderID int64, side Side, orderType OrderType, quantity, price decimal.Decimal) (*NewRequest, error) {
	if err := validateOrderTerms(orderID, orderType, quantity, price); err != nil {
		return nil, err
	}
	return &NewRequest{
		OrderID:   orderID,
		Side:      side,
		OrderType: orderType,
		Quantity:  quantity,
		Price:     price,
	}, nil
}

// BuildAmendRequest validates the new order terms and builds an AmendRequest.
func BuildAmendRequest(orderID int64, side Side, orderType OrderType, newQuantity, newPrice decimal.Decimal) (*AmendRequest, error) {
	if err := validateOrderTerms(orderID, orderType, newQuantity, newPrice); err != nil {
		return nil, err
	}
	return &AmendRequest{
		OrderID:     orderID,
		Side:        side,
		OrderType:   orderType,
		NewQuantity: newQuantity,
		NewPrice:    newPrice,
	}, nil
}
