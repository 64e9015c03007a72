package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderType string

const (
	Buy    Side      = "BUY"
	Sell   Side      = "SELL"
	Limit  OrderType = "LIMIT"
	Market OrderType = "MARKET"
	IOC    OrderType = "IOC"
)

// Order is a request to buy or sell a symbol. Quantity is the unfilled
// amount and is decremented in place as fills occur; it never goes negative.
// CreatedAt is assigned once and used only for time-priority tie-breaking.
type Order struct {
	ID        string
	Symbol    string
	Side      Side
	Type      OrderType
	Price     decimal.Decimal // zero for market orders
	Quantity  decimal.Decimal
	CreatedAt time.Time
}

// NewLimitOrder builds a limit order. Unmatched quantity rests in the book.
func NewLimitOrder(id, symbol string, quantity, price decimal.Decimal, side Side, createdAt time.Time) (*Order, error) {
	o, err := newOrder(id, symbol, quantity, side, createdAt)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	o.Type = Limit
	o.Price = price
	return o, nil
}

// NewMarketOrder builds a market order. It carries no price and executes
// against whatever liquidity the opposite side offers.
func NewMarketOrder(id, symbol string, quantity decimal.Decimal, side Side, createdAt time.Time) (*Order, error) {
	o, err := newOrder(id, symbol, quantity, side, createdAt)
	if err != nil {
		return nil, err
	}
	o.Type = Market
	return o, nil
}

// NewIOCOrder builds an immediate-or-cancel order. It matches like a limit
// order but any unmatched remainder is discarded instead of resting.
func NewIOCOrder(id, symbol string, quantity, price decimal.Decimal, side Side, createdAt time.Time) (*Order, error) {
	o, err := newOrder(id, symbol, quantity, side, createdAt)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	o.Type = IOC
	o.Price = price
	return o, nil
}

// newOrder enforces the invariants shared by every order kind. Construction
// is the only validation point; downstream code trusts constructed orders.
func newOrder(id, symbol string, quantity decimal.Decimal, side Side, createdAt time.Time) (*Order, error) {
	if !quantity.IsPositive() {
		return nil, ErrNonPositiveQuantity
	}
	if side != Buy && side != Sell {
		return nil, ErrInvalidSide
	}
	return &Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		CreatedAt: createdAt,
	}, nil
}

// Opposite returns the other side of the market.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}
