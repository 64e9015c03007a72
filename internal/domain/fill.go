package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is one executed leg of a matched trade. Each match produces two
// fills, one for the resting order and one for the incoming order, both at
// the resting order's price. Fills are terminal records: created once,
// never mutated, never re-entered into a book.
type Fill struct {
	ID         string // fill identifier, assigned at execution
	OrderID    string // identifier of the order this leg belongs to
	Symbol     string
	Side       Side
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Maker      bool      // true when the leg belongs to the resting limit order
	OrderTime  time.Time // creation time of the order this leg belongs to
	ExecutedAt time.Time
}
