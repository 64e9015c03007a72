package domain

import "errors"

// Validation and matching errors. Each kind stays distinguishable with
// errors.Is so upstream adapters can branch on them when deciding order
// status transitions.
var (
	// Raised at order construction.
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrNonPositivePrice    = errors.New("price must be positive")
	ErrInvalidSide         = errors.New("side must be BUY or SELL")

	// Raised by the engine when an order carries a kind or side outside the
	// closed set. Unreachable through the constructors, checked anyway.
	ErrUndefinedOrderType = errors.New("undefined order type")
	ErrUndefinedOrderSide = errors.New("undefined order side")

	// Raised by amend when the new quantity does not shrink the order.
	ErrNewQuantityNotSmaller = errors.New("amendment must reduce quantity")
)
