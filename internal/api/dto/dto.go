package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderType string

const (
	Limit  OrderType = "LIMIT"
	Market OrderType = "MARKET"
	IOC    OrderType = "IOC"
)

type SubmitOrderRequest struct {
	OrderID  string          `json:"order_id,omitempty"` // server-assigned when empty
	Symbol   string          `json:"symbol" binding:"required"`
	Side     Side            `json:"side" binding:"required"`
	Type     OrderType       `json:"type" binding:"required"`
	Price    decimal.Decimal `json:"price,omitempty"` // limit/IOC only
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

type SubmitOrderResponse struct {
	OrderID   string          `json:"order_id"`
	Fills     []Fill          `json:"fills"`
	Remaining decimal.Decimal `json:"remaining"`
}

type AmendOrderRequest struct {
	OrderID     string          `json:"order_id" binding:"required"`
	NewQuantity decimal.Decimal `json:"new_quantity" binding:"required"`
}

type AmendOrderResponse struct {
	OrderID string `json:"order_id"`
	Amended bool   `json:"amended"`
	Message string `json:"message,omitempty"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type CancelOrderResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

type GetOrderbookResponse struct {
	Symbol    string    `json:"symbol"`
	Bids      []Order   `json:"bids"`
	Asks      []Order   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

type Order struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Type      OrderType       `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

type Fill struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Maker      bool            `json:"maker"`
	ExecutedAt time.Time       `json:"executed_at"`
}
