package broker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
)

// Status is the lifecycle state a broker reports for a submitted order.
type Status string

const (
	StatusSubmitted       Status = "SUBMITTED"
	StatusPending         Status = "PENDING" // resting in the book
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCancelled       Status = "CANCELLED"
	StatusRejected        Status = "REJECTED"
)

// OrderState is a broker's view of one submitted order.
type OrderState struct {
	BrokerOrderID string
	Order         *domain.Order
	Status        Status
	FilledQty     decimal.Decimal
	AvgFillPrice  decimal.Decimal
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// Account is a broker account summary.
type Account struct {
	Cash      decimal.Decimal
	Positions map[string]decimal.Decimal
}

// Broker is the boundary contract over an execution venue. Real venue
// adapters live behind this interface; the matching core itself has no
// dependency on any of them and can be exercised standalone through
// Simulated.
type Broker interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	SubmitOrder(ctx context.Context, o *domain.Order) (string, error)
	CancelOrder(ctx context.Context, brokerOrderID string) (bool, error)
	AmendOrder(ctx context.Context, brokerOrderID string, newQuantity decimal.Decimal) (bool, error)

	OrderStatus(ctx context.Context, brokerOrderID string) (*OrderState, error)
	OpenOrders(ctx context.Context) ([]*OrderState, error)
	Positions(ctx context.Context) (map[string]decimal.Decimal, error)
	AccountInfo(ctx context.Context) (*Account, error)
}
