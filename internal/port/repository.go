package port

import (
	"context"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
)

// Repository is the order and fill journal consumed by the engine. It is
// an audit feed, not the source of truth for book state: the engine writes
// best-effort and only reads back open orders on startup.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveFill(ctx context.Context, f *domain.Fill) error
	LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error)
}
