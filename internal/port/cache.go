package port

import (
	"context"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
)

// Cache serves book snapshots to read paths without touching the engine
// lock.
type Cache interface {
	SetBook(ctx context.Context, symbol string, snap *domain.BookSnapshot) error
	GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error)
	Invalidate(ctx context.Context, symbol string) error
}
