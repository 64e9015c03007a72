package in_memory

import (
	"context"
	"sort"
	"sync"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo is the journal used in tests and simulated-execution mode.
type MemoryRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	fills  []domain.Fill
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{orders: make(map[string]domain.Order)}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *MemoryRepo) SaveFill(ctx context.Context, f *domain.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fills = append(r.fills, *f)
	return nil
}

func (r *MemoryRepo) LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Order
	for _, o := range r.orders {
		if o.Symbol == symbol && o.Type == domain.Limit && o.Quantity.IsPositive() {
			cp := o
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

// Fills returns every journaled fill in execution order. Test helper.
func (r *MemoryRepo) Fills() []domain.Fill {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Fill, len(r.fills))
	copy(out, r.fills)
	return out
}
