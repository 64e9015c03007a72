package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/port"
)

var _ port.Repository = (*Repo)(nil)

// Repo journals orders and fills in postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo connects a pool to the given DSN. Call Close when done.
func NewRepo(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// SaveOrder upserts the order's current state. Quantity is the unfilled
// remainder at the time of the call.
func (r *Repo) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO orders(id, symbol, side, type, price, quantity, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  symbol = EXCLUDED.symbol,
  side = EXCLUDED.side,
  type = EXCLUDED.type,
  price = EXCLUDED.price,
  quantity = EXCLUDED.quantity,
  created_at = EXCLUDED.created_at
`, o.ID, o.Symbol, string(o.Side), string(o.Type), o.Price, o.Quantity, o.CreatedAt)
	return err
}

func (r *Repo) SaveFill(ctx context.Context, f *domain.Fill) error {
	if f == nil {
		return errors.New("nil fill")
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO fills(id, order_id, symbol, side, price, quantity, maker, order_time, executed_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING
`, f.ID, f.OrderID, f.Symbol, string(f.Side), f.Price, f.Quantity, f.Maker, f.OrderTime, f.ExecutedAt)
	return err
}

// LoadOpenOrders returns resting limit orders for a symbol in arrival
// order (FIFO).
func (r *Repo) LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, symbol, side, price, quantity, created_at
FROM orders
WHERE symbol = $1 AND type = 'LIMIT' AND quantity > 0
ORDER BY created_at ASC
`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		var (
			id, sym, side   string
			price, quantity decimal.Decimal
			createdAt       time.Time
		)
		if err := rows.Scan(&id, &sym, &side, &price, &quantity, &createdAt); err != nil {
			return nil, err
		}
		// Reconstruct through the validating constructor so a corrupt row
		// cannot smuggle an invalid order into the book.
		o, err := domain.NewLimitOrder(id, sym, quantity, price, domain.Side(side), createdAt)
		if err != nil {
			return nil, fmt.Errorf("pg: order %s: %w", id, err)
		}
		res = append(res, o)
	}
	return res, rows.Err()
}
