package core

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
)

// Book holds the resting limit orders for both sides of the market.
// Bids are kept sorted by (price desc, arrival asc), asks by
// (price asc, arrival asc), so the best entry of each side is at index 0.
// Entries for several symbols may coexist; the crossing scan filters by
// symbol and leaves foreign entries untouched.
//
// Book is not safe for concurrent use. The engine serializes access.
type Book struct {
	bids []*domain.Order
	asks []*domain.Order
}

func NewBook() *Book {
	return &Book{}
}

// Insert places a resting limit order into its side and re-establishes the
// side's sort invariant. Market and IOC orders are never inserted.
func (b *Book) Insert(o *domain.Order) error {
	if o.Type != domain.Limit {
		return domain.ErrUndefinedOrderType
	}
	switch o.Side {
	case domain.Buy:
		b.bids = append(b.bids, o)
		sortBids(b.bids)
	case domain.Sell:
		b.asks = append(b.asks, o)
		sortAsks(b.asks)
	default:
		return domain.ErrUndefinedOrderSide
	}
	return nil
}

// Amend shrinks the resting quantity of the order with the given id. The
// order keeps its place in the queue since price and arrival time are
// unchanged. A quantity at or above the current one fails with
// ErrNewQuantityNotSmaller and leaves the book as it was; a quantity of
// zero or below removes the entry. An unknown id is a normal negative
// outcome, not an error.
func (b *Book) Amend(id string, quantity decimal.Decimal) (bool, error) {
	for _, side := range []*[]*domain.Order{&b.bids, &b.asks} {
		for i, o := range *side {
			if o.ID != id {
				continue
			}
			if quantity.GreaterThanOrEqual(o.Quantity) {
				return true, domain.ErrNewQuantityNotSmaller
			}
			if quantity.IsPositive() {
				o.Quantity = quantity
			} else {
				*side = append((*side)[:i], (*side)[i+1:]...)
			}
			return true, nil
		}
	}
	return false, nil
}

// Cancel removes the order with the given id from whichever side holds it
// and reports whether it was found. Not-found is a normal outcome: the
// order may already have been matched away.
func (b *Book) Cancel(id string) bool {
	for _, side := range []*[]*domain.Order{&b.bids, &b.asks} {
		for i, o := range *side {
			if o.ID == id {
				*side = append((*side)[:i], (*side)[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Find returns the resting order with the given id, or nil.
func (b *Book) Find(id string) *domain.Order {
	for _, side := range [][]*domain.Order{b.bids, b.asks} {
		for _, o := range side {
			if o.ID == id {
				return o
			}
		}
	}
	return nil
}

// match walks the side opposite the incoming order in priority order and
// executes against every crossable entry until the incoming quantity is
// exhausted. priceLimited disables the price condition for market orders.
// Both the incoming order and matched resting entries have their quantity
// decremented in place; fully consumed resting entries are removed.
//
// Every match emits two fills at the resting price and the traded
// quantity: the resting leg first, then the incoming leg.
func (b *Book) match(o *domain.Order, priceLimited bool, now time.Time) []domain.Fill {
	opposite := b.side(o.Side.Opposite())

	var fills []domain.Fill
	i := 0
	for i < len(*opposite) && o.Quantity.IsPositive() {
		resting := (*opposite)[i]
		if resting.Symbol != o.Symbol {
			i++
			continue
		}
		// Entries of the same symbol further down carry a worse price.
		if priceLimited && !crosses(o.Side, o.Price, resting.Price) {
			break
		}

		traded := decimal.Min(o.Quantity, resting.Quantity)
		fills = append(fills,
			newFill(resting, traded, resting.Price, true, now),
			newFill(o, traded, resting.Price, false, now),
		)

		o.Quantity = o.Quantity.Sub(traded)
		resting.Quantity = resting.Quantity.Sub(traded)
		if resting.Quantity.IsZero() {
			*opposite = append((*opposite)[:i], (*opposite)[i+1:]...)
		} else {
			i++
		}
	}
	return fills
}

func (b *Book) side(s domain.Side) *[]*domain.Order {
	if s == domain.Buy {
		return &b.bids
	}
	return &b.asks
}

// crosses reports whether an incoming order at the given limit may trade
// against a resting price: a buy crosses at or above it, a sell at or
// below it.
func crosses(side domain.Side, limit, resting decimal.Decimal) bool {
	if side == domain.Buy {
		return limit.GreaterThanOrEqual(resting)
	}
	return limit.LessThanOrEqual(resting)
}

func newFill(o *domain.Order, quantity, price decimal.Decimal, maker bool, now time.Time) domain.Fill {
	return domain.Fill{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Price:      price,
		Quantity:   quantity,
		Maker:      maker,
		OrderTime:  o.CreatedAt,
		ExecutedAt: now,
	}
}

func sortBids(bids []*domain.Order) {
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Price.Equal(bids[j].Price) {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		}
		return bids[i].Price.GreaterThan(bids[j].Price)
	})
}

func sortAsks(asks []*domain.Order) {
	sort.SliceStable(asks, func(i, j int) bool {
		if asks[i].Price.Equal(asks[j].Price) {
			return asks[i].CreatedAt.Before(asks[j].CreatedAt)
		}
		return asks[i].Price.LessThan(asks[j].Price)
	})
}

// Snapshot copies one symbol's resting orders out of the book.
func (b *Book) Snapshot(symbol string, now time.Time) *domain.BookSnapshot {
	snap := &domain.BookSnapshot{
		Symbol:    symbol,
		Bids:      []domain.Order{},
		Asks:      []domain.Order{},
		Timestamp: now,
	}
	for _, o := range b.bids {
		if o.Symbol == symbol {
			snap.Bids = append(snap.Bids, *o)
		}
	}
	for _, o := range b.asks {
		if o.Symbol == symbol {
			snap.Asks = append(snap.Asks, *o)
		}
	}
	return snap
}

// Bids returns the bid side in priority order. Test helper; callers must
// not mutate the returned orders.
func (b *Book) Bids() []*domain.Order { return b.bids }

// Asks returns the ask side in priority order.
func (b *Book) Asks() []*domain.Order { return b.asks }
