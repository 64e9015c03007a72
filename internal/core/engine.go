package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/port"
)

// Engine routes incoming orders to the crossing algorithm and owns the
// order book exclusively. Every Submit, Amend and Cancel call runs under
// one mutex for its full duration, so the crossing pass always observes a
// single consistent snapshot of both sides and no partial state is ever
// visible outside the call.
//
// Orders and fills are journaled best-effort through the repository and a
// fresh book snapshot is pushed to the cache after every mutation; both
// collaborators are optional.
type Engine struct {
	repo  port.Repository
	cache port.Cache
	log   zerolog.Logger

	mu   sync.Mutex
	book *Book
}

func NewEngine(repo port.Repository, cache port.Cache, log zerolog.Logger) *Engine {
	return &Engine{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "engine").Logger(),
		book:  NewBook(),
	}
}

// Restore reloads open resting orders for the given symbols from the
// repository into the book. Used on startup.
func (e *Engine) Restore(ctx context.Context, symbols []string) error {
	if e.repo == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, symbol := range symbols {
		orders, err := e.repo.LoadOpenOrders(ctx, symbol)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if err := e.book.Insert(o); err != nil {
				return err
			}
		}
		e.log.Info().Str("symbol", symbol).Int("orders", len(orders)).Msg("restored open orders")
	}
	return nil
}

// Submit runs one full crossing pass for the incoming order and returns
// the fills it produced, resting leg before incoming leg for each match.
// A limit order's unmatched remainder is posted to the book on its own
// side; market and IOC remainders are discarded. The order must come from
// one of the domain constructors and may be submitted exactly once.
func (e *Engine) Submit(ctx context.Context, o *domain.Order) ([]domain.Fill, error) {
	if o.Side != domain.Buy && o.Side != domain.Sell {
		return nil, domain.ErrUndefinedOrderSide
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	var fills []domain.Fill
	switch o.Type {
	case domain.Limit:
		fills = e.book.match(o, true, now)
		if o.Quantity.IsPositive() {
			if err := e.book.Insert(o); err != nil {
				return nil, err
			}
		}
	case domain.IOC:
		// Remainder is cancelled, never posted.
		fills = e.book.match(o, true, now)
	case domain.Market:
		// No price to rest at; remainder is discarded.
		fills = e.book.match(o, false, now)
	default:
		return nil, domain.ErrUndefinedOrderType
	}

	e.log.Debug().
		Str("order_id", o.ID).
		Str("symbol", o.Symbol).
		Str("type", string(o.Type)).
		Int("fills", len(fills)).
		Str("remaining", o.Quantity.String()).
		Msg("order processed")

	e.journal(ctx, o, fills)
	e.refreshCache(ctx, o.Symbol, now)
	return fills, nil
}

// Amend shrinks a resting order's quantity without disturbing its queue
// position. It reports whether the order was found; amending an order that
// was already matched or cancelled is an expected race, not an error.
func (e *Engine) Amend(ctx context.Context, id string, quantity decimal.Decimal) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var symbol string
	if o := e.book.Find(id); o != nil {
		symbol = o.Symbol
	}
	found, err := e.book.Amend(id, quantity)
	if err != nil {
		return found, err
	}
	if found {
		e.log.Debug().Str("order_id", id).Str("quantity", quantity.String()).Msg("order amended")
		e.refreshCache(ctx, symbol, time.Now())
	}
	return found, nil
}

// Cancel removes a resting order from the book and reports whether it was
// found. Cancelling twice returns found once, then not-found.
func (e *Engine) Cancel(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var symbol string
	if o := e.book.Find(id); o != nil {
		symbol = o.Symbol
	}
	found := e.book.Cancel(id)
	if found {
		e.log.Debug().Str("order_id", id).Msg("order cancelled")
		e.refreshCache(ctx, symbol, time.Now())
	}
	return found, nil
}

// Snapshot returns a copy of one symbol's resting orders, served from the
// cache when possible.
func (e *Engine) Snapshot(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	if e.cache != nil {
		if snap, err := e.cache.GetBook(ctx, symbol); err == nil && snap != nil {
			return snap, nil
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Snapshot(symbol, time.Now()), nil
}

// journal persists the submitted order and its fills. Persistence is an
// audit feed layered above the matching core: failures are logged, never
// surfaced to the caller, and never affect book state.
func (e *Engine) journal(ctx context.Context, o *domain.Order, fills []domain.Fill) {
	if e.repo == nil {
		return
	}
	if err := e.repo.SaveOrder(ctx, o); err != nil {
		e.log.Warn().Err(err).Str("order_id", o.ID).Msg("journal order failed")
	}
	for i := range fills {
		if err := e.repo.SaveFill(ctx, &fills[i]); err != nil {
			e.log.Warn().Err(err).Str("fill_id", fills[i].ID).Msg("journal fill failed")
		}
	}
}

// refreshCache pushes the symbol's current snapshot to the cache. When no
// orders remain for the symbol the key is dropped instead, so readers fall
// through to the live book rather than holding an empty snapshot until TTL.
func (e *Engine) refreshCache(ctx context.Context, symbol string, now time.Time) {
	if e.cache == nil {
		return
	}
	snap := e.book.Snapshot(symbol, now)
	if len(snap.Bids) == 0 && len(snap.Asks) == 0 {
		if err := e.cache.Invalidate(ctx, symbol); err != nil {
			e.log.Warn().Err(err).Str("symbol", symbol).Msg("cache invalidate failed")
		}
		return
	}
	if err := e.cache.SetBook(ctx, symbol, snap); err != nil {
		e.log.Warn().Err(err).Str("symbol", symbol).Msg("cache refresh failed")
	}
}
