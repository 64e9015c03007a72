package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/adapter/in_memory"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
)

func newTestEngine(t *testing.T) (*Engine, *in_memory.MemoryRepo) {
	t.Helper()
	repo := in_memory.NewMemoryRepo()
	return NewEngine(repo, in_memory.NewCache(), zerolog.Nop()), repo
}

func market(t *testing.T, id, symbol string, qty float64, side domain.Side, offset time.Duration) *domain.Order {
	t.Helper()
	o, err := domain.NewMarketOrder(id, symbol, decimal.NewFromFloat(qty), side, bookEpoch.Add(offset))
	require.NoError(t, err)
	return o
}

func ioc(t *testing.T, id, symbol string, qty, price float64, side domain.Side, offset time.Duration) *domain.Order {
	t.Helper()
	o, err := domain.NewIOCOrder(id, symbol, decimal.NewFromFloat(qty), decimal.NewFromFloat(price), side, bookEpoch.Add(offset))
	require.NoError(t, err)
	return o
}

func assertFill(t *testing.T, f domain.Fill, orderID string, qty, price float64, maker bool) {
	t.Helper()
	assert.Equal(t, orderID, f.OrderID)
	assert.True(t, f.Quantity.Equal(decimal.NewFromFloat(qty)), "fill qty: want %v got %v", qty, f.Quantity)
	assert.True(t, f.Price.Equal(decimal.NewFromFloat(price)), "fill price: want %v got %v", price, f.Price)
	assert.Equal(t, maker, f.Maker)
	assert.NotEmpty(t, f.ID)
}

// Scenario A: a limit order into an empty book rests without fills.
func TestSubmit_LimitIntoEmptyBookRests(t *testing.T) {
	e, _ := newTestEngine(t)

	fills, err := e.Submit(context.Background(), limit(t, "1", "SYM", 100, 150.50, domain.Buy, 0))
	require.NoError(t, err)
	assert.Empty(t, fills)

	bids := e.book.Bids()
	require.Len(t, bids, 1)
	assert.Equal(t, "1", bids[0].ID)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, e.book.Asks())
}

// Scenario B: a crossing limit buy consumes the resting ask at the resting
// price and posts its remainder on the bid side.
func TestSubmit_LimitPartialFillPostsRemainder(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Submit(context.Background(), limit(t, "10", "SYM", 40, 149.00, domain.Sell, 0))
	require.NoError(t, err)

	fills, err := e.Submit(context.Background(), limit(t, "2", "SYM", 100, 150.00, domain.Buy, time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 2)
	assertFill(t, fills[0], "10", 40, 149.00, true)
	assertFill(t, fills[1], "2", 40, 149.00, false)

	assert.Empty(t, e.book.Asks())
	bids := e.book.Bids()
	require.Len(t, bids, 1)
	assert.Equal(t, "2", bids[0].ID)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(60)))
	assert.True(t, bids[0].Price.Equal(decimal.NewFromInt(150)))
}

// Scenario C: a market sell trades against the best bid and its remainder
// is never posted.
func TestSubmit_MarketOrderPartialAgainstRestingBid(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Submit(context.Background(), limit(t, "20", "SYM", 100, 150.00, domain.Buy, 0))
	require.NoError(t, err)

	fills, err := e.Submit(context.Background(), market(t, "3", "SYM", 30, domain.Sell, time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 2)
	assertFill(t, fills[0], "20", 30, 150.00, true)
	assertFill(t, fills[1], "3", 30, 150.00, false)

	bids := e.book.Bids()
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(70)))
	assert.Empty(t, e.book.Asks())
}

// Scenario D: an IOC buy takes available liquidity and the rest is
// discarded, never posted to any book.
func TestSubmit_IOCRemainderDiscarded(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Submit(context.Background(), limit(t, "30", "SYM", 50, 151.00, domain.Sell, 0))
	require.NoError(t, err)

	fills, err := e.Submit(context.Background(), ioc(t, "4", "SYM", 500, 152.00, domain.Buy, time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 2)
	assertFill(t, fills[0], "30", 50, 151.00, true)
	assertFill(t, fills[1], "4", 50, 151.00, false)

	assert.Empty(t, e.book.Bids())
	assert.Empty(t, e.book.Asks())
}

// Scenario E: amend to a quantity at or above the current one fails and
// leaves the book unchanged.
func TestAmend_NotSmallerFailsThroughEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Submit(context.Background(), limit(t, "20", "SYM", 100, 150.00, domain.Buy, 0))
	require.NoError(t, err)

	found, err := e.Amend(context.Background(), "20", decimal.NewFromInt(150))
	assert.True(t, found)
	assert.ErrorIs(t, err, domain.ErrNewQuantityNotSmaller)

	bids := e.book.Bids()
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(100)))
}

func TestSubmit_FullMatchNeverEntersBook(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Submit(context.Background(), limit(t, "1", "SYM", 40, 149.00, domain.Sell, 0))
	require.NoError(t, err)

	fills, err := e.Submit(context.Background(), limit(t, "2", "SYM", 40, 149.00, domain.Buy, time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 2)
	assertFill(t, fills[0], "1", 40, 149.00, true)
	assertFill(t, fills[1], "2", 40, 149.00, false)
	assert.Empty(t, e.book.Bids())
	assert.Empty(t, e.book.Asks())
}

func TestSubmit_MarketOrderEmptyBookNoFills(t *testing.T) {
	e, _ := newTestEngine(t)

	fills, err := e.Submit(context.Background(), market(t, "1", "SYM", 30, domain.Buy, 0))
	require.NoError(t, err)
	assert.Empty(t, fills)
	assert.Empty(t, e.book.Bids())
	assert.Empty(t, e.book.Asks())
}

func TestSubmit_WalksBookInPriceTimePriority(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// Same price, different arrival: earlier order must fill first.
	_, err := e.Submit(ctx, limit(t, "a", "SYM", 10, 151.00, domain.Sell, 0))
	require.NoError(t, err)
	_, err = e.Submit(ctx, limit(t, "b", "SYM", 10, 151.00, domain.Sell, time.Second))
	require.NoError(t, err)
	_, err = e.Submit(ctx, limit(t, "c", "SYM", 10, 150.00, domain.Sell, 2*time.Second))
	require.NoError(t, err)

	fills, err := e.Submit(ctx, limit(t, "big", "SYM", 25, 151.00, domain.Buy, 3*time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 6)
	assertFill(t, fills[0], "c", 10, 150.00, true) // best price first
	assertFill(t, fills[1], "big", 10, 150.00, false)
	assertFill(t, fills[2], "a", 10, 151.00, true) // then earliest at 151
	assertFill(t, fills[3], "big", 10, 151.00, false)
	assertFill(t, fills[4], "b", 5, 151.00, true)
	assertFill(t, fills[5], "big", 5, 151.00, false)

	// b keeps its unmatched remainder; the buy is fully consumed.
	asks := e.book.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, "b", asks[0].ID)
	assert.True(t, asks[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, e.book.Bids())
}

func TestSubmit_StopsAtPriceCondition(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, limit(t, "cheap", "SYM", 10, 150.00, domain.Sell, 0))
	require.NoError(t, err)
	_, err = e.Submit(ctx, limit(t, "rich", "SYM", 10, 155.00, domain.Sell, time.Second))
	require.NoError(t, err)

	fills, err := e.Submit(ctx, limit(t, "buy", "SYM", 20, 152.00, domain.Buy, 2*time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 2)
	assertFill(t, fills[0], "cheap", 10, 150.00, true)

	// The 155 ask is untouched and the buy's remainder rests.
	asks := e.book.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, "rich", asks[0].ID)
	bids := e.book.Bids()
	require.Len(t, bids, 1)
	assert.Equal(t, "buy", bids[0].ID)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestSubmit_OtherSymbolsRetainedInOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, limit(t, "msft", "MSFT", 10, 100.00, domain.Sell, 0))
	require.NoError(t, err)
	_, err = e.Submit(ctx, limit(t, "aapl", "SYM", 10, 150.00, domain.Sell, time.Second))
	require.NoError(t, err)

	fills, err := e.Submit(ctx, market(t, "buy", "SYM", 10, domain.Buy, 2*time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 2)
	assertFill(t, fills[0], "aapl", 10, 150.00, true)

	// The MSFT ask is untouched even though its price is better.
	asks := e.book.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, "msft", asks[0].ID)
	assert.True(t, asks[0].Quantity.Equal(decimal.NewFromInt(10)))
}

// Conservation: quantity removed from the opposite side plus quantity
// resting on the order's own side equals the original quantity.
func TestSubmit_QuantityConservation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	askQtys := []float64{30, 25, 15}
	for i, q := range askQtys {
		_, err := e.Submit(ctx, limit(t, string(rune('a'+i)), "SYM", q, 150.00+float64(i), domain.Sell, time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	original := decimal.NewFromInt(100)
	incoming := limit(t, "big", "SYM", 100, 160.00, domain.Buy, 10*time.Second)
	fills, err := e.Submit(ctx, incoming)
	require.NoError(t, err)

	matched := decimal.Zero
	for _, f := range fills {
		if !f.Maker {
			matched = matched.Add(f.Quantity)
		}
	}
	resting := decimal.Zero
	for _, o := range e.book.Bids() {
		if o.ID == "big" {
			resting = o.Quantity
		}
	}
	assert.True(t, matched.Add(resting).Equal(original),
		"matched %v + resting %v != original %v", matched, resting, original)
	assert.Empty(t, e.book.Asks())
}

// Price improvement: every fill executes at the resting order's price.
func TestSubmit_FillPriceIsAlwaysRestingPrice(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, limit(t, "ask1", "SYM", 10, 149.00, domain.Sell, 0))
	require.NoError(t, err)
	_, err = e.Submit(ctx, limit(t, "ask2", "SYM", 10, 149.50, domain.Sell, time.Second))
	require.NoError(t, err)

	fills, err := e.Submit(ctx, limit(t, "buy", "SYM", 20, 155.00, domain.Buy, 2*time.Second))
	require.NoError(t, err)

	require.Len(t, fills, 4)
	for _, f := range fills[:2] {
		assert.True(t, f.Price.Equal(decimal.NewFromFloat(149.00)))
	}
	for _, f := range fills[2:] {
		assert.True(t, f.Price.Equal(decimal.NewFromFloat(149.50)))
	}
}

func TestSubmit_UndefinedTypeAndSideRejected(t *testing.T) {
	e, _ := newTestEngine(t)

	// Raw structs bypass the constructors to hit the defensive checks.
	badType := &domain.Order{ID: "x", Symbol: "SYM", Side: domain.Buy, Type: "STOP",
		Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(10), CreatedAt: bookEpoch}
	_, err := e.Submit(context.Background(), badType)
	assert.ErrorIs(t, err, domain.ErrUndefinedOrderType)

	badSide := &domain.Order{ID: "y", Symbol: "SYM", Side: "", Type: domain.Limit,
		Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(10), CreatedAt: bookEpoch}
	_, err = e.Submit(context.Background(), badSide)
	assert.ErrorIs(t, err, domain.ErrUndefinedOrderSide)

	assert.Empty(t, e.book.Bids())
	assert.Empty(t, e.book.Asks())
}

func TestCancelThroughEngine_Idempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	_, err := e.Submit(ctx, limit(t, "1", "SYM", 100, 150.00, domain.Buy, 0))
	require.NoError(t, err)

	found, err := e.Cancel(ctx, "1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = e.Cancel(ctx, "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSubmit_JournalsOrdersAndFills(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, limit(t, "1", "SYM", 40, 149.00, domain.Sell, 0))
	require.NoError(t, err)
	fills, err := e.Submit(ctx, limit(t, "2", "SYM", 100, 150.00, domain.Buy, time.Second))
	require.NoError(t, err)
	require.Len(t, fills, 2)

	journaled := repo.Fills()
	require.Len(t, journaled, 2)
	assert.Equal(t, fills[0].ID, journaled[0].ID)
	assert.Equal(t, fills[1].ID, journaled[1].ID)
}

func TestSnapshot_ReflectsMutations(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, limit(t, "1", "SYM", 100, 150.00, domain.Buy, 0))
	require.NoError(t, err)

	snap, err := e.Snapshot(ctx, "SYM")
	require.NoError(t, err)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, "1", snap.Bids[0].ID)

	found, err := e.Cancel(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)

	snap, err = e.Snapshot(ctx, "SYM")
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
}

func TestCancel_LastOrderDropsCachedSnapshot(t *testing.T) {
	bookCache := in_memory.NewCache()
	e := NewEngine(in_memory.NewMemoryRepo(), bookCache, zerolog.Nop())
	ctx := context.Background()

	_, err := e.Submit(ctx, limit(t, "1", "SYM", 100, 150.00, domain.Buy, 0))
	require.NoError(t, err)

	cached, err := bookCache.GetBook(ctx, "SYM")
	require.NoError(t, err)
	require.NotNil(t, cached)

	found, err := e.Cancel(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)

	// The key is gone, not replaced by an empty snapshot.
	cached, err = bookCache.GetBook(ctx, "SYM")
	require.NoError(t, err)
	assert.Nil(t, cached)

	// Reads fall through to the live book.
	snap, err := e.Snapshot(ctx, "SYM")
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestRestore_RebuildsBookFromJournal(t *testing.T) {
	repo := in_memory.NewMemoryRepo()
	ctx := context.Background()

	first := NewEngine(repo, in_memory.NewCache(), zerolog.Nop())
	_, err := first.Submit(ctx, limit(t, "1", "SYM", 100, 150.00, domain.Buy, 0))
	require.NoError(t, err)
	_, err = first.Submit(ctx, limit(t, "2", "SYM", 50, 151.00, domain.Sell, time.Second))
	require.NoError(t, err)

	second := NewEngine(repo, in_memory.NewCache(), zerolog.Nop())
	require.NoError(t, second.Restore(ctx, []string{"SYM"}))

	require.Len(t, second.book.Bids(), 1)
	require.Len(t, second.book.Asks(), 1)
	assert.Equal(t, "1", second.book.Bids()[0].ID)
	assert.Equal(t, "2", second.book.Asks()[0].ID)
}
