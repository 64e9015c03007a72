// Command demo runs the matching core standalone through the simulated
// broker: it builds a small book, crosses it with market and IOC orders
// and prints the resulting fills and account state.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/adapter/in_memory"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/broker"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/config"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/core"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Logging.Level, "console")

	repo := in_memory.NewMemoryRepo()
	engine := core.NewEngine(repo, in_memory.NewCache(), log)
	sim := broker.NewSimulated(engine, decimal.NewFromInt(100000))
	if err := sim.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}

	submit := func(o *domain.Order, err error) {
		if err != nil {
			log.Fatal().Err(err).Msg("build order failed")
		}
		id, err := sim.SubmitOrder(ctx, o)
		if err != nil {
			log.Error().Err(err).Str("order_id", o.ID).Msg("order rejected")
			return
		}
		state, _ := sim.OrderStatus(ctx, id)
		fmt.Printf("%s %s %-6s %s x %s -> %s\n",
			id, o.Symbol, o.Type, o.Quantity, priceOf(o), state.Status)
	}

	now := time.Now()
	qty := decimal.NewFromInt

	// Build both sides of the book.
	submit(domain.NewLimitOrder("1", "AAPL", qty(100), decimal.NewFromFloat(150.50), domain.Buy, now))
	submit(domain.NewLimitOrder("2", "AAPL", qty(200), decimal.NewFromFloat(150.25), domain.Buy, now.Add(time.Millisecond)))
	submit(domain.NewLimitOrder("3", "AAPL", qty(100), decimal.NewFromFloat(151.00), domain.Sell, now.Add(2*time.Millisecond)))
	submit(domain.NewLimitOrder("4", "AAPL", qty(150), decimal.NewFromFloat(151.25), domain.Sell, now.Add(3*time.Millisecond)))

	// Cross it.
	submit(domain.NewMarketOrder("5", "AAPL", qty(120), domain.Buy, now.Add(4*time.Millisecond)))
	submit(domain.NewIOCOrder("6", "AAPL", qty(500), decimal.NewFromFloat(150.50), domain.Sell, now.Add(5*time.Millisecond)))

	snap, err := engine.Snapshot(ctx, "AAPL")
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot failed")
	}
	fmt.Printf("\nbook: %d bids, %d asks\n", len(snap.Bids), len(snap.Asks))
	for _, f := range repo.Fills() {
		role := "taker"
		if f.Maker {
			role = "maker"
		}
		fmt.Printf("fill %s order=%s %s %s x %s (%s)\n",
			f.ID[:8], f.OrderID, f.Side, f.Quantity, f.Price, role)
	}

	account, err := sim.AccountInfo(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("account info failed")
	}
	fmt.Printf("\ncash: %s positions: %v\n", account.Cash, account.Positions)
}

func priceOf(o *domain.Order) string {
	if o.Type == domain.Market {
		return "MKT"
	}
	return o.Price.String()
}
