package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/core"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
)

var ErrNotConnected = errors.New("not connected to broker")

var _ Broker = (*Simulated)(nil)

// Simulated executes orders against an in-process matching engine instead
// of a real venue. It is used for paper trading and for exercising the
// core standalone. Position state is an explicit symbol keyed map owned by
// the broker, updated only from fills.
type Simulated struct {
	eng *core.Engine

	mu        sync.Mutex
	connected bool
	counter   int
	states    map[string]*OrderState // broker order id -> state
	byOrderID map[string]string      // engine order id -> broker order id
	positions map[string]decimal.Decimal
	cash      decimal.Decimal
}

func NewSimulated(eng *core.Engine, startingCash decimal.Decimal) *Simulated {
	return &Simulated{
		eng:       eng,
		states:    make(map[string]*OrderState),
		byOrderID: make(map[string]string),
		positions: make(map[string]decimal.Decimal),
		cash:      startingCash,
	}
}

func (s *Simulated) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *Simulated) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

// SubmitOrder forwards the order to the matching engine and derives the
// broker status from the outcome: construction or dispatch errors reject
// the order, a fully consumed order is filled, a limit remainder rests as
// pending and an IOC or market remainder is cancelled.
func (s *Simulated) SubmitOrder(ctx context.Context, o *domain.Order) (string, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return "", ErrNotConnected
	}
	s.counter++
	brokerID := fmt.Sprintf("SIM%06d", s.counter)
	now := time.Now()
	state := &OrderState{
		BrokerOrderID: brokerID,
		Order:         o,
		Status:        StatusSubmitted,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
	s.states[brokerID] = state
	s.byOrderID[o.ID] = brokerID
	s.mu.Unlock()

	fills, err := s.eng.Submit(ctx, o)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		state.Status = StatusRejected
		state.UpdatedAt = time.Now()
		return brokerID, err
	}

	s.applyFills(fills)

	switch {
	case o.Quantity.IsZero():
		state.Status = StatusFilled
	case len(fills) > 0:
		state.Status = StatusPartiallyFilled
	case o.Type == domain.Limit:
		state.Status = StatusPending
	default:
		// IOC or market remainder was discarded by the engine.
		state.Status = StatusCancelled
	}
	state.UpdatedAt = time.Now()
	return brokerID, nil
}

// applyFills updates per-order fill accounting, positions and cash from
// both legs of every trade. Caller holds the lock.
func (s *Simulated) applyFills(fills []domain.Fill) {
	for _, f := range fills {
		if brokerID, ok := s.byOrderID[f.OrderID]; ok {
			st := s.states[brokerID]
			st.AvgFillPrice = avgPrice(st.FilledQty, st.AvgFillPrice, f.Quantity, f.Price)
			st.FilledQty = st.FilledQty.Add(f.Quantity)
			if st.Order.Quantity.IsZero() {
				st.Status = StatusFilled
			} else {
				st.Status = StatusPartiallyFilled
			}
			st.UpdatedAt = f.ExecutedAt
		}

		notional := f.Quantity.Mul(f.Price)
		if f.Side == domain.Buy {
			s.positions[f.Symbol] = s.positions[f.Symbol].Add(f.Quantity)
			s.cash = s.cash.Sub(notional)
		} else {
			s.positions[f.Symbol] = s.positions[f.Symbol].Sub(f.Quantity)
			s.cash = s.cash.Add(notional)
		}
	}
}

func avgPrice(prevQty, prevAvg, qty, price decimal.Decimal) decimal.Decimal {
	total := prevQty.Add(qty)
	if total.IsZero() {
		return prevAvg
	}
	return prevQty.Mul(prevAvg).Add(qty.Mul(price)).Div(total)
}

func (s *Simulated) CancelOrder(ctx context.Context, brokerOrderID string) (bool, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return false, ErrNotConnected
	}
	state, ok := s.states[brokerOrderID]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	found, err := s.eng.Cancel(ctx, state.Order.ID)
	if err != nil || !found {
		return false, err
	}

	s.mu.Lock()
	state.Status = StatusCancelled
	state.UpdatedAt = time.Now()
	s.mu.Unlock()
	return true, nil
}

func (s *Simulated) AmendOrder(ctx context.Context, brokerOrderID string, newQuantity decimal.Decimal) (bool, error) {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return false, ErrNotConnected
	}
	state, ok := s.states[brokerOrderID]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	found, err := s.eng.Amend(ctx, state.Order.ID, newQuantity)
	if err != nil || !found {
		return found, err
	}

	s.mu.Lock()
	state.UpdatedAt = time.Now()
	s.mu.Unlock()
	return true, nil
}

func (s *Simulated) OrderStatus(ctx context.Context, brokerOrderID string) (*OrderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[brokerOrderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found", brokerOrderID)
	}
	cp := *state
	return &cp, nil
}

func (s *Simulated) OpenOrders(ctx context.Context) ([]*OrderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open []*OrderState
	for _, state := range s.states {
		switch state.Status {
		case StatusSubmitted, StatusPending, StatusPartiallyFilled:
			cp := *state
			open = append(open, &cp)
		}
	}
	return open, nil
}

func (s *Simulated) Positions(ctx context.Context) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(s.positions))
	for sym, qty := range s.positions {
		out[sym] = qty
	}
	return out, nil
}

func (s *Simulated) AccountInfo(ctx context.Context) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	positions := make(map[string]decimal.Decimal, len(s.positions))
	for sym, qty := range s.positions {
		positions[sym] = qty
	}
	return &Account{Cash: s.cash, Positions: positions}, nil
}
