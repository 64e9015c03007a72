package domain

import "time"

// BookSnapshot is a point-in-time copy of one symbol's resting orders,
// bids best-first and asks best-first. It shares no storage with the live
// book, so readers may hold it without a lock.
type BookSnapshot struct {
	Symbol    string
	Bids      []Order
	Asks      []Order
	Timestamp time.Time
}

func (s *BookSnapshot) DeepCopy() *BookSnapshot {
	if s == nil {
		return nil
	}
	out := &BookSnapshot{
		Symbol:    s.Symbol,
		Bids:      make([]Order, len(s.Bids)),
		Asks:      make([]Order, len(s.Asks)),
		Timestamp: s.Timestamp,
	}
	copy(out.Bids, s.Bids)
	copy(out.Asks, s.Asks)
	return out
}
