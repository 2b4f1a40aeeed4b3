// Package book implements the price-indexed, two-sided limit order book:
// per-price FIFO queues (PriceLevel) and the ordered bid/ask maps plus the
// order-id index (Book). It is the passive data structure the matching
// engine drives; it never matches orders itself.
package book

import "ladder/internal/common"

// PriceLevel is the time-ordered FIFO queue of live orders resting at one
// price on one side, with a cached aggregate quantity (invariant Q).
type PriceLevel struct {
	Price         int64
	Orders        []*common.Order
	totalQuantity uint64
}

// NewPriceLevel creates an empty level at the given price.
func NewPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Add appends an order to the back of the queue — admission order is the
// time-priority tiebreaker (invariant T).
func (l *PriceLevel) Add(o *common.Order) {
	l.Orders = append(l.Orders, o)
	l.totalQuantity += o.RemainingQuantity
}

// Front returns the oldest live order, or nil if the level is empty.
func (l *PriceLevel) Front() *common.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// PopFront removes the oldest order and returns it.
func (l *PriceLevel) PopFront() *common.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	o := l.Orders[0]
	l.Orders = l.Orders[1:]
	l.totalQuantity -= o.RemainingQuantity
	return o
}

// Remove deletes the order with the given id from the queue, wherever it
// sits. Used by cancel, where the target need not be at the front.
func (l *PriceLevel) Remove(id uint64) bool {
	for i, o := range l.Orders {
		if o.ID == id {
			l.totalQuantity -= o.RemainingQuantity
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return true
		}
	}
	return false
}

// AdjustTotal decrements the cached total by delta. This is the only
// direction the source ever needs: delta is always "amount removed",
// whether from a match-time fill or a reduce-only modify (spec §9).
func (l *PriceLevel) AdjustTotal(delta uint64) {
	l.totalQuantity -= delta
}

// TotalQuantity returns the cached aggregate remaining quantity.
func (l *PriceLevel) TotalQuantity() uint64 { return l.totalQuantity }

// Empty reports whether the level holds no live orders (invariant N).
func (l *PriceLevel) Empty() bool { return len(l.Orders) == 0 }

// OrderCount returns the number of live orders resting at this level.
func (l *PriceLevel) OrderCount() int { return len(l.Orders) }
