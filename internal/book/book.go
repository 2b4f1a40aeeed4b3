package book

import (
	"github.com/tidwall/btree"

	"ladder/internal/common"
)

// priceLevels is an ordered map from price to *PriceLevel. The comparator
// passed to btree.NewBTreeG decides side order: bids compare greatest
// first, asks compare least first (invariant P).
type priceLevels = btree.BTreeG[*PriceLevel]

// Book holds the two price-indexed sides and the order-id index. All
// operations are synchronous; the matching engine is the sole caller.
type Book struct {
	Bids *priceLevels // descending: best bid first.
	Asks *priceLevels // ascending: best ask first.

	index map[uint64]*common.Order
	sides map[uint64]common.Side // side each indexed order rests on, kept in step with index; CancelOrder routes by the indexed order's own Side.
}

// New creates an empty two-sided book.
func New() *Book {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price
	})
	return &Book{
		Bids:  bids,
		Asks:  asks,
		index: make(map[uint64]*common.Order),
		sides: make(map[uint64]common.Side),
	}
}

func (b *Book) levelsFor(side common.Side) *priceLevels {
	if side == common.Buy {
		return b.Bids
	}
	return b.Asks
}

// AddOrder inserts a live order into the level for its (side, price),
// creating the level if absent, and records it in the id index.
// Precondition: order.RemainingQuantity > 0 and order.ID is not already
// indexed (spec §4.2).
func (b *Book) AddOrder(o *common.Order) {
	levels := b.levelsFor(o.Side)
	probe := &PriceLevel{Price: o.Price}
	level, ok := levels.GetMut(probe)
	if !ok {
		level = NewPriceLevel(o.Price)
		levels.Set(level)
	}
	level.Add(o)
	b.index[o.ID] = o
	b.sides[o.ID] = o.Side
}

// CancelOrder removes a live order from the book. Returns false (not an
// error) if the id is unknown, so repeated cancels are idempotent.
func (b *Book) CancelOrder(id uint64) bool {
	o, ok := b.index[id]
	if !ok {
		return false
	}
	levels := b.levelsFor(o.Side)
	probe := &PriceLevel{Price: o.Price}
	if level, ok := levels.GetMut(probe); ok {
		level.Remove(id)
		if level.Empty() {
			levels.Delete(probe)
		}
	}
	delete(b.index, id)
	delete(b.sides, id)
	return true
}

// ModifyQuantity implements the reduce-only quantity path (spec §4.2,
// §4.3.5): returns false if the id is unknown, if newQty is zero, or if
// newQty does not strictly reduce the order's current remaining quantity.
// Time priority within the level is untouched (invariant T).
func (b *Book) ModifyQuantity(id uint64, newQty uint64) bool {
	o, ok := b.index[id]
	if !ok || newQty == 0 || newQty >= o.RemainingQuantity {
		return false
	}
	delta := o.RemainingQuantity - newQty
	o.RemainingQuantity = newQty

	levels := b.levelsFor(o.Side)
	probe := &PriceLevel{Price: o.Price}
	if level, ok := levels.GetMut(probe); ok {
		level.AdjustTotal(delta)
	}
	return true
}

// CleanLevel erases the named level if it exists and is empty. Idempotent.
// Called by the matcher after draining a level during the matching walk.
func (b *Book) CleanLevel(side common.Side, price int64) {
	levels := b.levelsFor(side)
	probe := &PriceLevel{Price: price}
	if level, ok := levels.GetMut(probe); ok && level.Empty() {
		levels.Delete(probe)
	}
}

// RemoveFromIndex unlinks id from the index without touching any level.
// Used by the matcher once it has already popped the maker off its level.
func (b *Book) RemoveFromIndex(id uint64) {
	delete(b.index, id)
	delete(b.sides, id)
}

// BestLevel returns the best (first) level on the given side, or nil if
// that side is empty. The returned pointer is the level actually stored
// in the tree: mutating it (Add/PopFront/Remove/AdjustTotal) mutates the
// book directly, which is how the matching engine drains a level during
// its walk without a separate mutable lookup.
func (b *Book) BestLevel(side common.Side) (*PriceLevel, bool) {
	return b.levelsFor(side).Min()
}

// BestBid returns the best bid price and true, or (0, false) if bids is
// empty.
func (b *Book) BestBid() (int64, bool) {
	level, ok := b.Bids.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// BestAsk returns the best ask price and true, or (0, false) if asks is
// empty.
func (b *Book) BestAsk() (int64, bool) {
	level, ok := b.Asks.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// Spread returns best ask minus best bid, when both sides are non-empty.
func (b *Book) Spread() (int64, bool) {
	bid, bidOk := b.BestBid()
	ask, askOk := b.BestAsk()
	if !bidOk || !askOk {
		return 0, false
	}
	return ask - bid, true
}

// MidPrice returns the arithmetic midpoint of best bid and best ask, when
// both sides are non-empty. Returned as float64 for one extra bit of
// fractional precision (spec §4.2); never used in the matching path.
func (b *Book) MidPrice() (float64, bool) {
	bid, bidOk := b.BestBid()
	ask, askOk := b.BestAsk()
	if !bidOk || !askOk {
		return 0, false
	}
	return float64(bid+ask) / 2, true
}

// HasOrder reports whether id is still live in the book.
func (b *Book) HasOrder(id uint64) bool {
	_, ok := b.index[id]
	return ok
}

// GetOrder returns the live order for id, or nil if unknown.
func (b *Book) GetOrder(id uint64) *common.Order {
	return b.index[id]
}

// LevelView is a read-only snapshot of one price level for display.
type LevelView struct {
	Price    int64
	Quantity uint64
}

// TopLevels returns the best n levels of the requested side, best first.
func (b *Book) TopLevels(side common.Side, n int) []LevelView {
	levels := b.levelsFor(side)
	views := make([]LevelView, 0, n)
	levels.Scan(func(level *PriceLevel) bool {
		if len(views) >= n {
			return false
		}
		views = append(views, LevelView{Price: level.Price, Quantity: level.TotalQuantity()})
		return true
	})
	return views
}
