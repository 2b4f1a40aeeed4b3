package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ladder/internal/book"
	"ladder/internal/common"
)

func order(id uint64, side common.Side, price int64, qty uint64) *common.Order {
	return &common.Order{ID: id, Side: side, Price: price, RemainingQuantity: qty, OriginalQuantity: qty}
}

func TestAddOrder_CreatesLevelAndIndexesOrder(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 10000, 100))

	assert.True(t, b.HasOrder(1))
	bid, ok := b.BestBid()
	assert.True(t, ok)
	assert.Equal(t, int64(10000), bid)

	_, askOk := b.BestAsk()
	assert.False(t, askOk)
}

func TestAddOrder_SamePriceAppendsToLevel(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 10000, 50))
	b.AddOrder(order(2, common.Buy, 10000, 50))

	level, ok := b.BestLevel(common.Buy)
	assert.True(t, ok)
	assert.Equal(t, 2, level.OrderCount())
	assert.Equal(t, uint64(100), level.TotalQuantity())
	// FIFO: order 1 must be first (invariant T).
	assert.Equal(t, uint64(1), level.Front().ID)
}

func TestPriceOrdering_BidsDescendingAsksAscending(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 9900, 10))
	b.AddOrder(order(2, common.Buy, 10000, 10))
	b.AddOrder(order(3, common.Sell, 10200, 10))
	b.AddOrder(order(4, common.Sell, 10100, 10))

	bids := b.TopLevels(common.Buy, 10)
	assert.Equal(t, []int64{10000, 9900}, []int64{bids[0].Price, bids[1].Price})

	asks := b.TopLevels(common.Sell, 10)
	assert.Equal(t, []int64{10100, 10200}, []int64{asks[0].Price, asks[1].Price})
}

func TestCancelOrder_RemovesLevelWhenLastOrderLeaves(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 10000, 100))

	assert.True(t, b.CancelOrder(1))
	assert.False(t, b.HasOrder(1))
	_, ok := b.BestBid()
	assert.False(t, ok, "level must be removed once its last order leaves (invariant N)")
}

func TestCancelOrder_UnknownIDIsNotAnError(t *testing.T) {
	b := book.New()
	assert.False(t, b.CancelOrder(999))
}

func TestCancelOrder_IsIdempotent(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 10000, 100))

	assert.True(t, b.CancelOrder(1))
	assert.False(t, b.CancelOrder(1), "second cancel of an already-cancelled id must return false")
}

func TestModifyQuantity_ReducesAndPreservesPriority(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 10000, 100))
	b.AddOrder(order(2, common.Buy, 10000, 50))

	assert.True(t, b.ModifyQuantity(1, 40))

	level, _ := b.BestLevel(common.Buy)
	assert.Equal(t, uint64(1), level.Front().ID, "reduce must not change relative order within the level")
	assert.Equal(t, uint64(90), level.TotalQuantity())
}

func TestModifyQuantity_RejectsNonReduction(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 10000, 100))

	assert.False(t, b.ModifyQuantity(1, 100), "equal quantity is not a reduction")
	assert.False(t, b.ModifyQuantity(1, 150), "increase is not supported on the reduce-only path")
}

func TestModifyQuantity_UnknownIDReturnsFalse(t *testing.T) {
	b := book.New()
	assert.False(t, b.ModifyQuantity(42, 1))
}

func TestSpreadAndMidPrice(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 9900, 10))
	b.AddOrder(order(2, common.Sell, 10100, 10))

	spread, ok := b.Spread()
	assert.True(t, ok)
	assert.Equal(t, int64(200), spread)

	mid, ok := b.MidPrice()
	assert.True(t, ok)
	assert.Equal(t, 10000.0, mid)
}

func TestSpreadAndMidPrice_AbsentWhenOneSideEmpty(t *testing.T) {
	b := book.New()
	b.AddOrder(order(1, common.Buy, 9900, 10))

	_, ok := b.Spread()
	assert.False(t, ok)
	_, ok = b.MidPrice()
	assert.False(t, ok)
}
