package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladder/internal/engine"
)

// --- Scenario 1: resting, no match ------------------------------------------

func TestSubmit_RestingNoMatch(t *testing.T) {
	e := engine.New()

	trades, err := e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)
	assert.Empty(t, trades)

	bid, ok := e.Book().BestBid()
	assert.True(t, ok)
	assert.Equal(t, int64(10000), bid)
	_, askOk := e.Book().BestAsk()
	assert.False(t, askOk)
}

// --- Scenario 2: exact match --------------------------------------------

func TestSubmit_ExactMatch(t *testing.T) {
	e := engine.New()

	trades, err := e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)
	assert.Empty(t, trades)

	trades, err = e.Submit(engine.Sell, 10000, 100)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, engine.Trade{MakerOrderID: 1, TakerOrderID: 2, Price: 10000, Quantity: 100}, trades[0])

	_, bidOk := e.Book().BestBid()
	_, askOk := e.Book().BestAsk()
	assert.False(t, bidOk)
	assert.False(t, askOk)
}

// --- Scenario 3: partial fill, remainder rests --------------------------

func TestSubmit_PartialFillRests(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Buy, 10000, 50)
	require.NoError(t, err)

	trades, err := e.Submit(engine.Sell, 10000, 100)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(50), trades[0].Quantity)

	assert.True(t, e.Book().HasOrder(2))
	ask, ok := e.Book().BestAsk()
	assert.True(t, ok)
	assert.Equal(t, int64(10000), ask)
	level, _ := e.Book().BestLevel(engine.Sell)
	assert.Equal(t, uint64(50), level.TotalQuantity())
}

// --- Scenario 4: price priority ------------------------------------------

func TestSubmit_PricePriority(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Buy, 9900, 100)
	require.NoError(t, err)
	_, err = e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)

	trades, err := e.Submit(engine.Sell, 9800, 100)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(10000), trades[0].Price)
}

// --- Scenario 5: time priority -------------------------------------------

func TestSubmit_TimePriority(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Buy, 10000, 50) // id 1
	require.NoError(t, err)
	_, err = e.Submit(engine.Buy, 10000, 50) // id 2
	require.NoError(t, err)

	trades, err := e.Submit(engine.Sell, 10000, 50)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].MakerOrderID)
}

// --- Scenario 6: multi-level sweep ----------------------------------------

func TestSubmit_MultiLevelSweep(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Sell, 10000, 50)
	require.NoError(t, err)
	_, err = e.Submit(engine.Sell, 10100, 50)
	require.NoError(t, err)
	_, err = e.Submit(engine.Sell, 10200, 50)
	require.NoError(t, err)

	trades, err := e.Submit(engine.Buy, 10200, 150)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	prices := []int64{trades[0].Price, trades[1].Price, trades[2].Price}
	assert.Equal(t, []int64{10000, 10100, 10200}, prices)

	var total uint64
	for _, tr := range trades {
		total += tr.Quantity
	}
	assert.Equal(t, uint64(150), total)

	_, askOk := e.Book().BestAsk()
	assert.False(t, askOk)
}

// --- Scenario: taker worse than every opposite level rests fully ---------

func TestSubmit_WorsePriceRestsFully(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Sell, 10100, 50)
	require.NoError(t, err)

	trades, err := e.Submit(engine.Buy, 10000, 50)
	require.NoError(t, err)
	assert.Empty(t, trades)

	bid, ok := e.Book().BestBid()
	assert.True(t, ok)
	assert.Equal(t, int64(10000), bid)
}

// --- Cancel -----------------------------------------------------------

func TestCancel_UnknownIDReturnsFalse(t *testing.T) {
	e := engine.New()
	assert.False(t, e.Cancel(999))
}

func TestCancel_RemovesOnlyOrderOnLevel(t *testing.T) {
	e := engine.New()
	_, err := e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)

	assert.True(t, e.Cancel(1))
	_, ok := e.Book().BestBid()
	assert.False(t, ok)
}

func TestCancel_IsIdempotent(t *testing.T) {
	e := engine.New()
	_, err := e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)

	assert.True(t, e.Cancel(1))
	assert.False(t, e.Cancel(1))
}

// --- Modify -------------------------------------------------------------

func TestModify_NotFound(t *testing.T) {
	e := engine.New()
	_, err := e.Modify(1, 10000, 10)
	assert.ErrorIs(t, err, engine.ErrOrderNotFound)
}

func TestModify_SamePriceReduceOnly(t *testing.T) {
	e := engine.New()
	_, err := e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)

	trades, err := e.Modify(1, 10000, 40)
	require.NoError(t, err)
	assert.Empty(t, trades)

	level, _ := e.Book().BestLevel(engine.Buy)
	assert.Equal(t, uint64(40), level.TotalQuantity())
}

func TestModify_SamePriceRejectsNonReduction(t *testing.T) {
	e := engine.New()
	_, err := e.Submit(engine.Buy, 10000, 100)
	require.NoError(t, err)

	_, err = e.Modify(1, 10000, 100)
	assert.ErrorIs(t, err, engine.ErrInvalidModify)

	_, err = e.Modify(1, 10000, 150)
	assert.ErrorIs(t, err, engine.ErrInvalidModify)
}

// --- Scenario 7: modify price triggers match ------------------------------

func TestModify_RepriceTriggersMatch(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Sell, 10100, 100) // id 1
	require.NoError(t, err)
	_, err = e.Submit(engine.Buy, 9900, 100) // id 2
	require.NoError(t, err)

	trades, err := e.Modify(2, 10100, 100)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(100), trades[0].Quantity)

	assert.False(t, e.Book().HasOrder(2), "original order id is no longer live after reprice")
	assert.Equal(t, uint64(3), e.LastOrderID(), "reprice assigns a new id via cancel+resubmit")
}

// --- submit validation -----------------------------------------------------

func TestSubmit_RejectsNonPositivePriceOrQuantity(t *testing.T) {
	e := engine.New()

	_, err := e.Submit(engine.Buy, 0, 10)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	_, err = e.Submit(engine.Buy, 100, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}
