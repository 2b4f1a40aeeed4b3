// Package engine implements the matching engine: order allocation, id
// allocation, the taker-walks-the-book matching algorithm, and cancel/modify
// on top of internal/book.
package engine

import (
	"github.com/rs/zerolog/log"

	"ladder/internal/book"
	"ladder/internal/common"
)

// priceLevel is a local alias so matcher.go's signatures read in terms of
// the engine's own vocabulary.
type priceLevel = book.PriceLevel

// Engine owns the id counter and the book. It keeps no store of its own:
// a live order is reachable only through the book's index, and a filled or
// cancelled order is no longer retained. All operations are synchronous and deterministic: given the same call sequence it
// produces the same trades and the same final book (spec §5).
type Engine struct {
	book        *book.Book
	nextOrderID uint64
	sequence    uint64
}

// New creates an empty engine with an empty book.
func New() *Engine {
	return &Engine{book: book.New()}
}

// Submit allocates a new order, attempts to match it against the opposite
// side, rests any remainder, and returns the trades generated (spec
// §4.3.1). price and qty must be strictly positive.
func (e *Engine) Submit(side Side, price int64, qty uint64) ([]Trade, error) {
	if price <= 0 || qty == 0 {
		return nil, common.ErrInvalidArgument
	}

	order := e.allocate(side, price, qty)
	trades := e.match(order)

	if order.RemainingQuantity > 0 {
		e.book.AddOrder(order)
	}

	log.Debug().
		Uint64("orderID", order.ID).
		Str("side", side.String()).
		Int64("price", price).
		Uint64("qty", qty).
		Int("fills", len(trades)).
		Msg("order submitted")

	return trades, nil
}

// Cancel delegates to the book. Not finding the id is not an error: it
// returns false, making cancel idempotent under at-least-once delivery
// (spec §4.3.4, §7).
func (e *Engine) Cancel(id uint64) bool {
	ok := e.book.CancelOrder(id)
	log.Debug().Uint64("orderID", id).Bool("wasLive", ok).Msg("order cancel")
	return ok
}

// Modify implements both modify paths (spec §4.3.5):
//   - same price: reduce-only quantity change via the book, no trades.
//   - different price: cancel the original and resubmit at the new price
//     and quantity. This forfeits time priority and assigns a new id,
//     discoverable via LastOrderID.
func (e *Engine) Modify(id uint64, newPrice int64, newQty uint64) ([]Trade, error) {
	order := e.book.GetOrder(id)
	if order == nil {
		return nil, common.ErrOrderNotFound
	}

	if newPrice == order.Price {
		if !e.book.ModifyQuantity(id, newQty) {
			return nil, common.ErrInvalidModify
		}
		log.Debug().Uint64("orderID", id).Uint64("newQty", newQty).Msg("order reduced in place")
		return nil, nil
	}

	side := order.Side
	e.book.CancelOrder(id)
	trades, err := e.Submit(side, newPrice, newQty)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Uint64("originalOrderID", id).
		Uint64("newOrderID", e.nextOrderID).
		Msg("order repriced: cancelled and resubmitted")
	return trades, nil
}

// Book exposes a read-only view of the book for top-of-book queries.
func (e *Engine) Book() *book.Book { return e.book }

// LastOrderID returns the most recently assigned order id. Never decreases.
func (e *Engine) LastOrderID() uint64 { return e.nextOrderID }

// fatalf logs a corrupted-invariant condition and aborts the process. Per
// spec §7, a LogicError is a fatal, non-recoverable assertion failure: it
// is never returned to a caller.
func (e *Engine) fatalf(format string, args ...any) {
	log.Fatal().Msgf(format, args...)
}
