package engine

// crosses reports whether a resting level at levelPrice would trade
// against an incoming order of the given side and limit price (spec
// §4.3.2).
func crosses(side Side, takerPrice, levelPrice int64) bool {
	if side == Buy {
		return levelPrice <= takerPrice
	}
	return levelPrice >= takerPrice
}

// opposite returns the side a taker walks against.
func opposite(side Side) Side {
	if side == Buy {
		return Sell
	}
	return Buy
}

// match walks the book's opposite side in best-first order, filling the
// taker against resting liquidity until the taker is exhausted or the
// opposite side no longer crosses. Any unfilled remainder is left on
// taker for the caller to rest (spec §4.3.2).
func (e *Engine) match(taker *Order) []Trade {
	var trades []Trade
	oppSide := opposite(taker.Side)

	for taker.RemainingQuantity > 0 {
		level, ok := e.book.BestLevel(oppSide)
		if !ok || !crosses(taker.Side, taker.Price, level.Price) {
			break
		}
		trades = append(trades, e.fillLevel(taker, level)...)
		if level.Empty() {
			e.book.CleanLevel(oppSide, level.Price)
		}
	}
	return trades
}

// fillLevel drains one price level against the taker, emitting a trade
// per maker consumed (spec §4.3.3). Fill price is always the maker's
// resting price; ties among makers at this level are already FIFO by
// construction (invariant T).
func (e *Engine) fillLevel(taker *Order, level *priceLevel) []Trade {
	var trades []Trade
	for taker.RemainingQuantity > 0 && !level.Empty() {
		maker := level.Front()
		if maker == nil {
			e.fatalf("level reported non-empty but Front() returned nil at price %d", level.Price)
		}

		fill := min(taker.RemainingQuantity, maker.RemainingQuantity)

		taker.RemainingQuantity -= fill
		maker.RemainingQuantity -= fill
		level.AdjustTotal(fill)

		trades = append(trades, Trade{
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			Price:        maker.Price,
			Quantity:     fill,
		})

		if maker.RemainingQuantity == 0 {
			e.book.RemoveFromIndex(maker.ID)
			level.PopFront()
		}
	}
	return trades
}
