package engine

// allocate builds a new live order and assigns it the next id and
// admission sequence number. The id counter is owned exclusively by the
// engine and never reused within a session (spec §9 "Id allocation").
func (e *Engine) allocate(side Side, price int64, qty uint64) *Order {
	e.nextOrderID++
	e.sequence++
	return &Order{
		ID:                e.nextOrderID,
		Side:              side,
		Price:             price,
		RemainingQuantity: qty,
		OriginalQuantity:  qty,
		Sequence:          e.sequence,
	}
}
