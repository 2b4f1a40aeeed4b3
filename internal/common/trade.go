package common

import "fmt"

// Trade is an immutable fill record. Price is always the maker's resting
// price at the moment of the match (spec §3, §4.3.3).
type Trade struct {
	MakerOrderID uint64
	TakerOrderID uint64
	Price        int64
	Quantity     uint64
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{maker=%d taker=%d price=%d qty=%d}",
		t.MakerOrderID, t.TakerOrderID, t.Price, t.Quantity,
	)
}
