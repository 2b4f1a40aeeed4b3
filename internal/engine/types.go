package engine

import "ladder/internal/common"

// Re-exported so callers only need to import engine, not also
// internal/common — the teacher's own types.go played the same re-export
// role for its (now-dropped) AssetType/OrderType enum. Market orders and
// multi-instrument asset typing are out of scope here (spec §1 Non-goals):
// this book is single-instrument and limit-only.
type Side = common.Side

const (
	Buy  = common.Buy
	Sell = common.Sell
)

type Order = common.Order
type Trade = common.Trade
