package common

import "errors"

// Recoverable error kinds surfaced to callers (spec §7). A fourth kind,
// LogicError, is not in this list: it is a fatal invariant violation and
// is never returned — it is logged at Fatal and the process aborts.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidModify   = errors.New("modify at same price must strictly reduce quantity")
	ErrInvalidArgument = errors.New("price and quantity must be strictly positive")
)
