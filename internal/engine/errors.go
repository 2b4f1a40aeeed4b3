package engine

import "ladder/internal/common"

// Re-exported recoverable error kinds (spec §7). LogicError is
// deliberately absent: it is fatal and never returned, see fatalf.
var (
	ErrOrderNotFound   = common.ErrOrderNotFound
	ErrInvalidModify   = common.ErrInvalidModify
	ErrInvalidArgument = common.ErrInvalidArgument
)
