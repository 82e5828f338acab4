package bulkop

import "errors"

var (
	// ErrFatal marks a dispatch error that should abort the whole run rather
	// than being recorded as a per-item failure. Dispatchers wrap it:
	// fmt.Errorf("%w: bad credentials", bulkop.ErrFatal).
	ErrFatal = errors.New("fatal operation error")

	// ErrNotTerminal is returned by Close when the operation has not reached
	// a terminal status yet.
	ErrNotTerminal = errors.New("operation is not in a terminal state")
)
