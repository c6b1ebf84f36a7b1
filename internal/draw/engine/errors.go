package engine

import "errors"

var (
	// ErrAlreadyRunning is returned by RequestDraw while a reveal is in
	// flight. The request is ignored; no state changes.
	ErrAlreadyRunning = errors.New("a draw is already running")

	// ErrExhausted is returned by RequestDraw when no further eligible
	// value exists: the roster is consumed and every value in the
	// configured range has already been drawn (or the bounded retry
	// search gave up against a pathologically dense exclusion set).
	// The caller must widen the range, reload the roster, or reset the
	// session before retrying.
	ErrExhausted = errors.New("no eligible values remain")
)
