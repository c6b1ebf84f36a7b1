package engine

import "time"

// Clock schedules the one-shot callbacks that drive a reveal: spin ticks,
// per-slot stop deadlines, and the trailing settle. The engine never reads
// wall time through it, so an implementation backed by virtual time can
// step a session deterministically.
type Clock interface {
	// AfterFunc runs fn on its own goroutine after d elapses.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the cancellation handle returned by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the
	// timer was stopped before it fired. Stopping an already-fired or
	// already-stopped timer is a harmless no-op.
	Stop() bool
}

type wallClock struct{}

// NewWallClock returns a Clock backed by the runtime timer wheel.
func NewWallClock() Clock {
	return wallClock{}
}

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
