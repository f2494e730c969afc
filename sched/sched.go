// Package sched provides the single-threaded execution model shared by every embed player.
//
// All lifecycle code runs on one Scheduler. Work arriving from other goroutines
// (backend callbacks, IPC readers) must be handed over with Post so that the core
// never needs locks.
package sched

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped a pending callback.
	Stop() bool
}

// Scheduler serializes callbacks and provides time.
type Scheduler interface {
	// Now returns the current time of the scheduler.
	Now() time.Time

	// AfterFunc runs fn on the scheduler once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer

	// Post runs fn on the scheduler at the next turn.
	Post(fn func())
}
