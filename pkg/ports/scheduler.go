package ports

import "time"

// Scheduler is a single-threaded cooperative event loop. Tasks run one at a
// time, in posting order, on the loop goroutine.
type Scheduler interface {
	// Post queues a task for a later turn. Safe from any goroutine.
	Post(task func())

	// After runs task on the loop once d has elapsed. The returned func
	// cancels it; a cancelled task never runs.
	After(d time.Duration, task func()) (cancel func())

	// Now returns the loop clock.
	Now() time.Time
}
