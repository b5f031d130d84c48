package service

import (
	"time"
)

// Scheduler runs delayed tasks keyed by id so that teardown can cancel
// all outstanding work deterministically. Scheduling a task under an id
// that already has a pending task replaces the pending one. Callbacks
// never fire after Close.
type Scheduler interface {
	// Schedule runs fn after delay unless the task is canceled or
	// replaced first.
	Schedule(id string, delay time.Duration, fn func())

	// Cancel removes a pending task. It reports whether a task was pending.
	Cancel(id string) bool

	// Pending reports whether a task with the given id is waiting to fire.
	Pending(id string) bool

	// Close cancels every pending task and rejects further scheduling.
	Close()
}
