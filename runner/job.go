package runner

import (
	"context"
	"time"
)

// Policy tells Enqueue what to do when a job with the same key is
// already queued or running.
type Policy int

const (
	// KEEP ignores the new job and leaves the existing one alone.
	KEEP Policy = iota
	// REPLACE cancels the existing job and queues the new one.
	REPLACE
)

// Job is one unit of background work: a scan session or an evidence
// delivery. The runner guarantees at-least-once execution, so Run bodies
// must be idempotent at their destination.
type Job struct {
	// Key identifies the job for the enqueue policies. Jobs for the
	// same help request share a key.
	Key string

	// Run does the work. The context carries the job's wall-clock
	// budget and is canceled when the job is replaced or the runner
	// shuts down.
	Run func(ctx context.Context) error

	// Budget bounds one execution attempt. Zero means the runner
	// default.
	Budget time.Duration

	// RequiresNetwork delays execution until the connectivity gate
	// reports the network as reachable.
	RequiresNetwork bool

	// Expedited asks for earlier scheduling. It is a hint: under
	// pressure an expedited job runs with ordinary priority.
	Expedited bool

	// OnDone, when set, receives the terminal outcome: nil after a
	// successful attempt, or the last error once the attempt ceiling
	// is exhausted.
	OnDone func(err error)
}
