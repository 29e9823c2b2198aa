package store

import (
	"time"

	"github.com/bep/debounce"
)

// Scheduler defers a save until a quiet period follows the last mutation.
// Scheduling while a call is pending replaces the pending call instead of
// queueing a second one, so a burst of mutations produces one save.
type Scheduler interface {
	Schedule(fn func())
}

// debounceScheduler is the production Scheduler for strategies with
// network latency.
type debounceScheduler struct {
	debounced func(func())
}

// NewDebounceScheduler returns a Scheduler that coalesces bursts of calls
// into one invocation after the given quiet delay.
func NewDebounceScheduler(delay time.Duration) Scheduler {
	return &debounceScheduler{debounced: debounce.New(delay)}
}

func (s *debounceScheduler) Schedule(fn func()) {
	s.debounced(fn)
}

// immediateScheduler runs the function synchronously. Used for strategies
// that persist locally, where there is nothing to coalesce.
type immediateScheduler struct{}

func (immediateScheduler) Schedule(fn func()) {
	fn()
}
