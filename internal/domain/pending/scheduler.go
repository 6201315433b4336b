// Package pending schedules delayed writes with cancel-and-replace semantics.
//
// Each write is keyed by (scope, field), typically (node ID, "tabs"). Scheduling
// a write for a key that already has one pending cancels the older write, so a
// stale value can never land after a newer one.
package pending

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer is a cancellable scheduled callback
type Timer interface {
	Stop() bool
}

// Clock creates timers
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by time.AfterFunc
func RealClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Executor runs a fired callback. The canvas passes one that takes its event
// lock so timer callbacks are serialized with UI events.
type Executor func(func())

// Key identifies one pending write
type Key struct {
	Scope string
	Field string
}

// Recorder receives scheduler events
type Recorder interface {
	RecordScheduled(field, outcome string)
}

// Outcomes reported to the Recorder
const (
	OutcomeScheduled = "scheduled"
	OutcomeFired     = "fired"
	OutcomeCancelled = "cancelled"
	OutcomeFlushed   = "flushed"
	OutcomeStale     = "stale"
)

type task struct {
	seq   uint64
	timer Timer
	fn    func()
}

// Scheduler holds at most one pending write per key
type Scheduler struct {
	clock   Clock
	exec    Executor
	logger  *zap.Logger
	metrics Recorder

	mu     sync.Mutex
	seq    uint64        // Protected by mu
	tasks  map[Key]*task // Protected by mu
	closed bool          // Protected by mu
}

// NewScheduler creates a scheduler. A nil clock uses real time; a nil executor
// runs callbacks on the timer goroutine.
func NewScheduler(clock Clock, exec Executor, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if exec == nil {
		exec = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:  clock,
		exec:   exec,
		logger: logger,
		tasks:  make(map[Key]*task),
	}
}

// WithMetrics adds scheduler event tracking
func (s *Scheduler) WithMetrics(metrics Recorder) *Scheduler {
	s.metrics = metrics
	return s
}

// Schedule replaces any pending write for key with fn, run after delay.
// A non-positive delay cancels the pending write and runs fn immediately.
func (s *Scheduler) Schedule(key Key, delay time.Duration, fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelLocked(key)

	if delay <= 0 {
		s.mu.Unlock()
		fn()
		return
	}

	s.seq++
	seq := s.seq
	t := &task{seq: seq, fn: fn}
	s.tasks[key] = t
	t.timer = s.clock.AfterFunc(delay, func() {
		s.exec(func() { s.fire(key, seq) })
	})
	s.mu.Unlock()

	s.record(key.Field, OutcomeScheduled)
}

// fire runs the task if it is still the current one for key
func (s *Scheduler) fire(key Key, seq uint64) {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if !ok || t.seq != seq {
		s.mu.Unlock()
		s.logger.Debug("Dropping superseded write",
			zap.String("scope", key.Scope),
			zap.String("field", key.Field))
		s.record(key.Field, OutcomeStale)
		return
	}
	delete(s.tasks, key)
	s.mu.Unlock()

	s.record(key.Field, OutcomeFired)
	t.fn()
}

// Cancel drops the pending write for key. Returns true if one was pending.
func (s *Scheduler) Cancel(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(key)
}

// CancelScope drops every pending write of a scope
func (s *Scheduler) CancelScope(scope string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.tasks {
		if key.Scope == scope && s.cancelLocked(key) {
			n++
		}
	}
	return n
}

// cancelLocked stops and forgets a task (must hold lock)
func (s *Scheduler) cancelLocked(key Key) bool {
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	s.record(key.Field, OutcomeCancelled)
	return true
}

// Flush runs the pending write for key now. Returns true if one was pending.
func (s *Scheduler) Flush(key Key) bool {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if ok {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.record(key.Field, OutcomeFlushed)
	t.fn()
	return true
}

// Pending reports whether a write is scheduled for key
func (s *Scheduler) Pending(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Len returns the number of pending writes
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels every pending write and rejects new ones
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.tasks {
		s.cancelLocked(key)
	}
	s.closed = true
}

func (s *Scheduler) record(field, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordScheduled(field, outcome)
	}
}
