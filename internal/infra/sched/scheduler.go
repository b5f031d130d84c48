// Package sched implements the keyed delayed-task scheduler used for all
// timers in the notification core (retry, long reset, toast auto-dismiss).
package sched

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"beacon/internal/domain/service"

	"go.uber.org/fx"
)

type taskScheduler struct {
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	seq    map[string]uint64
	closed bool
}

// Params holds dependencies for the scheduler, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Logger *slog.Logger
}

// New creates the scheduler and closes it on application shutdown so no
// callback can fire against a torn-down context.
func New(params Params) service.Scheduler {
	s := &taskScheduler{
		logger: params.Logger,
		timers: make(map[string]*time.Timer),
		seq:    make(map[string]uint64),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			s.Close()

			return nil
		},
	})

	return s
}

// Schedule runs fn after delay. A pending task with the same id is
// replaced; its callback will never fire.
func (s *taskScheduler) Schedule(id string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("scheduler closed, dropping task", slog.String("task", id))

		return
	}

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}

	s.seq[id]++
	n := s.seq[id]

	s.timers[id] = time.AfterFunc(delay, func() {
		// The sequence check rejects stale timers that raced with a
		// replace, cancel, or close between firing and locking.
		s.mu.Lock()
		if s.closed || s.seq[id] != n {
			s.mu.Unlock()

			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		fn()
	})
}

// Cancel removes a pending task. It reports whether a task was pending.
func (s *taskScheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}

	timer.Stop()
	s.seq[id]++
	delete(s.timers, id)

	return true
}

// Pending reports whether a task with the given id is waiting to fire.
func (s *taskScheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[id]

	return ok
}

// Close cancels every pending task and rejects further scheduling.
func (s *taskScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
