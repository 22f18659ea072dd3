// Package scheduler runs periodic tasks from a single loop.
//
// Tasks never run concurrently with each other: Tick runs every due
// task in turn, and Run calls Tick from one goroutine. Tests drive Tick
// directly with a fake clock.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Task is called with the time of the tick that found it due.
type Task func(now time.Time)

type entry struct {
	every time.Duration
	due   time.Time
	fn    Task
}

type Scheduler struct {
	now   func() time.Time
	mu    sync.Mutex
	next  uint64
	tasks map[uint64]*entry
}

// Handle cancels a task. The zero value and nil are inactive.
type Handle struct {
	id uint64
	s  *Scheduler
}

func New() *Scheduler {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{
		now:   now,
		tasks: make(map[uint64]*entry),
	}
}

// Every schedules fn to run once per interval, the first time one
// interval from now.
func (s *Scheduler) Every(interval time.Duration, fn Task) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.tasks[s.next] = &entry{
		every: interval,
		due:   s.now().Add(interval),
		fn:    fn,
	}
	return &Handle{id: s.next, s: s}
}

// Cancel stops the task. Cancelling twice, or cancelling from inside
// the task itself, is fine.
func (h *Handle) Cancel() {
	if h == nil || h.s == nil {
		return
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	delete(h.s.tasks, h.id)
}

// Active reports whether the task is still scheduled.
func (h *Handle) Active() bool {
	if h == nil || h.s == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	_, ok := h.s.tasks[h.id]
	return ok
}

// Len is the number of scheduled tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Tick runs every task that is due, oldest task first. A task that
// fell behind by several intervals runs once and is rescheduled from
// now.
func (s *Scheduler) Tick() {
	now := s.now()
	s.mu.Lock()
	due := make([]uint64, 0, len(s.tasks))
	for id, e := range s.tasks {
		if !now.Before(e.due) {
			due = append(due, id)
		}
	}
	s.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	for _, id := range due {
		s.mu.Lock()
		e, ok := s.tasks[id]
		if ok {
			e.due = e.due.Add(e.every)
			if !now.Before(e.due) {
				e.due = now.Add(e.every)
			}
		}
		s.mu.Unlock()
		// An earlier task may have cancelled this one.
		if ok {
			e.fn(now)
		}
	}
}

// Run calls Tick at the given resolution until ctx is done.
func (s *Scheduler) Run(ctx context.Context, resolution time.Duration) {
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
