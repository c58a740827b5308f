// Package schedule runs delayed callbacks that can be cancelled before they fire.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task is a pending callback.
type Task interface {
	// Stop cancels the task. It reports whether the call stopped the task
	// before it ran.
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// Real schedules on the runtime timer.
type Real struct{}

// AfterFunc wraps time.AfterFunc
func (Real) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// Noop is a Task that never runs.
type Noop struct{}

func (Noop) Stop() bool { return false }

// Manual is a Scheduler driven by explicit calls to Advance. It runs
// callbacks on the caller's goroutine, which makes timer-driven code
// deterministic under test.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManual creates a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every task that became due,
// in due order. Tasks scheduled by callbacks are honoured if they fall within
// the advanced window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.tasks, func(i, j int) bool {
			if m.tasks[i].at == m.tasks[j].at {
				return m.tasks[i].seq < m.tasks[j].seq
			}
			return m.tasks[i].at < m.tasks[j].at
		})
		var next *manualTask
		for _, t := range m.tasks {
			if !t.stopped && !t.fired && t.at <= target {
				next = t
				break
			}
		}
		if next == nil {
			m.now = target
			m.prune()
			m.mu.Unlock()
			return
		}
		next.fired = true
		if next.at > m.now {
			m.now = next.at
		}
		m.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of tasks that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (m *Manual) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.tasks = live
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
