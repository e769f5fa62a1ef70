package mainloop

import (
	"sort"
	"sync"
	"time"

	"github.com/bnema/gregify/internal/application/port"
)

// Manual is a loop driven by its caller with a virtual clock. Tests and
// deterministic replays use it in place of Loop.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    uint64
	ran    uint64
	posted chan struct{}
}

var _ port.Scheduler = (*Manual)(nil)

// NewManual creates a manual loop whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, posted: make(chan struct{}, 1)}
}

// Post queues fn until the next RunPending or Advance.
func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.posted <- struct{}{}:
	default:
	}
}

// AfterFunc schedules fn at the virtual time now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) port.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Now returns the virtual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// RunPending runs queued tasks, including tasks they post, and returns how
// many ran.
func (m *Manual) RunPending() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn()
		ran++

		m.mu.Lock()
		m.ran++
		m.mu.Unlock()
	}
}

// Ran returns the total number of posted tasks executed so far.
func (m *Manual) Ran() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ran
}

// Advance moves the clock forward by d, firing due timers in order and
// draining the queue around each.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.RunPending()

		m.mu.Lock()
		t := m.popDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			break
		}
		m.now = t.due
		m.mu.Unlock()

		t.fn()
	}
	m.RunPending()
}

// RunUntil drains the queue until cond holds or timeout elapses in real
// time. It is used when results arrive from other goroutines.
func (m *Manual) RunUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		m.RunPending()
		if cond() {
			return true
		}
		select {
		case <-m.posted:
		case <-deadline.C:
			m.RunPending()
			return cond()
		}
	}
}

// PendingTimers returns the number of armed timers.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) popDueLocked(target time.Time) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	t := m.timers[0]
	if t.due.After(target) {
		return nil
	}
	m.timers = m.timers[1:]
	return t
}

func (m *Manual) removeLocked(t *manualTimer) bool {
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	owner *Manual
	due   time.Time
	seq   uint64
	fn    func()
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.owner.removeLocked(t)
}
