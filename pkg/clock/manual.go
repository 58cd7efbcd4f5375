package clock

import (
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance is called.
// Callbacks run synchronously on the goroutine calling Advance, in due-time order;
// callbacks due at the same instant run in the order they were scheduled.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m      *Manual
	when   time.Duration
	period time.Duration
	seq    uint64
	fn     func()
	active bool
}

// NewManual returns a stopped clock at elapsed time zero
func NewManual() *Manual {
	return &Manual{}
}

// Elapsed returns how far the clock has been advanced
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled callbacks that can still fire
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	return m.schedule(d, 0, f)
}

func (m *Manual) Every(d time.Duration, f func()) Handle {
	if d <= 0 {
		panic("clock: non-positive interval for Every")
	}
	return m.schedule(d, d, f)
}

func (m *Manual) schedule(d, period time.Duration, f func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, when: m.now + d, period: period, seq: m.seq, fn: f, active: true}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every callback that becomes due.
// Callbacks scheduled while advancing fire too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	end := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDue(end)
		if t == nil {
			m.now = end
			m.mu.Unlock()
			return
		}
		m.now = t.when
		if t.period > 0 {
			t.when += t.period
			m.seq++
			t.seq = m.seq
		} else {
			m.remove(t)
		}
		fn := t.fn
		m.mu.Unlock()

		fn()
	}
}

func (m *Manual) nextDue(end time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.when > end {
			continue
		}
		if next == nil || t.when < next.when || (t.when == next.when && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) remove(t *manualTimer) {
	t.active = false
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if !t.active {
		return false
	}
	t.m.remove(t)
	return true
}
