package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced clock. Callbacks run on the goroutine calling
// Advance, in deadline order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	seq      int
	fn       func()
	done     bool
}

// NewFake returns a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{clock: f, deadline: f.now.Add(d), seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves virtual time forward and fires every timer that came due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		next.done = true
		f.now = next.deadline
		f.removeLocked(next)
		f.mu.Unlock()
		next.fn()
	}
}

// Pending reports how many timers are scheduled and not yet fired or stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].deadline.Equal(f.timers[j].deadline) {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].deadline.Before(f.timers[j].deadline)
	})
	if len(f.timers) == 0 || f.timers[0].deadline.After(target) {
		return nil
	}
	return f.timers[0]
}

func (f *Fake) removeLocked(t *fakeTimer) {
	for i, candidate := range f.timers {
		if candidate == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.clock.removeLocked(t)
	return true
}
