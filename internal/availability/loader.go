package availability

import (
	"sync"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	"github.com/wolfman30/pitaya-nails-booking/internal/clock"
)

// Task is a pending slot computation.
type Task struct {
	mu        sync.Mutex
	timer     clock.Timer
	cancelled bool
	done      bool
}

// Cancel stops the computation. A cancelled task never delivers.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done reports whether the task delivered its result.
func (t *Task) Done() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Loader runs slot computations after a fixed delay on a clock.
type Loader struct {
	calc  Calculator
	clock clock.Clock
	delay time.Duration
}

// NewLoader builds a loader. A nil clock uses the real one.
func NewLoader(calc Calculator, clk clock.Clock, delay time.Duration) *Loader {
	if clk == nil {
		clk = clock.New()
	}
	if delay < 0 {
		delay = 0
	}
	return &Loader{calc: calc, clock: clk, delay: delay}
}

// Calculator exposes the underlying calculator for synchronous use.
func (l *Loader) Calculator() Calculator { return l.calc }

// Delay is the simulated latency before results are delivered.
func (l *Loader) Delay() time.Duration { return l.delay }

// Schedule computes slots after the loader delay and hands them to deliver
// together with the task, unless the task was cancelled first. deliver runs
// on the clock's callback goroutine.
func (l *Loader) Schedule(date time.Time, professional catalog.TeamMember, totalDuration int, deliver func(*Task, []string)) *Task {
	task := &Task{}
	task.mu.Lock()
	defer task.mu.Unlock()
	task.timer = l.clock.AfterFunc(l.delay, func() {
		task.mu.Lock()
		if task.cancelled {
			task.mu.Unlock()
			return
		}
		task.mu.Unlock()

		slots := l.calc.ComputeSlots(date, professional, totalDuration)

		task.mu.Lock()
		if task.cancelled {
			task.mu.Unlock()
			return
		}
		task.done = true
		task.mu.Unlock()
		deliver(task, slots)
	})
	return task
}
