package timeutils

import (
	"sync"
	"time"
)

// Debouncer collapses a burst of Schedule calls into a single deferred
// invocation of the most recently scheduled function. Each Schedule cancels
// the previously pending one, so only the last call within a burst fires.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arranges for fn to run after the configured delay, replacing any
// previously pending invocation. The generation check covers the window
// where a timer has already fired but its callback has not yet run:
// timer.Stop cannot stop it, so the callback verifies it is still the
// current one before invoking fn.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.invoke(gen, fn)
	})
}

// invoke runs fn only if gen is still the current generation.
func (d *Debouncer) invoke(gen uint64, fn func()) {
	d.mu.Lock()
	current := d.gen == gen
	d.mu.Unlock()
	if current {
		fn()
	}
}

// Cancel drops any pending invocation. Safe to call with nothing scheduled,
// and safe to call repeatedly.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Delay returns the configured debounce delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
