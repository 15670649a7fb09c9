// Package debounce delays a rapidly changing value until it settles.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer relies on.
type Timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds the latest input and commits it once no newer input arrived for the
// configured delay. At most one timer is pending at a time.
type Debouncer[T any] struct {
	mu         sync.Mutex
	delay      time.Duration
	value      T
	pending    T
	hasPending bool
	seq        uint64
	timer      Timer
	stopped    bool
	onCommit   func(T)
	after      afterFunc
}

// New returns a debouncer whose committed value starts at initial.
func New[T any](initial T, delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		value: initial,
		after: stdAfterFunc,
	}
}

// OnCommit registers fn to run with every committed value. fn runs while the debouncer is
// locked, so it must not call back into the debouncer.
func (d *Debouncer[T]) OnCommit(fn func(T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onCommit = fn
}

// Set records v as the latest input and restarts the delay.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = v
	d.hasPending = true
	d.timer = d.after(d.delay, func() {
		d.fire(seq)
	})
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// A newer Set or a Stop superseded this timer after it had already started.
	if d.stopped || seq != d.seq || !d.hasPending {
		return
	}
	d.commitLocked()
}

// Flush commits a pending value immediately. It reports whether anything was committed.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || !d.hasPending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.commitLocked()
	return true
}

func (d *Debouncer[T]) commitLocked() {
	d.value = d.pending
	d.hasPending = false
	d.timer = nil
	if d.onCommit != nil {
		d.onCommit(d.value)
	}
}

// Value returns the last committed value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Pending reports whether an input is waiting for its delay to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

// Stop cancels any pending timer. No value is committed after Stop returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.hasPending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
