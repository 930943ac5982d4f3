// Package button turns asynchronous button edges into one-shot intents.
//
// Press is called from interrupt context (a pin interrupt on the MCU, an
// edge-watching goroutine on Linux). The main loop is the only consumer and
// clears a latch in the same atomic operation that reads it, so one press is
// reported exactly once.
package button

import (
	"sync/atomic"
	"time"
)

// Intent is a one-shot user action derived from a button press.
type Intent uint8

const (
	None Intent = iota
	Increase
	Decrease
)

func (i Intent) String() string {
	switch i {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "none"
	}
}

// Latch is a single-writer/single-reader pressed flag.
type Latch struct {
	pressed atomic.Bool

	debounce time.Duration
	now      func() time.Duration
	last     atomic.Int64 // time of the last accepted press; only touched by Press
	seen     atomic.Bool  // whether last is valid
}

// NewLatch creates a latch that ignores edges arriving within debounce of the
// previously accepted one. A zero debounce accepts every edge. now must be
// monotonic; nil uses the process clock.
func NewLatch(debounce time.Duration, now func() time.Duration) *Latch {
	if now == nil {
		start := time.Now()
		now = func() time.Duration { return time.Since(start) }
	}
	return &Latch{debounce: debounce, now: now}
}

// Press records a falling edge.
func (l *Latch) Press() {
	if l.debounce > 0 {
		t := int64(l.now())
		if l.seen.Load() && time.Duration(t-l.last.Load()) < l.debounce {
			return
		}
		l.last.Store(t)
		l.seen.Store(true)
	}
	l.pressed.Store(true)
}

// Take reports whether a press is pending and clears it.
func (l *Latch) Take() bool {
	return l.pressed.Swap(false)
}

// Pending reports whether a press is pending without clearing it.
func (l *Latch) Pending() bool {
	return l.pressed.Load()
}

// Buttons is the up/down latch pair.
type Buttons struct {
	Up   *Latch
	Down *Latch
}

// New creates both latches with the same debounce interval.
func New(debounce time.Duration, now func() time.Duration) *Buttons {
	return &Buttons{
		Up:   NewLatch(debounce, now),
		Down: NewLatch(debounce, now),
	}
}

// PressUp is the interrupt handler for the increase button.
func (b *Buttons) PressUp() { b.Up.Press() }

// PressDown is the interrupt handler for the decrease button.
func (b *Buttons) PressDown() { b.Down.Press() }

// PollAndClear returns the next pending intent and clears its latch. When both
// buttons were pressed, Increase is returned first and Decrease on the next call.
func (b *Buttons) PollAndClear() Intent {
	if b.Up.Take() {
		return Increase
	}
	if b.Down.Take() {
		return Decrease
	}
	return None
}
