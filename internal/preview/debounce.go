package preview

import (
	"sync"
	"time"
)

// debouncer turns a burst of triggers into one signal delivered after a quiet period.
// The signal channel holds at most one pending signal.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	ch      chan struct{}
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, ch: make(chan struct{}, 1)}
}

// Trigger restarts the quiet period.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	select {
	case d.ch <- struct{}{}:
	default:
	}
}

// C delivers one value per settled burst.
func (d *debouncer) C() <-chan struct{} {
	return d.ch
}

// Stop cancels a pending signal. Later triggers are ignored.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
