// internal/coordinator/debounce.go
package coordinator

import (
	"sync"
	"time"
)

// Debouncer coalesces values per key. The first Submit after a flush
// opens a window; when it closes, the latest value of every key is handed
// to flush in one call.
type Debouncer struct {
	window time.Duration
	flush  func(map[string]int32)

	mu      sync.Mutex
	pending map[string]int32
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(window time.Duration, flush func(map[string]int32)) *Debouncer {
	return &Debouncer{
		window:  window,
		flush:   flush,
		pending: make(map[string]int32),
	}
}

func (d *Debouncer) Submit(key string, value int32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[key] = value
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.Flush)
	}
}

// Flush hands over everything pending right away.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	batch := d.take()
	d.mu.Unlock()

	if len(batch) > 0 {
		d.flush(batch)
	}
}

// Stop flushes what is pending and ignores later submits.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	batch := d.take()
	d.mu.Unlock()

	if len(batch) > 0 {
		d.flush(batch)
	}
}

// take must be called with mu held.
func (d *Debouncer) take() map[string]int32 {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	batch := d.pending
	d.pending = make(map[string]int32)
	return batch
}
