package timer

import (
	"sync"
	"time"
)

// Handle identifies one scheduled callback. Handles are issued monotonically
// and never reused, so a callback can compare the handle it fired under
// against the handle its owner currently records and discard itself when
// they differ.
type Handle uint64

// None is the zero handle, meaning "no timer outstanding".
const None Handle = 0

// Scheduler schedules one-shot callbacks at a future instant.
type Scheduler interface {
	// Schedule runs fn after delay, passing fn its own handle.
	Schedule(delay time.Duration, fn func(Handle)) Handle

	// Cancel stops an outstanding timer. It reports whether the timer was
	// still pending; a false return means the callback already ran or the
	// handle was unknown.
	Cancel(h Handle) bool

	// Stop cancels every outstanding timer and rejects further scheduling.
	Stop()
}

// WallScheduler is the production Scheduler backed by time.AfterFunc.
type WallScheduler struct {
	mu      sync.Mutex
	seq     uint64
	pending map[Handle]*time.Timer
	stopped bool
}

// NewWallScheduler creates a ready-to-use scheduler.
func NewWallScheduler() *WallScheduler {
	return &WallScheduler{pending: make(map[Handle]*time.Timer)}
}

// Schedule implements Scheduler. After Stop it returns None and fn never runs.
func (w *WallScheduler) Schedule(delay time.Duration, fn func(Handle)) Handle {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return None
	}

	w.seq++
	h := Handle(w.seq)
	w.pending[h] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		_, live := w.pending[h]
		delete(w.pending, h)
		stopped := w.stopped
		w.mu.Unlock()

		if live && !stopped {
			fn(h)
		}
	})
	return h
}

// Cancel implements Scheduler.
func (w *WallScheduler) Cancel(h Handle) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.pending[h]
	if !ok {
		return false
	}
	delete(w.pending, h)
	return t.Stop()
}

// Stop implements Scheduler.
func (w *WallScheduler) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	for h, t := range w.pending {
		t.Stop()
		delete(w.pending, h)
	}
}

var _ Scheduler = (*WallScheduler)(nil)
