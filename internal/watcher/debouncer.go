package watcher

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer merges bursts of events per path into one event emitted after
// the window passes with no new events for that burst.
//
// Merge rules, first operation then later operation:
//   - CREATE, MODIFY = CREATE
//   - CREATE, DELETE = nothing
//   - DELETE or RENAME, CREATE = MODIFY (file was replaced)
//   - anything else keeps the later operation
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]FileEvent
	order   []string
	timer   *time.Timer
	output  chan FileEvent
	stopped bool
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]FileEvent),
		output:  make(chan FileEvent, 16),
	}
}

// Add queues an event, merging it with a pending event for the same path.
func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[event.Path]; ok {
		op, keep := merge(prev.Operation, event.Operation)
		if !keep {
			delete(d.pending, event.Path)
			d.order = remove(d.order, event.Path)
		} else {
			event.Operation = op
			d.pending[event.Path] = event
		}
	} else {
		d.pending[event.Path] = event
		d.order = append(d.order, event.Path)
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// merge combines two consecutive operations on one path.
func merge(first, next Operation) (Operation, bool) {
	switch {
	case first == OpCreate && next == OpModify:
		return OpCreate, true
	case first == OpCreate && next == OpDelete:
		return 0, false
	case (first == OpDelete || first == OpRename) && next == OpCreate:
		return OpModify, true
	default:
		return next, true
	}
}

func remove(paths []string, path string) []string {
	for i, p := range paths {
		if p == path {
			return append(paths[:i], paths[i+1:]...)
		}
	}
	return paths
}

// flush emits pending events in arrival order.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	for _, path := range d.order {
		event := d.pending[path]
		select {
		case d.output <- event:
		default:
			slog.Warn("debouncer output full, dropping event",
				slog.String("path", event.Path),
				slog.String("op", event.Operation.String()))
		}
	}
	d.pending = make(map[string]FileEvent)
	d.order = nil
}

// Output returns the channel of debounced events.
func (d *Debouncer) Output() <-chan FileEvent {
	return d.output
}

// Stop discards pending events and closes the output channel.
// Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
