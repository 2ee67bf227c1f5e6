package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// FileWatcher watches one file with fsnotify, falling back to polling.
// fsnotify watches the parent directory so that replace-by-rename saves
// are seen.
type FileWatcher struct {
	fsWatcher   *fsnotify.Watcher
	pollWatcher *PollingWatcher
	useFsnotify bool
	debouncer   *Debouncer
	events      chan FileEvent
	errors      chan error
	stopCh      chan struct{}
	path        string
	opts        Options
	mu          sync.RWMutex
	stopped     bool
	dropped     atomic.Uint64
}

var _ Watcher = (*FileWatcher)(nil)

// New creates a file watcher. fsnotify is tried first unless
// opts.ForcePolling is set.
func New(opts Options) (*FileWatcher, error) {
	opts = opts.WithDefaults()

	w := &FileWatcher{
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 4),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			w.fsWatcher = fsw
			w.useFsnotify = true
			return w, nil
		}
		slog.Warn("fsnotify unavailable, falling back to polling", slog.String("error", err.Error()))
	}
	w.pollWatcher = NewPollingWatcher(opts.PollInterval)
	return w, nil
}

// Start watches path. It blocks until Stop is called or ctx is cancelled.
func (w *FileWatcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	w.mu.Lock()
	w.path = absPath
	w.mu.Unlock()

	go w.forwardDebounced(ctx)

	if w.useFsnotify {
		if err := w.fsWatcher.Add(filepath.Dir(absPath)); err != nil {
			return serrors.New(serrors.ErrCodeWatchFailed,
				fmt.Sprintf("cannot watch %s", filepath.Dir(absPath)), err)
		}
		return w.runFsnotify(ctx)
	}
	return w.runPolling(ctx)
}

func (w *FileWatcher) runFsnotify(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *FileWatcher) runPolling(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case event, ok := <-w.pollWatcher.Events():
				if !ok {
					return
				}
				w.debouncer.Add(event)
			case err, ok := <-w.pollWatcher.Errors():
				if !ok {
					return
				}
				w.emitError(err)
			}
		}
	}()

	return w.pollWatcher.Start(ctx, w.path)
}

// handleFsnotifyEvent drops events for sibling files and converts the rest.
func (w *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(FileEvent{Path: w.path, Operation: op, Timestamp: time.Now()})
}

func (w *FileWatcher) forwardDebounced(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			w.emit(event)
		}
	}
}

func (w *FileWatcher) emit(event FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.events <- event:
	default:
		count := w.dropped.Add(1)
		slog.Warn("event buffer full, dropping event",
			slog.String("op", event.Operation.String()),
			slog.Uint64("total_dropped", count))
	}
}

func (w *FileWatcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
	}
}

// Stop stops the watcher and closes its channels.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)

	w.debouncer.Stop()
	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
	if w.pollWatcher != nil {
		_ = w.pollWatcher.Stop()
	}

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel of debounced events.
func (w *FileWatcher) Events() <-chan FileEvent {
	return w.events
}

// Errors returns the channel of non-fatal errors.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Mode returns "fsnotify" or "polling".
func (w *FileWatcher) Mode() string {
	if w.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}

// Path returns the watched file path.
func (w *FileWatcher) Path() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.path
}

// DroppedEvents returns how many events were dropped on a full buffer.
func (w *FileWatcher) DroppedEvents() uint64 {
	return w.dropped.Load()
}
