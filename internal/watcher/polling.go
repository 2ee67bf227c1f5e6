package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// PollingWatcher detects changes by stat-ing the file on an interval.
// Used as a fallback when fsnotify is not available or fails.
type PollingWatcher struct {
	interval time.Duration
	events   chan FileEvent
	errors   chan error
	stopCh   chan struct{}
	mu       sync.Mutex
	stopped  bool
	last     fileState
}

type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

// NewPollingWatcher creates a polling watcher with the given interval.
func NewPollingWatcher(interval time.Duration) *PollingWatcher {
	return &PollingWatcher{
		interval: interval,
		events:   make(chan FileEvent, 16),
		errors:   make(chan error, 4),
		stopCh:   make(chan struct{}),
	}
}

// Start polls path until Stop is called or ctx is cancelled.
// The first stat establishes a baseline and emits nothing.
func (p *PollingWatcher) Start(ctx context.Context, path string) error {
	state, err := stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	p.mu.Lock()
	p.last = state
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			if err := p.check(path); err != nil {
				p.emitError(err)
			}
		}
	}
}

// check compares the current state with the last one and emits an event.
func (p *PollingWatcher) check(path string) error {
	state, err := stat(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.last
	p.last = state

	var op Operation
	switch {
	case !prev.exists && state.exists:
		op = OpCreate
	case prev.exists && !state.exists:
		op = OpDelete
	case state.exists && (!prev.modTime.Equal(state.modTime) || prev.size != state.size):
		op = OpModify
	default:
		return nil
	}
	p.emit(FileEvent{Path: path, Operation: op, Timestamp: time.Now()})
	return nil
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, err
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}, nil
}

// emit sends an event. Callers hold mu.
func (p *PollingWatcher) emit(event FileEvent) {
	if p.stopped {
		return
	}
	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()))
	}
}

func (p *PollingWatcher) emitError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	select {
	case p.errors <- err:
	default:
	}
}

// Stop stops the polling watcher.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// Errors returns the channel of errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}
