// Package controller connects a buffer to the search engine: it owns the
// search settings, runs searches on buffer snapshots and applies results.
package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Aman-CERP/scribe/internal/buffer"
	serrors "github.com/Aman-CERP/scribe/internal/errors"
	"github.com/Aman-CERP/scribe/internal/search"
)

// Outcome describes a finished search.
type Outcome struct {
	Direction search.Direction
	Result    search.Result
	// Applied is true when the match was selected in the buffer.
	Applied bool
}

// Controller holds the pattern and regex mode for one buffer.
type Controller struct {
	buf    *buffer.Buffer
	engine *search.Engine

	mu       sync.RWMutex
	pattern  string
	useRegex bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegex sets the initial regex mode.
func WithRegex(on bool) Option {
	return func(c *Controller) {
		c.useRegex = on
	}
}

// New creates a controller for buf. A nil engine selects a default engine.
func New(buf *buffer.Buffer, engine *search.Engine, opts ...Option) *Controller {
	if engine == nil {
		engine = search.NewEngine()
	}
	c := &Controller{buf: buf, engine: engine}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buffer returns the controlled buffer.
func (c *Controller) Buffer() *buffer.Buffer {
	return c.buf
}

// SetPattern sets the search pattern.
func (c *Controller) SetPattern(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pattern = p
}

// Pattern returns the search pattern.
func (c *Controller) Pattern() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pattern
}

// ToggleRegex flips regex mode and returns the new state.
func (c *Controller) ToggleRegex() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useRegex = !c.useRegex
	return c.useRegex
}

// SetUseRegex sets regex mode.
func (c *Controller) SetUseRegex(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useRegex = on
}

// UseRegex reports whether patterns are regular expressions.
func (c *Controller) UseRegex() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.useRegex
}

// StartSearch selects the first match in the document.
func (c *Controller) StartSearch(ctx context.Context) (Outcome, error) {
	return c.Find(ctx, search.Start)
}

// NextMatch selects the next match after the caret.
func (c *Controller) NextMatch(ctx context.Context) (Outcome, error) {
	return c.Find(ctx, search.Forward)
}

// PreviousMatch selects the match before the current one.
func (c *Controller) PreviousMatch(ctx context.Context) (Outcome, error) {
	return c.Find(ctx, search.Backward)
}

// Find runs a search synchronously and applies the result.
// Found selects the match and moves the caret to its end. NotFound and
// errors leave the buffer untouched.
func (c *Controller) Find(ctx context.Context, dir search.Direction) (Outcome, error) {
	out, rev, err := c.run(ctx, dir)
	if err != nil {
		return out, err
	}
	out.Applied = c.apply(out, rev)
	return out, nil
}

// run searches a snapshot of the buffer and returns the snapshot revision.
func (c *Controller) run(ctx context.Context, dir search.Direction) (Outcome, uint64, error) {
	out := Outcome{Direction: dir}
	if err := ctx.Err(); err != nil {
		return out, 0, err
	}

	pattern, useRegex := c.Pattern(), c.UseRegex()
	snap := c.buf.Snapshot()

	res, err := c.engine.Search(snap.Text, caretFor(snap, dir), pattern, useRegex, dir)
	if err != nil {
		slog.Debug("search rejected", serrors.LogAttrs(err)...)
		return out, snap.Revision, err
	}
	if err := ctx.Err(); err != nil {
		return out, snap.Revision, err
	}

	out.Result = res
	return out, snap.Revision, nil
}

// apply selects a found match if the text has not changed since rev.
func (c *Controller) apply(out Outcome, rev uint64) bool {
	if !out.Result.Found {
		return false
	}
	return c.buf.SelectAt(rev, out.Result.Start, out.Result.End)
}

// caretFor picks the search origin. A backward search starts from the
// beginning of the active selection so the current match is not found again.
func caretFor(snap buffer.Snapshot, dir search.Direction) int {
	if dir == search.Backward && snap.HasSel {
		return snap.Selection.Start
	}
	return snap.Caret
}
