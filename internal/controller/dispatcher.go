package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Aman-CERP/scribe/internal/search"
)

// ErrDispatcherClosed is returned by Submit after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Request identifies one submitted search.
type Request struct {
	// ID correlates log lines for the request.
	ID string
	// Seq increases with every submission.
	Seq       uint64
	Direction search.Direction
}

// Response is delivered for the latest request only.
type Response struct {
	Request
	Outcome Outcome
	Err     error
}

// Dispatcher runs searches off the caller's goroutine. A new submission
// cancels the one in flight, and only the latest request's result is
// applied to the buffer and delivered.
type Dispatcher struct {
	ctrl    *Controller
	results chan Response

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	inflight context.CancelFunc
	closed   bool
}

// NewDispatcher creates a dispatcher for ctrl.
func NewDispatcher(ctrl *Controller) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		ctrl:    ctrl,
		results: make(chan Response, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Results delivers responses. The channel holds at most one pending
// response; an undelivered one is replaced by a newer one.
func (d *Dispatcher) Results() <-chan Response {
	return d.results
}

// Submit starts a search in dir, superseding any search in flight.
func (d *Dispatcher) Submit(dir search.Direction) (Request, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Request{}, ErrDispatcherClosed
	}
	if d.inflight != nil {
		d.inflight()
	}

	d.seq++
	req := Request{ID: uuid.New().String(), Seq: d.seq, Direction: dir}

	ctx, cancel := context.WithCancel(d.ctx)
	d.inflight = cancel

	slog.Debug("search submitted",
		slog.String("request_id", req.ID),
		slog.Uint64("seq", req.Seq),
		slog.String("direction", dir.String()))

	d.wg.Add(1)
	go d.work(ctx, cancel, req)
	return req, nil
}

func (d *Dispatcher) work(ctx context.Context, cancel context.CancelFunc, req Request) {
	defer d.wg.Done()
	defer cancel()

	out, rev, err := d.ctrl.run(ctx, req.Direction)

	d.mu.Lock()
	defer d.mu.Unlock()

	if req.Seq != d.seq || ctx.Err() != nil {
		slog.Debug("search superseded", slog.String("request_id", req.ID), slog.Uint64("seq", req.Seq))
		return
	}
	if err == nil {
		out.Applied = d.ctrl.apply(out, rev)
	}
	d.deliver(Response{Request: req, Outcome: out, Err: err})
}

// deliver replaces any undelivered response. Callers hold mu.
func (d *Dispatcher) deliver(resp Response) {
	select {
	case <-d.results:
	default:
	}
	d.results <- resp
}

// Close cancels outstanding work, waits for workers and closes Results.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	close(d.results)
}
