package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"chatbot-platform/pkg/logger"

	"github.com/google/uuid"
)

// Handler processes one event. *Router implements it.
type Handler interface {
	Handle(ctx context.Context, ev Event) (Outcome, error)
}

var ErrDispatcherClosed = errors.New("eventlog: dispatcher closed")

type DispatcherConfig struct {
	Workers   int
	QueueSize int
	// Timeout bounds a single event's handling, including its store and
	// platform I/O.
	Timeout time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	out := c
	if out.Workers <= 0 {
		out.Workers = 8
	}
	if out.QueueSize <= 0 {
		out.QueueSize = 256
	}
	if out.Timeout <= 0 {
		out.Timeout = 15 * time.Second
	}
	return out
}

type job struct {
	id string
	ev Event
}

// Dispatcher runs events on a fixed worker pool.
//
// Every event is an isolated unit of failure: errors and panics are logged
// and the event is dropped. No ordering between events is preserved.
type Dispatcher struct {
	handler Handler
	cfg     DispatcherConfig
	log     *slog.Logger

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(h Handler, cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		handler: h,
		cfg:     cfg,
		log:     log,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

// Start launches the workers. Workers exit once Stop has drained the queue.
// They keep ctx's values but not its cancellation, so events still queued
// when ctx ends are handled during Stop, each within the per-event timeout.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.run(ctx, j)
			}
		}()
	}
}

// Submit queues ev, blocking while the queue is full until ctx is done.
// It returns the event's correlation ID.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return "", ErrDispatcherClosed
	}
	j := job{id: uuid.NewString(), ev: ev}
	select {
	case d.jobs <- j:
		return j.id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stop rejects new events, lets queued ones finish and waits for the workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) run(parent context.Context, j job) {
	log := d.log.With("event_id", j.id, "kind", j.ev.Kind, "workspace_id", j.ev.WorkspaceID)
	ctx, cancel := context.WithTimeout(logger.With(parent, log), d.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := d.handle(ctx, j.ev)
	if err != nil {
		log.Warn("event dropped",
			"outcome", OutcomeFailed,
			"class", errorClass(err),
			"err", err,
			"duration_ms", float64(time.Since(start).Milliseconds()),
		)
		return
	}
	log.Debug("event handled", "outcome", out, "duration_ms", float64(time.Since(start).Milliseconds()))
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) (out Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.From(ctx).Error("event handler panicked", "panic", p, "stack", string(debug.Stack()))
			out, err = OutcomeFailed, fmt.Errorf("eventlog: handler panic: %v", p)
		}
	}()
	return d.handler.Handle(ctx, ev)
}
