package eventlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type handlerFunc func(ctx context.Context, ev Event) (Outcome, error)

func (f handlerFunc) Handle(ctx context.Context, ev Event) (Outcome, error) { return f(ctx, ev) }

func TestDispatcher_IsolatesFailuresAndPanics(t *testing.T) {
	var mu sync.Mutex
	handled := map[string]bool{}

	h := handlerFunc(func(ctx context.Context, ev Event) (Outcome, error) {
		switch ev.WorkspaceID {
		case "panics":
			panic("boom")
		case "fails":
			return OutcomeFailed, ErrDelivery
		}
		mu.Lock()
		handled[ev.WorkspaceID] = true
		mu.Unlock()
		return OutcomeDelivered, nil
	})

	d := NewDispatcher(h, DispatcherConfig{Workers: 2, QueueSize: 4}, nil)
	d.Start(context.Background())

	for _, ws := range []string{"panics", "fails", "ok-1", "ok-2"} {
		id, err := d.Submit(context.Background(), Event{Kind: KindJoined, WorkspaceID: ws})
		if err != nil {
			t.Fatalf("submit %s: %v", ws, err)
		}
		if id == "" {
			t.Fatalf("expected correlation id")
		}
	}
	d.Stop()

	if !handled["ok-1"] || !handled["ok-2"] {
		t.Fatalf("expected healthy events handled despite failures, got %v", handled)
	}
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewDispatcher(handlerFunc(func(context.Context, Event) (Outcome, error) { return OutcomeDelivered, nil }), DispatcherConfig{}, nil)
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	if _, err := d.Submit(context.Background(), Event{}); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", err)
	}
}

func TestDispatcher_SubmitHonoursContextWhenFull(t *testing.T) {
	block := make(chan struct{})
	h := handlerFunc(func(context.Context, Event) (Outcome, error) {
		<-block
		return OutcomeDelivered, nil
	})
	d := NewDispatcher(h, DispatcherConfig{Workers: 1, QueueSize: 1}, nil)
	d.Start(context.Background())
	defer func() {
		close(block)
		d.Stop()
	}()

	// One event occupies the worker, one fills the queue.
	_, _ = d.Submit(context.Background(), Event{})
	_, _ = d.Submit(context.Background(), Event{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := d.Submit(ctx, Event{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDispatcher_AppliesPerEventTimeout(t *testing.T) {
	done := make(chan error, 1)
	h := handlerFunc(func(ctx context.Context, ev Event) (Outcome, error) {
		<-ctx.Done()
		done <- ctx.Err()
		return OutcomeFailed, ctx.Err()
	})
	d := NewDispatcher(h, DispatcherConfig{Workers: 1, Timeout: 20 * time.Millisecond}, nil)
	d.Start(context.Background())
	_, _ = d.Submit(context.Background(), Event{})

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler was not cancelled")
	}
	d.Stop()
}

func TestDispatcher_StopDrainsAfterRootCancel(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	release := make(chan struct{})

	h := handlerFunc(func(ctx context.Context, ev Event) (Outcome, error) {
		<-release
		mu.Lock()
		errs = append(errs, ctx.Err())
		mu.Unlock()
		return OutcomeDelivered, nil
	})

	root, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(h, DispatcherConfig{Workers: 1, QueueSize: 4, Timeout: time.Minute}, nil)
	d.Start(root)
	for i := 0; i < 3; i++ {
		if _, err := d.Submit(context.Background(), Event{Kind: KindJoined, WorkspaceID: "w"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	cancel()
	close(release)
	d.Stop()

	if len(errs) != 3 {
		t.Fatalf("expected every queued event handled, got %d", len(errs))
	}
	for _, err := range errs {
		if err != nil {
			t.Fatalf("expected queued events to run with a live context, got %v", err)
		}
	}
}
