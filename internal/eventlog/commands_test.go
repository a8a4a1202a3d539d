package eventlog

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCommands_SetAcknowledges(t *testing.T) {
	store := NewMemoryStore()
	c := NewCommands(store)

	ack := c.Set(context.Background(), "w", KindJoined, "c1")
	if !ack.OK || ack.Content != "Logs settings have been updated successfully" {
		t.Fatalf("unexpected ack: %+v", ack)
	}
	cfg, _ := store.GetOrCreate(context.Background(), "w")
	if id, _ := cfg.Destination(KindJoined); id != "c1" {
		t.Fatalf("expected joined=c1, got %q", id)
	}
}

func TestCommands_FailuresAreTransientAndOpaque(t *testing.T) {
	store := NewMemoryStore()
	store.Err = errors.New("dial tcp 10.0.0.5:5432: connection refused")
	c := NewCommands(store)

	for _, ack := range []Ack{
		c.Set(context.Background(), "w", KindLeft, "c1"),
		c.Settings(context.Background(), "w"),
		c.Reset(context.Background(), "w", KindLeft),
	} {
		if ack.OK {
			t.Fatalf("expected failure ack")
		}
		if strings.Contains(ack.Content, "10.0.0.5") || ack.Content == "" {
			t.Fatalf("ack must not expose internals: %q", ack.Content)
		}
	}
}

func TestCommands_RejectsEmptyChannel(t *testing.T) {
	c := NewCommands(NewMemoryStore())
	if ack := c.Set(context.Background(), "w", KindJoined, "  "); ack.OK {
		t.Fatalf("expected rejection")
	}
}

func TestCommands_SettingsAndReset(t *testing.T) {
	store := NewMemoryStore()
	c := NewCommands(store)
	ctx := context.Background()
	_ = c.Set(ctx, "w", KindCreated, "threads-log")

	ack := c.Settings(ctx, "w")
	if !ack.OK || ack.View == nil {
		t.Fatalf("expected view, got %+v", ack)
	}
	if ctl, _ := ack.View.Control(KindCreated); !ctl.Enabled {
		t.Fatalf("expected created reset enabled")
	}

	ack = c.Reset(ctx, "w", KindCreated)
	if !ack.OK || !ack.Changed || ack.View == nil {
		t.Fatalf("expected changed view, got %+v", ack)
	}
	if ctl, _ := ack.View.Control(KindCreated); ctl.Enabled {
		t.Fatalf("expected created reset disabled")
	}
	if !strings.Contains(ack.Content, "**Created**: Not specified") {
		t.Fatalf("unexpected table: %s", ack.Content)
	}
}

func TestCommands_ResetOfUnsetKindChangesNothing(t *testing.T) {
	store := NewMemoryStore()
	c := NewCommands(store)

	ack := c.Reset(context.Background(), "w", KindEdited)
	if !ack.OK || ack.Changed || ack.View == nil {
		t.Fatalf("expected unchanged re-render, got %+v", ack)
	}
	if ack := c.Settings(context.Background(), "w"); ack.Changed {
		t.Fatalf("settings view must not report a change")
	}
}
