package msgcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour, 10)

	if err := m.Put(ctx, Entry{MessageID: "m1", Content: "hello"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	e, ok, err := m.Get(ctx, "m1")
	if err != nil || !ok || e.Content != "hello" {
		t.Fatalf("expected hit, got %+v ok=%v err=%v", e, ok, err)
	}
	if e.CachedAt.IsZero() {
		t.Fatalf("expected cached_at stamped")
	}
	_ = m.Delete(ctx, "m1")
	if _, ok, _ := m.Get(ctx, "m1"); ok {
		t.Fatalf("expected miss after delete")
	}
	if err := m.Put(ctx, Entry{}); !errors.Is(err, ErrNoMessageID) {
		t.Fatalf("expected ErrNoMessageID, got %v", err)
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(20*time.Millisecond, 10)

	_ = m.Put(ctx, Entry{MessageID: "m1", Content: "x"})
	time.Sleep(60 * time.Millisecond)
	if _, ok, _ := m.Get(ctx, "m1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, 2)

	_ = m.Put(ctx, Entry{MessageID: "a"})
	_ = m.Put(ctx, Entry{MessageID: "b"})
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Fatalf("expected a cached")
	}
	_ = m.Put(ctx, Entry{MessageID: "c"})

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Fatalf("expected least recently used entry evicted")
	}
	for _, id := range []string{"a", "c"} {
		if _, ok, _ := m.Get(ctx, id); !ok {
			t.Fatalf("expected %s kept", id)
		}
	}
}

func TestRedis_KeyAndValidation(t *testing.T) {
	if key("123") != "msgcache:123" {
		t.Fatalf("unexpected key %q", key("123"))
	}
	r := NewRedis(nil, time.Hour)
	if err := r.Put(context.Background(), Entry{}); !errors.Is(err, ErrNoMessageID) {
		t.Fatalf("expected ErrNoMessageID, got %v", err)
	}
	if _, _, err := r.Get(context.Background(), ""); !errors.Is(err, ErrNoMessageID) {
		t.Fatalf("expected ErrNoMessageID, got %v", err)
	}
}
