package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"chatbot-platform/internal/eventlog"
)

// Upsert behaviour needs a live Postgres; these tests cover what can run
// without one: argument validation and SQL shape.

func TestStore_RejectsInvalidArgs(t *testing.T) {
	s := New((*sql.DB)(nil))

	if _, err := s.GetOrCreate(context.Background(), " "); !errors.Is(err, eventlog.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := s.SetDestination(context.Background(), "", eventlog.KindJoined, "c"); !errors.Is(err, eventlog.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := s.SetDestination(context.Background(), "w", eventlog.Kind("x"), "c"); !errors.Is(err, eventlog.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestColumn_QuotesReservedWords(t *testing.T) {
	if got := column(eventlog.KindLeft); got != `"left"` {
		t.Fatalf("expected quoted left column, got %s", got)
	}
	for _, k := range eventlog.Kinds {
		if !strings.Contains(schema, column(k)) && !strings.Contains(schema, k.Key()) {
			t.Fatalf("schema missing column for %s", k)
		}
	}
}

func TestSelectColumns_FollowKindOrder(t *testing.T) {
	want := `workspace_id, "joined", "left", "edited", "deleted", "created"`
	if got := selectColumns(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
