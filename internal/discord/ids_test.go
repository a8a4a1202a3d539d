package discord

import (
	"testing"
	"time"
)

func TestCreatedAt_DecodesSnowflake(t *testing.T) {
	got := CreatedAt("175928847299117063")
	want := time.UnixMilli(1462015105796).UTC()
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if !CreatedAt("not-an-id").IsZero() || !CreatedAt("-5").IsZero() {
		t.Fatalf("expected zero time for malformed ids")
	}
}

func TestValidID(t *testing.T) {
	for _, s := range []string{"175928847299117063", "1"} {
		if !ValidID(s) {
			t.Fatalf("expected %q valid", s)
		}
	}
	for _, s := range []string{"", "0", "-1", "abc", "12.5"} {
		if ValidID(s) {
			t.Fatalf("expected %q invalid", s)
		}
	}
}

func TestMessageURL(t *testing.T) {
	if got := MessageURL("g", "c", "m"); got != "https://discord.com/channels/g/c/m" {
		t.Fatalf("unexpected url %q", got)
	}
	if MessageURL("", "c", "m") != "" {
		t.Fatalf("expected empty url without guild")
	}
}
