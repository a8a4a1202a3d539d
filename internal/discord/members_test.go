package discord

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chatbot-platform/internal/eventlog"
	"chatbot-platform/internal/msgcache"

	"github.com/bwmarrin/discordgo"
)

func decodeGateway(t *testing.T, raw string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func stateSession(t *testing.T, guildID string) *discordgo.Session {
	t.Helper()
	s := &discordgo.Session{StateEnabled: true, State: discordgo.NewState()}
	if err := s.State.GuildAdd(&discordgo.Guild{ID: guildID}); err != nil {
		t.Fatalf("guild add: %v", err)
	}
	return s
}

func TestBot_LeaveCarriesJoinTimeAfterStateDropsMember(t *testing.T) {
	s := stateSession(t, "100")
	joins := msgcache.NewMemoryJoins(10)
	b, sub := newTestBot(nil)
	b.WithJoinTimes(joins)
	joinedAt := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	var add discordgo.GuildMemberAdd
	decodeGateway(t, `{"guild_id":"100","joined_at":"2023-01-02T03:04:05Z","user":{"id":"5","username":"bo"}}`, &add)
	if err := s.State.OnInterface(s, &add); err != nil {
		t.Fatalf("state add: %v", err)
	}
	b.onMemberAdd(s, &add)

	// State handlers run before typed handlers, so the member is gone by
	// the time onMemberRemove sees the event.
	var remove discordgo.GuildMemberRemove
	decodeGateway(t, `{"guild_id":"100","user":{"id":"5","username":"bo"}}`, &remove)
	if err := s.State.OnInterface(s, &remove); err != nil {
		t.Fatalf("state remove: %v", err)
	}
	if _, err := s.State.Member("100", "5"); err == nil {
		t.Fatalf("expected state to have dropped the member")
	}
	b.onMemberRemove(s, &remove)

	if len(sub.events) != 2 {
		t.Fatalf("expected joined and left events, got %d", len(sub.events))
	}
	left := sub.events[1]
	if left.Kind != eventlog.KindLeft || !left.Member.JoinedAt.Equal(joinedAt) {
		t.Fatalf("expected left event with join time %v, got %+v", joinedAt, left.Member)
	}
	if _, ok, _ := joins.JoinedAt(context.Background(), "100", "5"); ok {
		t.Fatalf("expected join time forgotten after leave")
	}
}

func TestBot_MembersChunkSeedsJoinTimes(t *testing.T) {
	joins := msgcache.NewMemoryJoins(10)
	b, sub := newTestBot(nil)
	b.WithJoinTimes(joins)

	var chunk discordgo.GuildMembersChunk
	decodeGateway(t, `{"guild_id":"100","chunk_index":0,"chunk_count":1,"members":[
		{"joined_at":"2022-05-06T00:00:00Z","user":{"id":"7","username":"al"}},
		{"joined_at":"2021-01-01T00:00:00Z","user":{"id":"8","username":"cy"}}]}`, &chunk)
	b.onMembersChunk(nil, &chunk)

	var remove discordgo.GuildMemberRemove
	decodeGateway(t, `{"guild_id":"100","user":{"id":"7","username":"al"}}`, &remove)
	b.onMemberRemove(nil, &remove)

	if len(sub.events) != 1 {
		t.Fatalf("expected one left event, got %d", len(sub.events))
	}
	want := time.Date(2022, 5, 6, 0, 0, 0, 0, time.UTC)
	if got := sub.events[0].Member.JoinedAt; !got.Equal(want) {
		t.Fatalf("expected join time %v, got %v", want, got)
	}
	if _, ok, _ := joins.JoinedAt(context.Background(), "100", "8"); !ok {
		t.Fatalf("expected other chunk members kept")
	}
}

func TestBot_GuildCreateSeedsJoinTimes(t *testing.T) {
	joins := msgcache.NewMemoryJoins(10)
	b, _ := newTestBot(nil)
	b.WithJoinTimes(joins)

	var g discordgo.GuildCreate
	decodeGateway(t, `{"id":"100","member_count":1,"members":[
		{"joined_at":"2020-02-02T00:00:00Z","user":{"id":"9","username":"di"}}]}`, &g)
	b.onGuildCreate(nil, &g)

	if _, ok, _ := joins.JoinedAt(context.Background(), "100", "9"); !ok {
		t.Fatalf("expected guild members seeded")
	}
}

func TestBot_LeaveWithoutKnownJoinIsStillReported(t *testing.T) {
	b, sub := newTestBot(nil)

	var remove discordgo.GuildMemberRemove
	decodeGateway(t, `{"guild_id":"100","user":{"id":"5","username":"bo"}}`, &remove)
	b.onMemberRemove(nil, &remove)

	if len(sub.events) != 1 || !sub.events[0].Member.JoinedAt.IsZero() {
		t.Fatalf("expected left event with unknown join time, got %+v", sub.events)
	}
}
