package discord

import (
	"context"
	"errors"
	"testing"

	"chatbot-platform/internal/eventlog"

	"github.com/bwmarrin/discordgo"
)

type fakeLookup struct {
	guilds, restGuilds     map[string]*discordgo.Guild
	channels, restChannels map[string]*discordgo.Channel
	guildFetches           int
	channelFetches         int
}

func (f *fakeLookup) stateGuild(id string) (*discordgo.Guild, bool) {
	g, ok := f.guilds[id]
	return g, ok
}

func (f *fakeLookup) fetchGuild(_ context.Context, id string) (*discordgo.Guild, error) {
	f.guildFetches++
	if g, ok := f.restGuilds[id]; ok {
		return g, nil
	}
	return nil, errors.New("HTTP 404 Not Found")
}

func (f *fakeLookup) stateChannel(id string) (*discordgo.Channel, bool) {
	c, ok := f.channels[id]
	return c, ok
}

func (f *fakeLookup) fetchChannel(_ context.Context, id string) (*discordgo.Channel, error) {
	f.channelFetches++
	if c, ok := f.restChannels[id]; ok {
		return c, nil
	}
	return nil, errors.New("HTTP 403 Forbidden")
}

func TestDirectory_ResolvesThroughRESTOnceThenRemembers(t *testing.T) {
	src := &fakeLookup{
		restGuilds:   map[string]*discordgo.Guild{"100": {ID: "100", Name: "guild"}},
		restChannels: map[string]*discordgo.Channel{"200": {ID: "200", GuildID: "100", Name: "logs"}},
	}
	dir := &Directory{src: src}
	r := eventlog.NewResolver(dir)

	for i := 0; i < 3; i++ {
		d, err := r.Resolve(context.Background(), "100", "200")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if d.Channel.Name != "logs" || d.Workspace.Name != "guild" {
			t.Fatalf("unexpected destination %+v", d)
		}
	}
	if src.guildFetches != 1 || src.channelFetches != 1 {
		t.Fatalf("expected one fetch each, got %d/%d", src.guildFetches, src.channelFetches)
	}
}

func TestDirectory_StateHitsSkipREST(t *testing.T) {
	src := &fakeLookup{
		guilds:   map[string]*discordgo.Guild{"100": {ID: "100"}},
		channels: map[string]*discordgo.Channel{"200": {ID: "200", GuildID: "100"}},
	}
	if _, err := eventlog.NewResolver(&Directory{src: src}).Resolve(context.Background(), "100", "200"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src.guildFetches+src.channelFetches != 0 {
		t.Fatalf("expected no REST calls")
	}
}

func TestDirectory_FailuresAreUnresolvable(t *testing.T) {
	src := &fakeLookup{guilds: map[string]*discordgo.Guild{"100": {ID: "100"}}}
	dir := &Directory{src: src}
	r := eventlog.NewResolver(dir)

	if _, err := r.Resolve(context.Background(), "100", "300"); !errors.Is(err, eventlog.ErrUnresolvable) {
		t.Fatalf("expected ErrUnresolvable, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "100", "bogus"); !errors.Is(err, eventlog.ErrUnresolvable) {
		t.Fatalf("expected ErrUnresolvable, got %v", err)
	}
	if src.channelFetches != 1 {
		t.Fatalf("malformed ids must not reach REST, got %d fetches", src.channelFetches)
	}
}

func TestDirectory_Forget(t *testing.T) {
	dir := &Directory{src: &fakeLookup{}}
	dir.Channels("100").Remember(eventlog.Channel{ID: "200", WorkspaceID: "100"})
	if _, ok := dir.Channels("100").Local("200"); !ok {
		t.Fatalf("expected remembered channel")
	}
	dir.Forget("200")
	if _, ok := dir.Channels("100").Local("200"); ok {
		t.Fatalf("expected channel forgotten")
	}
}
