package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chatbot-platform/internal/eventlog"

	"github.com/bwmarrin/discordgo"
)

var errInvalidID = errors.New("discord: malformed id")

// lookup is the part of the platform client the directory needs: the
// gateway state (local) and the REST API (remote).
type lookup interface {
	stateGuild(id string) (*discordgo.Guild, bool)
	fetchGuild(ctx context.Context, id string) (*discordgo.Guild, error)
	stateChannel(id string) (*discordgo.Channel, bool)
	fetchChannel(ctx context.Context, id string) (*discordgo.Channel, error)
}

type sessionLookup struct {
	s *discordgo.Session
}

func (l sessionLookup) stateGuild(id string) (*discordgo.Guild, bool) {
	if l.s.State == nil {
		return nil, false
	}
	g, err := l.s.State.Guild(id)
	return g, err == nil
}

func (l sessionLookup) fetchGuild(ctx context.Context, id string) (*discordgo.Guild, error) {
	return l.s.Guild(id, discordgo.WithContext(ctx))
}

func (l sessionLookup) stateChannel(id string) (*discordgo.Channel, bool) {
	if l.s.State == nil {
		return nil, false
	}
	c, err := l.s.State.Channel(id)
	return c, err == nil
}

func (l sessionLookup) fetchChannel(ctx context.Context, id string) (*discordgo.Channel, error) {
	return l.s.Channel(id, discordgo.WithContext(ctx))
}

// Directory resolves guilds and channels through the gateway state first and
// the REST API on a miss. Entities fetched over REST are remembered here
// rather than written into the gateway state, which the gateway owns.
type Directory struct {
	src lookup

	guilds   sync.Map // id -> eventlog.Workspace
	channels sync.Map // id -> eventlog.Channel
}

func NewDirectory(s *discordgo.Session) *Directory {
	return &Directory{src: sessionLookup{s: s}}
}

func (d *Directory) Workspaces() eventlog.Tier[eventlog.Workspace] { return guildTier{d} }

func (d *Directory) Channels(workspaceID string) eventlog.Tier[eventlog.Channel] {
	return channelTier{d: d, workspaceID: workspaceID}
}

// Forget drops remembered entities, e.g. when the gateway reports them deleted.
func (d *Directory) Forget(id string) {
	d.guilds.Delete(id)
	d.channels.Delete(id)
}

type guildTier struct{ d *Directory }

func (t guildTier) Local(id string) (eventlog.Workspace, bool) {
	if g, ok := t.d.src.stateGuild(id); ok {
		return workspaceOf(g), true
	}
	if v, ok := t.d.guilds.Load(id); ok {
		return v.(eventlog.Workspace), true
	}
	return eventlog.Workspace{}, false
}

func (t guildTier) Fetch(ctx context.Context, id string) (eventlog.Workspace, error) {
	if !ValidID(id) {
		return eventlog.Workspace{}, fmt.Errorf("guild %q: %w", id, errInvalidID)
	}
	g, err := t.d.src.fetchGuild(ctx, id)
	if err != nil {
		return eventlog.Workspace{}, err
	}
	return workspaceOf(g), nil
}

func (t guildTier) Remember(w eventlog.Workspace) { t.d.guilds.Store(w.ID, w) }

type channelTier struct {
	d           *Directory
	workspaceID string
}

func (t channelTier) Local(id string) (eventlog.Channel, bool) {
	if c, ok := t.d.src.stateChannel(id); ok {
		return channelOf(c), true
	}
	if v, ok := t.d.channels.Load(id); ok {
		return v.(eventlog.Channel), true
	}
	return eventlog.Channel{}, false
}

func (t channelTier) Fetch(ctx context.Context, id string) (eventlog.Channel, error) {
	if !ValidID(id) {
		return eventlog.Channel{}, fmt.Errorf("channel %q: %w", id, errInvalidID)
	}
	c, err := t.d.src.fetchChannel(ctx, id)
	if err != nil {
		return eventlog.Channel{}, err
	}
	return channelOf(c), nil
}

func (t channelTier) Remember(c eventlog.Channel) { t.d.channels.Store(c.ID, c) }

func workspaceOf(g *discordgo.Guild) eventlog.Workspace {
	return eventlog.Workspace{ID: g.ID, Name: g.Name}
}

func channelOf(c *discordgo.Channel) eventlog.Channel {
	return eventlog.Channel{ID: c.ID, WorkspaceID: c.GuildID, Name: c.Name}
}
