package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatbot-platform/internal/audit"
	"chatbot-platform/internal/eventlog"
	"chatbot-platform/internal/msgcache"

	"github.com/bwmarrin/discordgo"
)

const (
	submitTimeout      = 5 * time.Second
	cacheTimeout       = 2 * time.Second
	interactionTimeout = 2500 * time.Millisecond
)

// Submitter queues translated events for the router.
type Submitter interface {
	Submit(ctx context.Context, ev eventlog.Event) (string, error)
}

// NewSession builds a gateway session with the intents the event log needs.
// maxMessages bounds the message history kept in state for edit lookups.
func NewSession(token string, maxMessages int) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	s.StateEnabled = true
	s.State.MaxMessageCount = maxMessages
	s.State.TrackMembers = true
	return s, nil
}

type BotConfig struct {
	// CommandGuildID registers commands on one guild; empty registers globally.
	CommandGuildID string
}

// Bot wires gateway events into the event pipeline and serves /logs.
type Bot struct {
	session  *discordgo.Session
	submit   Submitter
	commands *eventlog.Commands
	cache    msgcache.Cache
	dir      *Directory
	cfg      BotConfig
	log      *slog.Logger
	clock    func() time.Time
	audit    *audit.Service
	joins    msgcache.JoinTimes

	ctx      context.Context
	removers []func()
}

func NewBot(s *discordgo.Session, submit Submitter, cmds *eventlog.Commands, cache msgcache.Cache, dir *Directory, cfg BotConfig, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		session:  s,
		submit:   submit,
		commands: cmds,
		cache:    cache,
		dir:      dir,
		cfg:      cfg,
		log:      log,
		clock:    time.Now,
		ctx:      context.Background(),
	}
}

// WithAudit records every routing change made through /logs.
func (b *Bot) WithAudit(svc *audit.Service) *Bot {
	b.audit = svc
	return b
}

// WithJoinTimes records member join times so leave notifications can show
// them.
func (b *Bot) WithJoinTimes(j msgcache.JoinTimes) *Bot {
	b.joins = j
	return b
}

// Open registers handlers, connects to the gateway and registers commands.
// ctx scopes every handler invocation until Close.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	b.removers = append(b.removers,
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onMemberAdd),
		b.session.AddHandler(b.onMemberRemove),
		b.session.AddHandler(b.onGuildCreate),
		b.session.AddHandler(b.onMembersChunk),
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.onMessageUpdate),
		b.session.AddHandler(b.onMessageDelete),
		b.session.AddHandler(b.onThreadCreate),
		b.session.AddHandler(b.onChannelDelete),
		b.session.AddHandler(b.onGuildDelete),
		b.session.AddHandler(b.onInteraction),
	)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("gateway ready", "user_id", r.User.ID, "guilds", len(r.Guilds))
	cmds := ApplicationCommands()
	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.cfg.CommandGuildID, cmds, discordgo.WithContext(b.ctx)); err != nil {
		b.log.Error("register commands failed", "err", err)
		return
	}
	b.log.Info("commands registered", "guild_id", b.cfg.CommandGuildID, "count", len(cmds))
}

func (b *Bot) enqueue(ev eventlog.Event) {
	ctx, cancel := context.WithTimeout(b.ctx, submitTimeout)
	defer cancel()
	id, err := b.submit.Submit(ctx, ev)
	if err != nil {
		b.log.Warn("event not queued", "kind", ev.Kind, "workspace_id", ev.WorkspaceID, "err", err)
		return
	}
	b.log.Debug("event queued", "event_id", id, "kind", ev.Kind, "workspace_id", ev.WorkspaceID)
}

func (b *Bot) onMemberAdd(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.Member != nil {
		b.rememberJoins(e.GuildID, []*discordgo.Member{e.Member})
	}
	if ev, ok := joinedEvent(e, b.clock()); ok {
		b.enqueue(ev)
	}
}

// onMemberRemove fills the join time from the join store: the gateway
// payload only carries the user, and state has already dropped the member.
func (b *Bot) onMemberRemove(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
	ev, ok := leftEvent(e, b.clock())
	if !ok {
		return
	}
	if ev.Member.JoinedAt.IsZero() {
		ev.Member.JoinedAt = b.joinedAt(e.GuildID, ev.Member.ID)
	}
	b.enqueue(ev)
	b.forgetJoin(e.GuildID, ev.Member.ID)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.GuildID == "" {
		return
	}
	b.remember(m.Message)
}

func (b *Bot) onMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if !isUserEdit(m.Message) || (m.Author != nil && m.Author.Bot) {
		return
	}
	before := b.before(m.BeforeUpdate, m.ID)
	b.enqueue(editedEvent(m.Message, before, b.clock()))
	b.remember(m.Message)
}

func (b *Bot) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil || m.GuildID == "" {
		return
	}
	if b.isBot(m.BeforeDelete) {
		return
	}
	before := b.before(m.BeforeDelete, m.ID)
	b.enqueue(deletedEvent(m.Message, before, b.clock()))
	b.forget(m.ID)
}

func (b *Bot) onThreadCreate(_ *discordgo.Session, t *discordgo.ThreadCreate) {
	if ev, ok := createdEvent(t, b.clock()); ok {
		b.enqueue(ev)
	}
}

func (b *Bot) onChannelDelete(_ *discordgo.Session, c *discordgo.ChannelDelete) {
	if b.dir != nil && c.Channel != nil {
		b.dir.Forget(c.ID)
	}
}

func (b *Bot) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if b.dir != nil && g.Guild != nil {
		b.dir.Forget(g.ID)
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
	defer cancel()
	resp, change := respond(ctx, b.commands, i.Interaction)
	if resp == nil {
		return
	}
	if err := s.InteractionRespond(i.Interaction, resp, discordgo.WithContext(ctx)); err != nil {
		b.log.Error("interaction response failed", "guild_id", i.GuildID, "err", err)
	}
	b.record(ctx, change)
}

func (b *Bot) record(ctx context.Context, change *audit.Change) {
	if change == nil || b.audit == nil {
		return
	}
	if err := b.audit.RecordChange(ctx, *change); err != nil {
		b.log.Warn("audit append failed", "guild_id", change.WorkspaceID, "kind", change.Kind, "err", err)
	}
}

// before prefers the gateway state's copy and falls back to the cache.
func (b *Bot) before(state *discordgo.Message, messageID string) prior {
	if state != nil {
		return priorFromMessage(state)
	}
	if b.cache == nil {
		return prior{}
	}
	ctx, cancel := context.WithTimeout(b.ctx, cacheTimeout)
	defer cancel()
	e, ok, err := b.cache.Get(ctx, messageID)
	if err != nil {
		b.log.Warn("message cache read failed", "message_id", messageID, "err", err)
		return prior{}
	}
	if !ok {
		return prior{}
	}
	return priorFromEntry(e)
}

func (b *Bot) isBot(m *discordgo.Message) bool {
	return m != nil && m.Author != nil && m.Author.Bot
}

func (b *Bot) remember(m *discordgo.Message) {
	if b.cache == nil || b.isBot(m) {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, cacheTimeout)
	defer cancel()
	if err := b.cache.Put(ctx, entryFrom(m)); err != nil {
		b.log.Warn("message cache write failed", "message_id", m.ID, "err", err)
	}
}

func (b *Bot) forget(messageID string) {
	if b.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, cacheTimeout)
	defer cancel()
	if err := b.cache.Delete(ctx, messageID); err != nil {
		b.log.Warn("message cache delete failed", "message_id", messageID, "err", err)
	}
}
