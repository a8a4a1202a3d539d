package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// onGuildCreate seeds join times from the members sent with the guild and
// asks for the rest in chunks when the guild is larger than that.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	b.rememberJoins(g.ID, g.Members)
	if b.joins == nil || s == nil || g.MemberCount <= len(g.Members) {
		return
	}
	if err := s.RequestGuildMembers(g.ID, "", 0, "", false); err != nil {
		b.log.Warn("request guild members failed", "guild_id", g.ID, "err", err)
	}
}

func (b *Bot) onMembersChunk(_ *discordgo.Session, c *discordgo.GuildMembersChunk) {
	b.rememberJoins(c.GuildID, c.Members)
}

func (b *Bot) rememberJoins(guildID string, members []*discordgo.Member) {
	if b.joins == nil || guildID == "" || len(members) == 0 {
		return
	}
	joined := make(map[string]time.Time, len(members))
	for _, m := range members {
		if m == nil || m.User == nil || m.JoinedAt.IsZero() {
			continue
		}
		joined[m.User.ID] = m.JoinedAt
	}
	ctx, cancel := context.WithTimeout(b.ctx, cacheTimeout)
	defer cancel()
	if err := b.joins.RememberJoins(ctx, guildID, joined); err != nil {
		b.log.Warn("join store write failed", "guild_id", guildID, "count", len(joined), "err", err)
	}
}

// joinedAt returns the zero time when the join was never seen.
func (b *Bot) joinedAt(guildID, userID string) time.Time {
	if b.joins == nil {
		return time.Time{}
	}
	ctx, cancel := context.WithTimeout(b.ctx, cacheTimeout)
	defer cancel()
	at, ok, err := b.joins.JoinedAt(ctx, guildID, userID)
	if err != nil {
		b.log.Warn("join store read failed", "guild_id", guildID, "user_id", userID, "err", err)
		return time.Time{}
	}
	if !ok {
		return time.Time{}
	}
	return at
}

func (b *Bot) forgetJoin(guildID, userID string) {
	if b.joins == nil {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, cacheTimeout)
	defer cancel()
	if err := b.joins.ForgetJoin(ctx, guildID, userID); err != nil {
		b.log.Warn("join store delete failed", "guild_id", guildID, "user_id", userID, "err", err)
	}
}
