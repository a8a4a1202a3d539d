package discord

import (
	"time"

	"chatbot-platform/internal/eventlog"
	"chatbot-platform/internal/msgcache"

	"github.com/bwmarrin/discordgo"
)

// Embed limits enforced by the platform.
const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxEmbedFields      = 25
	maxFieldName        = 256
	maxFieldValue       = 1024
	maxFooter           = 2048
)

func displayName(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func memberFrom(m *discordgo.Member) *eventlog.Member {
	if m == nil || m.User == nil {
		return nil
	}
	return &eventlog.Member{
		ID:               m.User.ID,
		Name:             displayName(m.User),
		AvatarURL:        m.User.AvatarURL(""),
		AccountCreatedAt: CreatedAt(m.User.ID),
		JoinedAt:         m.JoinedAt,
	}
}

func joinedEvent(e *discordgo.GuildMemberAdd, now time.Time) (eventlog.Event, bool) {
	if e == nil || e.Member == nil {
		return eventlog.Event{}, false
	}
	m := memberFrom(e.Member)
	if m == nil {
		return eventlog.Event{}, false
	}
	return eventlog.Event{Kind: eventlog.KindJoined, WorkspaceID: e.GuildID, OccurredAt: now, Member: m}, true
}

func leftEvent(e *discordgo.GuildMemberRemove, now time.Time) (eventlog.Event, bool) {
	if e == nil || e.Member == nil {
		return eventlog.Event{}, false
	}
	m := memberFrom(e.Member)
	if m == nil {
		return eventlog.Event{}, false
	}
	return eventlog.Event{Kind: eventlog.KindLeft, WorkspaceID: e.GuildID, OccurredAt: now, Member: m}, true
}

// prior is what was known about a message before it changed.
type prior struct {
	content    string
	authorID   string
	authorName string
	known      bool
}

func priorFromMessage(m *discordgo.Message) prior {
	if m == nil {
		return prior{}
	}
	p := prior{content: m.Content, known: true}
	if m.Author != nil {
		p.authorID, p.authorName = m.Author.ID, displayName(m.Author)
	}
	return p
}

func priorFromEntry(e msgcache.Entry) prior {
	return prior{content: e.Content, authorID: e.AuthorID, authorName: e.AuthorName, known: true}
}

// isUserEdit filters out updates the platform sends for embed unfurls and
// pins, which carry no edit timestamp.
func isUserEdit(m *discordgo.Message) bool {
	return m != nil && m.EditedTimestamp != nil && m.GuildID != ""
}

func editedEvent(m *discordgo.Message, before prior, now time.Time) eventlog.Event {
	change := &eventlog.MessageChange{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		AuthorID:    before.authorID,
		AuthorName:  before.authorName,
		Before:      before.content,
		BeforeKnown: before.known,
		After:       m.Content,
		URL:         MessageURL(m.GuildID, m.ChannelID, m.ID),
	}
	if m.Author != nil {
		change.AuthorID, change.AuthorName = m.Author.ID, displayName(m.Author)
	}
	occurred := now
	if m.EditedTimestamp != nil {
		occurred = *m.EditedTimestamp
	}
	return eventlog.Event{Kind: eventlog.KindEdited, WorkspaceID: m.GuildID, OccurredAt: occurred, Message: change}
}

func deletedEvent(m *discordgo.Message, before prior, now time.Time) eventlog.Event {
	return eventlog.Event{
		Kind:        eventlog.KindDeleted,
		WorkspaceID: m.GuildID,
		OccurredAt:  now,
		Message: &eventlog.MessageChange{
			ID:          m.ID,
			ChannelID:   m.ChannelID,
			AuthorID:    before.authorID,
			AuthorName:  before.authorName,
			Before:      before.content,
			BeforeKnown: before.known,
		},
	}
}

func createdEvent(e *discordgo.ThreadCreate, now time.Time) (eventlog.Event, bool) {
	if e == nil || e.Channel == nil || !e.NewlyCreated || e.GuildID == "" {
		return eventlog.Event{}, false
	}
	return eventlog.Event{
		Kind:        eventlog.KindCreated,
		WorkspaceID: e.GuildID,
		OccurredAt:  now,
		Thread: &eventlog.Thread{
			ID:       e.ID,
			Name:     e.Name,
			ParentID: e.ParentID,
			OwnerID:  e.OwnerID,
		},
	}, true
}

func entryFrom(m *discordgo.Message) msgcache.Entry {
	e := msgcache.Entry{MessageID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
	if m.Author != nil {
		e.AuthorID, e.AuthorName = m.Author.ID, displayName(m.Author)
	}
	return e
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// embedFrom maps a notification onto a platform embed within its limits.
func embedFrom(n eventlog.Notification) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       clip(n.Title, maxEmbedTitle),
		Description: clip(n.Description, maxEmbedDescription),
		URL:         n.URL,
		Color:       n.Color,
	}
	for i, f := range n.Fields {
		if i == maxEmbedFields {
			break
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   clip(f.Name, maxFieldName),
			Value:  clip(f.Value, maxFieldValue),
			Inline: f.Inline,
		})
	}
	if n.ThumbnailURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: n.ThumbnailURL}
	}
	if n.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: clip(n.Footer, maxFooter)}
	}
	if !n.Timestamp.IsZero() {
		e.Timestamp = n.Timestamp.UTC().Format(time.RFC3339)
	}
	return e
}
