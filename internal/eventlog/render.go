package eventlog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Notification is a platform-neutral rich message. The platform adapter maps
// it onto its own embed type.
type Notification struct {
	Title        string
	Description  string
	URL          string
	Color        int
	Fields       []Field
	ThumbnailURL string
	Footer       string
	Timestamp    time.Time
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

const (
	// ContentNotCached stands in for message content the platform client
	// never saw.
	ContentNotCached = "Content not cached"
	emptyContent     = "*No text content*"
	notSpecified     = "Not specified"
	unknownValue     = "Unknown"

	maxFieldValue = 1024
)

const (
	colorJoined  = 0x57F287
	colorLeft    = 0xED4245
	colorEdited  = 0xFEE75C
	colorDeleted = 0xEB459E
	colorCreated = 0x5865F2
)

// renderContent is the text shown (and compared) for message content.
// Whitespace runs collapse so that platform re-renders that only touch
// spacing compare equal.
func renderContent(content string, known bool) string {
	if !known {
		return ContentNotCached
	}
	s := strings.Join(strings.Fields(content), " ")
	if s == "" {
		return emptyContent
	}
	return s
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func channelMention(id string) string { return "<#" + id + ">" }

func userMention(id string) string { return "<@" + id + ">" }

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return unknownValue
	}
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func fullTime(t time.Time) string {
	if t.IsZero() {
		return unknownValue
	}
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

func renderJoined(ev Event) Notification {
	m := ev.Member
	return Notification{
		Title: "Member joined",
		Color: colorJoined,
		Fields: []Field{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", orUnknown(m.Name), userMention(m.ID)), Inline: true},
			{Name: "Account created", Value: relativeTime(m.AccountCreatedAt), Inline: true},
		},
		ThumbnailURL: m.AvatarURL,
		Footer:       "ID: " + m.ID,
		Timestamp:    ev.OccurredAt,
	}
}

func renderLeft(ev Event) Notification {
	m := ev.Member
	return Notification{
		Title: "Member left",
		Color: colorLeft,
		Fields: []Field{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", orUnknown(m.Name), userMention(m.ID)), Inline: true},
			{Name: "Joined", Value: fullTime(m.JoinedAt), Inline: true},
		},
		ThumbnailURL: m.AvatarURL,
		Footer:       "ID: " + m.ID,
		Timestamp:    ev.OccurredAt,
	}
}

func renderEdited(ev Event) Notification {
	m := ev.Message
	return Notification{
		Title: "Message edited",
		URL:   m.URL,
		Color: colorEdited,
		Fields: []Field{
			{Name: "Before", Value: truncate(renderContent(m.Before, m.BeforeKnown), maxFieldValue)},
			{Name: "After", Value: truncate(renderContent(m.After, true), maxFieldValue)},
			{Name: "Author", Value: authorValue(m), Inline: true},
			{Name: "Channel", Value: channelMention(m.ChannelID), Inline: true},
			{Name: "Message", Value: jumpLink(m.URL), Inline: true},
		},
		Footer:    "Message ID: " + m.ID,
		Timestamp: ev.OccurredAt,
	}
}

// renderDeleted is deliberately minimal: content is usually gone by the time
// the platform reports a deletion.
func renderDeleted(ev Event) Notification {
	m := ev.Message
	fields := []Field{
		{Name: "Channel", Value: channelMention(m.ChannelID), Inline: true},
		{Name: "Author", Value: authorValue(m), Inline: true},
	}
	if m.BeforeKnown {
		fields = append(fields, Field{Name: "Content", Value: truncate(renderContent(m.Before, true), maxFieldValue)})
	}
	return Notification{
		Title:     "Message deleted",
		Color:     colorDeleted,
		Fields:    fields,
		Footer:    "Message ID: " + m.ID,
		Timestamp: ev.OccurredAt,
	}
}

func renderCreated(ev Event) Notification {
	t := ev.Thread
	fields := []Field{
		{Name: "Thread", Value: channelMention(t.ID), Inline: true},
	}
	if t.ParentID != "" {
		fields = append(fields, Field{Name: "Parent", Value: channelMention(t.ParentID), Inline: true})
	}
	if t.OwnerID != "" {
		fields = append(fields, Field{Name: "Owner", Value: userMention(t.OwnerID), Inline: true})
	}
	return Notification{
		Title:       "Thread created",
		Description: t.Name,
		Color:       colorCreated,
		Fields:      fields,
		Footer:      "Thread ID: " + t.ID,
		Timestamp:   ev.OccurredAt,
	}
}

func authorValue(m *MessageChange) string {
	switch {
	case m.AuthorID != "" && m.AuthorName != "":
		return fmt.Sprintf("%s (%s)", m.AuthorName, userMention(m.AuthorID))
	case m.AuthorID != "":
		return userMention(m.AuthorID)
	default:
		return unknownValue
	}
}

func jumpLink(url string) string {
	if url == "" {
		return unknownValue
	}
	return "[Jump to message](" + url + ")"
}
