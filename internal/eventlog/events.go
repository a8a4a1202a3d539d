package eventlog

import "time"

// Event is an inbound platform event, already translated from the platform
// client's types. Exactly one payload pointer is set, matching Kind.
type Event struct {
	Kind        Kind
	WorkspaceID string
	OccurredAt  time.Time

	Member  *Member        // joined, left
	Message *MessageChange // edited, deleted
	Thread  *Thread        // created
}

// Member is the subject of a joined/left event.
type Member struct {
	ID        string
	Name      string
	AvatarURL string

	AccountCreatedAt time.Time
	// JoinedAt is when the member originally joined. Zero when the platform
	// did not report it.
	JoinedAt time.Time
}

// MessageChange describes an edited or deleted message.
//
// Before is the best-effort cached prior content; BeforeKnown is false when
// the platform client never cached it. After is the current content (edits
// only).
type MessageChange struct {
	ID        string
	ChannelID string

	AuthorID   string
	AuthorName string

	Before      string
	BeforeKnown bool
	After       string

	URL string
}

// Thread is the subject of a created event.
type Thread struct {
	ID       string
	Name     string
	ParentID string
	OwnerID  string
}
