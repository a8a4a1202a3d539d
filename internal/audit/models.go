package audit

import "time"

// Event is an append-only record of one routing table change.
//
// Events are never updated or deleted. WorkspaceID and Kind are required;
// actor and IP are captured when the surface knows them.
type Event struct {
	ID          string    `json:"id" bson:"_id"`
	WorkspaceID string    `json:"workspace_id" bson:"workspace_id"`
	Type        EventType `json:"type" bson:"type"`

	// Kind is the event kind whose destination changed.
	Kind string `json:"kind" bson:"kind"`
	// ChannelID is the new destination; empty for a clear.
	ChannelID string `json:"channel_id,omitempty" bson:"channel_id,omitempty"`

	ActorID   string `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	ActorRole string `json:"actor_role,omitempty" bson:"actor_role,omitempty"`
	Source    Source `json:"source" bson:"source"`
	IPAddress string `json:"ip_address,omitempty" bson:"ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type EventType string

const (
	EventTypeDestinationSet     EventType = "destination_set"
	EventTypeDestinationCleared EventType = "destination_cleared"
)

// Source names the surface a change came through.
type Source string

const (
	SourceAPI     Source = "api"
	SourceCommand Source = "command"
)

// Change is what a surface knows about a routing mutation it just applied.
type Change struct {
	WorkspaceID string
	Kind        string
	ChannelID   string
	ActorID     string
	ActorRole   string
	Source      Source
	IPAddress   string
}
