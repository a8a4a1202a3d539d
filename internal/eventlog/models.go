package eventlog

// RoutingConfig is the per-workspace routing table.
//
// Invariants:
// - exactly one record per workspace once it has been read (see Store.GetOrCreate)
// - an empty destination means "not configured"
// - records are mutated one field at a time, never replaced wholesale
type RoutingConfig struct {
	WorkspaceID string `json:"workspace_id" db:"workspace_id" bson:"_id"`

	Joined  string `json:"joined,omitempty" db:"joined" bson:"joined,omitempty"`
	Left    string `json:"left,omitempty" db:"left" bson:"left,omitempty"`
	Edited  string `json:"edited,omitempty" db:"edited" bson:"edited,omitempty"`
	Deleted string `json:"deleted,omitempty" db:"deleted" bson:"deleted,omitempty"`
	Created string `json:"created,omitempty" db:"created" bson:"created,omitempty"`
}

// Destination returns the configured channel for k, if any.
func (c RoutingConfig) Destination(k Kind) (string, bool) {
	var id string
	switch k {
	case KindJoined:
		id = c.Joined
	case KindLeft:
		id = c.Left
	case KindEdited:
		id = c.Edited
	case KindDeleted:
		id = c.Deleted
	case KindCreated:
		id = c.Created
	}
	return id, id != ""
}

// WithDestination returns a copy of c with k routed to channelID.
// An empty channelID clears the entry.
func (c RoutingConfig) WithDestination(k Kind, channelID string) RoutingConfig {
	switch k {
	case KindJoined:
		c.Joined = channelID
	case KindLeft:
		c.Left = channelID
	case KindEdited:
		c.Edited = channelID
	case KindDeleted:
		c.Deleted = channelID
	case KindCreated:
		c.Created = channelID
	}
	return c
}
