package eventlog

import "strings"

// Kind identifies a tracked workspace lifecycle event.
//
// The set is closed. Key() is the persisted field name for the kind's
// destination; Label() is shown to operators as a command name and as a
// settings control label.
type Kind string

const (
	KindJoined  Kind = "joined"
	KindLeft    Kind = "left"
	KindEdited  Kind = "edited"
	KindDeleted Kind = "deleted"
	KindCreated Kind = "created"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindJoined, KindLeft, KindEdited, KindDeleted, KindCreated}

var kindLabels = map[Kind]string{
	KindJoined:  "Joined",
	KindLeft:    "Left",
	KindEdited:  "Edited",
	KindDeleted: "Deleted",
	KindCreated: "Created",
}

var kindDescriptions = map[Kind]string{
	KindJoined:  "Get notified every time a user joins the server",
	KindLeft:    "Get notified every time a user leaves the server",
	KindEdited:  "Get notified every time a user edits a message",
	KindDeleted: "Get notified every time a user deletes a message",
	KindCreated: "Get notified every time a thread is created",
}

func (k Kind) Label() string { return kindLabels[k] }

func (k Kind) Key() string { return strings.ToLower(kindLabels[k]) }

// Description is the operator-facing help text of the kind's setter command.
func (k Kind) Description() string { return kindDescriptions[k] }

func (k Kind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// ParseKind accepts a key or a label, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrUnknownKind
	}
	return k, nil
}
