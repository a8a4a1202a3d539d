package eventlog

// Policy is the per-kind part of event handling. The router runs the same
// sequence for every kind (config read, guard, resolve, render, deliver);
// everything that differs between kinds lives here.
type Policy struct {
	Kind Kind

	// Valid reports whether the event carries the payload Render needs.
	Valid func(Event) bool

	// Guard returns false to suppress delivery of a semantically unchanged
	// event. Nil means always deliver.
	Guard func(Event) bool

	Render func(Event) Notification
}

// DefaultPolicies returns the policy table for every Kind.
//
// deleted and created render the minimal context the platform provides; their
// payload shape is an extension point rather than a settled contract.
func DefaultPolicies() map[Kind]Policy {
	return map[Kind]Policy{
		KindJoined:  {Kind: KindJoined, Valid: hasMember, Render: renderJoined},
		KindLeft:    {Kind: KindLeft, Valid: hasMember, Render: renderLeft},
		KindEdited:  {Kind: KindEdited, Valid: hasMessage, Guard: contentChanged, Render: renderEdited},
		KindDeleted: {Kind: KindDeleted, Valid: hasMessage, Render: renderDeleted},
		KindCreated: {Kind: KindCreated, Valid: hasThread, Render: renderCreated},
	}
}

func hasMember(ev Event) bool  { return ev.Member != nil && ev.Member.ID != "" }
func hasMessage(ev Event) bool { return ev.Message != nil && ev.Message.ID != "" }
func hasThread(ev Event) bool  { return ev.Thread != nil && ev.Thread.ID != "" }

// contentChanged compares the rendered before and after text. An uncached
// before renders as ContentNotCached, which will normally differ from the
// real content, so the edit is still reported.
func contentChanged(ev Event) bool {
	m := ev.Message
	return renderContent(m.Before, m.BeforeKnown) != renderContent(m.After, true)
}
