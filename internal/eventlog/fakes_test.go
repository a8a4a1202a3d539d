package eventlog

import (
	"context"
	"sync"
	"time"
)

type countingResolver struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingResolver) Resolve(ctx context.Context, workspaceID, channelID string) (Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return Destination{}, r.err
	}
	return Destination{
		Workspace: Workspace{ID: workspaceID},
		Channel:   Channel{ID: channelID, WorkspaceID: workspaceID},
	}, nil
}

func (r *countingResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type delivery struct {
	dest Destination
	n    Notification
}

type recordingDeliverer struct {
	mu         sync.Mutex
	deliveries []delivery
	err        error
}

func (d *recordingDeliverer) Deliver(ctx context.Context, dest Destination, n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.deliveries = append(d.deliveries, delivery{dest: dest, n: n})
	return nil
}

func (d *recordingDeliverer) Deliveries() []delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]delivery, len(d.deliveries))
	copy(out, d.deliveries)
	return out
}

var testNow = time.Unix(1700000000, 0).UTC()

func editEvent(workspaceID, before, after string) Event {
	return Event{
		Kind:        KindEdited,
		WorkspaceID: workspaceID,
		OccurredAt:  testNow,
		Message: &MessageChange{
			ID:          "m1",
			ChannelID:   "general",
			AuthorID:    "u1",
			AuthorName:  "alice",
			Before:      before,
			BeforeKnown: true,
			After:       after,
			URL:         "https://chat.example/channels/" + workspaceID + "/general/m1",
		},
	}
}

func joinEvent(workspaceID, memberID string) Event {
	return Event{
		Kind:        KindJoined,
		WorkspaceID: workspaceID,
		OccurredAt:  testNow,
		Member: &Member{
			ID:               memberID,
			Name:             "member-" + memberID,
			AvatarURL:        "https://cdn.example/avatars/" + memberID + ".png",
			AccountCreatedAt: testNow.Add(-48 * time.Hour),
		},
	}
}
