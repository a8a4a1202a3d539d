package eventlog

import (
	"context"
	"errors"
	"fmt"
)

// Workspace is a live handle to a tenant community.
type Workspace struct {
	ID   string
	Name string
}

// Channel is a live handle to a delivery channel inside a workspace.
type Channel struct {
	ID          string
	WorkspaceID string
	Name        string
}

// Destination is a resolved (workspace, channel) pair, owned by the event or
// interaction that resolved it.
type Destination struct {
	Workspace Workspace
	Channel   Channel
}

// Tier is a two-level lookup for one entity type: an in-process cache in
// front of a remote fetch.
type Tier[T any] interface {
	Local(id string) (T, bool)
	Fetch(ctx context.Context, id string) (T, error)
	// Remember populates the local cache after a successful fetch.
	Remember(v T)
}

// Directory exposes the platform client's lookup tiers.
type Directory interface {
	Workspaces() Tier[Workspace]
	Channels(workspaceID string) Tier[Channel]
}

// DestinationResolver turns configured IDs into deliverable handles.
type DestinationResolver interface {
	Resolve(ctx context.Context, workspaceID, channelID string) (Destination, error)
}

// Resolver resolves destinations through a Directory.
//
// Guarantees per call: no remote fetch when the local tier has the entity,
// and at most one fetch per missing entity. Concurrent misses for the same
// entity may both fetch; that is wasteful but harmless.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

func (r *Resolver) Resolve(ctx context.Context, workspaceID, channelID string) (Destination, error) {
	if workspaceID == "" || channelID == "" {
		return Destination{}, ErrInvalidArgument
	}
	if r.dir == nil {
		return Destination{}, errors.New("eventlog: directory not configured")
	}

	ws, err := resolve(ctx, r.dir.Workspaces(), workspaceID)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: workspace %s: %w", ErrUnresolvable, workspaceID, err)
	}
	ch, err := resolve(ctx, r.dir.Channels(ws.ID), channelID)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: channel %s: %w", ErrUnresolvable, channelID, err)
	}
	if ch.WorkspaceID != "" && ch.WorkspaceID != ws.ID {
		return Destination{}, fmt.Errorf("%w: channel %s is not in workspace %s", ErrUnresolvable, channelID, ws.ID)
	}
	return Destination{Workspace: ws, Channel: ch}, nil
}

func resolve[T any](ctx context.Context, tier Tier[T], id string) (T, error) {
	if v, ok := tier.Local(id); ok {
		return v, nil
	}
	v, err := tier.Fetch(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	tier.Remember(v)
	return v, nil
}
