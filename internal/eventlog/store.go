package eventlog

import (
	"context"
	"strings"
)

// Store is the persistence contract for routing tables.
//
// Both methods are upserts scoped to one workspace, so they are safe to call
// concurrently and in any order. Concurrent writes to the same kind are
// last-write-wins. Implementations wrap infrastructure failures with
// ErrStoreUnavailable.
type Store interface {
	// GetOrCreate returns the workspace's routing table, inserting an empty
	// one first when none exists.
	GetOrCreate(ctx context.Context, workspaceID string) (RoutingConfig, error)

	// SetDestination routes kind to channelID. An empty channelID clears it.
	SetDestination(ctx context.Context, workspaceID string, kind Kind, channelID string) error
}

// ValidateSet checks the arguments shared by every Store.SetDestination.
func ValidateSet(workspaceID string, kind Kind, channelID string) error {
	if strings.TrimSpace(workspaceID) == "" {
		return ErrInvalidArgument
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if channelID != strings.TrimSpace(channelID) {
		return ErrInvalidArgument
	}
	return nil
}
