package eventlog

import (
	"context"
	"errors"
	"strings"

	"chatbot-platform/pkg/logger"
)

const (
	ackUpdated     = "Logs settings have been updated successfully"
	ackRetry       = "Logs settings could not be updated, try again later"
	ackUnavailable = "Logs settings are unavailable right now, try again later"
	ackBadRequest  = "That channel or event cannot be used for logs"
)

// Ack is the operator-visible answer to a command. Failures carry a
// transient message only; causes go to the log.
type Ack struct {
	Content string
	OK      bool
	// Changed is set when the command wrote to the store.
	Changed bool
	// View is set for settings and reset acknowledgments.
	View *SettingsView
}

// Commands implements the operator command surface: one setter per kind, the
// settings view and its reset controls.
type Commands struct {
	store    Store
	settings *Settings
}

func NewCommands(store Store) *Commands {
	return &Commands{store: store, settings: NewSettings(store)}
}

// Set routes kind to channelID for the workspace.
func (c *Commands) Set(ctx context.Context, workspaceID string, kind Kind, channelID string) Ack {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return Ack{Content: ackBadRequest}
	}
	if err := c.store.SetDestination(ctx, workspaceID, kind, channelID); err != nil {
		return failureAck(ctx, "set destination", err, ackRetry)
	}
	logger.From(ctx).Info("log destination updated", "workspace_id", workspaceID, "kind", kind, "channel_id", channelID)
	return Ack{Content: ackUpdated, OK: true, Changed: true}
}

// Settings returns the current routing table with reset controls.
func (c *Commands) Settings(ctx context.Context, workspaceID string) Ack {
	v, err := c.settings.View(ctx, workspaceID)
	if err != nil {
		return failureAck(ctx, "view settings", err, ackUnavailable)
	}
	return Ack{Content: v.Table(), OK: true, View: &v}
}

// Reset clears kind and returns the re-rendered settings.
func (c *Commands) Reset(ctx context.Context, workspaceID string, kind Kind) Ack {
	v, cleared, err := c.settings.Reset(ctx, workspaceID, kind)
	if err != nil {
		return failureAck(ctx, "reset destination", err, ackRetry)
	}
	if cleared {
		logger.From(ctx).Info("log destination reset", "workspace_id", workspaceID, "kind", kind)
	}
	return Ack{Content: v.Table(), OK: true, Changed: cleared, View: &v}
}

func failureAck(ctx context.Context, op string, err error, transient string) Ack {
	logger.From(ctx).Error("logs command failed", "op", op, "class", errorClass(err), "err", err)
	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrUnknownKind) {
		return Ack{Content: ackBadRequest}
	}
	return Ack{Content: transient}
}
