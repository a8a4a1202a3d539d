package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events. It is append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records routing changes.
//
// Callers treat recording as best-effort: a failed append is logged, never
// surfaced to the operator whose change already succeeded.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.WorkspaceID == "" || e.Type == "" || e.Kind == "" {
		return ErrInvalidEvent
	}
	if e.Source == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// RecordChange appends the event for one applied set or clear.
func (s *Service) RecordChange(ctx context.Context, c Change) error {
	typ := EventTypeDestinationSet
	if c.ChannelID == "" {
		typ = EventTypeDestinationCleared
	}
	return s.Append(ctx, Event{
		WorkspaceID: c.WorkspaceID,
		Type:        typ,
		Kind:        c.Kind,
		ChannelID:   c.ChannelID,
		ActorID:     c.ActorID,
		ActorRole:   c.ActorRole,
		Source:      c.Source,
		IPAddress:   c.IPAddress,
	})
}
