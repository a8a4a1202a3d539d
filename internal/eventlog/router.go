package eventlog

import (
	"context"
	"errors"
	"fmt"

	"chatbot-platform/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Deliverer sends a rendered notification to a resolved destination.
// Failures are not retried by callers.
type Deliverer interface {
	Deliver(ctx context.Context, dest Destination, n Notification) error
}

// Outcome reports what the router did with an event.
type Outcome string

const (
	OutcomeDelivered  Outcome = "delivered"
	OutcomeUnrouted   Outcome = "unrouted"   // no destination configured for the kind
	OutcomeSuppressed Outcome = "suppressed" // kind guard rejected the event
	OutcomeFailed     Outcome = "failed"
)

// Router is the stateless event dispatcher.
//
// Per event, in order:
//  1. read the workspace routing table (get-or-create)
//  2. stop if the kind has no destination; nothing else runs
//  3. stop if the kind guard rejects the event
//  4. resolve the destination
//  5. render and deliver
//
// The router never retries. Errors are returned for the caller to log and drop.
type Router struct {
	store     Store
	resolver  DestinationResolver
	deliverer Deliverer
	policies  map[Kind]Policy
	tracer    trace.Tracer
}

func NewRouter(store Store, resolver DestinationResolver, deliverer Deliverer) *Router {
	return &Router{
		store:     store,
		resolver:  resolver,
		deliverer: deliverer,
		policies:  DefaultPolicies(),
		tracer:    otel.Tracer("chatbot-platform/eventlog"),
	}
}

// WithPolicy overrides or adds the policy for p.Kind.
func (r *Router) WithPolicy(p Policy) *Router {
	r.policies[p.Kind] = p
	return r
}

func (r *Router) Handle(ctx context.Context, ev Event) (Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "eventlog.handle", trace.WithAttributes(
		attribute.String("eventlog.kind", string(ev.Kind)),
		attribute.String("eventlog.workspace_id", ev.WorkspaceID),
	))
	defer span.End()

	out, err := r.handle(ctx, ev)
	span.SetAttributes(attribute.String("eventlog.outcome", string(out)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errorClass(err))
	}
	return out, err
}

func (r *Router) handle(ctx context.Context, ev Event) (Outcome, error) {
	log := logger.From(ctx)

	if ev.WorkspaceID == "" {
		return OutcomeFailed, fmt.Errorf("%w: workspace id missing", ErrInvalidArgument)
	}
	policy, ok := r.policies[ev.Kind]
	if !ok {
		return OutcomeFailed, ErrUnknownKind
	}
	if r.store == nil || r.resolver == nil || r.deliverer == nil {
		return OutcomeFailed, errors.New("eventlog: router not configured")
	}

	cfg, err := r.store.GetOrCreate(ctx, ev.WorkspaceID)
	if err != nil {
		return OutcomeFailed, WrapUnavailable(err)
	}
	channelID, ok := cfg.Destination(ev.Kind)
	if !ok {
		return OutcomeUnrouted, nil
	}

	if policy.Valid != nil && !policy.Valid(ev) {
		return OutcomeFailed, fmt.Errorf("%w: %s event without payload", ErrInvalidArgument, ev.Kind)
	}
	if policy.Guard != nil && !policy.Guard(ev) {
		log.Debug("event suppressed by guard", "kind", ev.Kind)
		return OutcomeSuppressed, nil
	}

	dest, err := r.resolver.Resolve(ctx, ev.WorkspaceID, channelID)
	if err != nil {
		if !errors.Is(err, ErrUnresolvable) {
			err = fmt.Errorf("%w: %w", ErrUnresolvable, err)
		}
		return OutcomeFailed, err
	}

	n := policy.Render(ev)
	if err := r.deliverer.Deliver(ctx, dest, n); err != nil {
		if !errors.Is(err, ErrDelivery) && !errors.Is(err, ErrDeliveryThrottled) {
			err = fmt.Errorf("%w: %w", ErrDelivery, err)
		}
		return OutcomeFailed, err
	}
	log.Debug("notification delivered", "kind", ev.Kind, "channel_id", dest.Channel.ID)
	return OutcomeDelivered, nil
}
