package eventlog

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("eventlog: invalid argument")
	ErrUnknownKind     = errors.New("eventlog: unknown event kind")

	// ErrStoreUnavailable marks configuration storage failures. Retryable at
	// the infrastructure layer; event handlers log and drop.
	ErrStoreUnavailable = errors.New("eventlog: configuration store unavailable")

	// ErrUnresolvable means the workspace or channel can no longer be reached
	// (deleted, access revoked). Not retryable for the current event.
	ErrUnresolvable = errors.New("eventlog: destination unresolvable")

	// ErrDelivery wraps platform send failures (permissions, rate limits).
	ErrDelivery = errors.New("eventlog: delivery failed")

	// ErrDeliveryThrottled is returned when a destination already has too many
	// sends in flight. The notification is dropped, not retried.
	ErrDeliveryThrottled = errors.New("eventlog: delivery throttled")
)

// errorClass names the failure category of err for log attributes.
func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrStoreUnavailable):
		return "configuration"
	case errors.Is(err, ErrUnresolvable):
		return "resolution"
	case errors.Is(err, ErrDeliveryThrottled), errors.Is(err, ErrDelivery):
		return "delivery"
	default:
		return "internal"
	}
}

// WrapUnavailable tags a storage failure as ErrStoreUnavailable, keeping the
// cause in the chain.
func WrapUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrUnknownKind) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
