package dispatch

import (
	"errors"
	"fmt"
)

// Kind classifies dispatch failures. InvalidArgument, NoHandler and
// NoDispatchShape are attached to the DispatchErrors the core itself
// generates; the remaining kinds name errors re-exposed verbatim from
// user handler/middleware/publisher code.
type Kind int

const (
	// InvalidArgument is returned for a nil message, nil notification, or
	// a nil Locator passed to NewFacade.
	InvalidArgument Kind = iota

	// NoHandler is returned when no terminal handler is registered for
	// the dispatched message type.
	NoHandler

	// NoDispatchShape indicates an internal inconsistency while building
	// an invoker — a build-time bug in this package, not a user error.
	NoDispatchShape

	// HandlerFailure classifies an unrecovered error from user code
	// (pre-processor, middleware, handler or post-processor): Send and
	// SendVoid never wrap it, they return the original error value
	// unmodified, so errors.Is/errors.As against it behave exactly as if
	// the exception processor were not there. This Kind exists for
	// documentation and is never attached to a constructed DispatchError.
	HandlerFailure

	// PublisherFailure classifies an error escaping a notification
	// handler under the active PublisherStrategy. Like HandlerFailure it
	// is never wrapped — Publish returns the original error value
	// unmodified to preserve object identity for the caller.
	PublisherFailure

	// OperationCancelled marks context cancellation propagated from a
	// collaborator. The core never generates this kind itself.
	OperationCancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NoHandler:
		return "no_handler"
	case NoDispatchShape:
		return "no_dispatch_shape"
	case HandlerFailure:
		return "handler_failure"
	case PublisherFailure:
		return "publisher_failure"
	case OperationCancelled:
		return "operation_cancelled"
	default:
		return "unknown"
	}
}

// DispatchError is the error type the core itself raises (as opposed to
// user errors it re-exposes). When Cause is set, Unwrap returns it so
// errors.Is/errors.As keep working across the boundary; the errors this
// package constructs leave Cause nil.
type DispatchError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *DispatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dispatch: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("dispatch: %s: %s", e.Kind, e.Message)
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, dispatch.ErrNoHandler) style checks against the
// sentinel errors below without callers needing to know about Kind.
func (e *DispatchError) Is(target error) bool {
	switch e.Kind {
	case NoHandler:
		return target == ErrNoHandler
	case InvalidArgument:
		return target == ErrInvalidArgument
	case NoDispatchShape:
		return target == ErrNoDispatchShape
	}
	return false
}

var (
	// ErrInvalidArgument is the sentinel matched by errors.Is for InvalidArgument DispatchErrors.
	ErrInvalidArgument = errors.New("dispatch: invalid argument")

	// ErrNoHandler is the sentinel matched by errors.Is for NoHandler DispatchErrors.
	ErrNoHandler = errors.New("dispatch: no handler registered")

	// ErrNoDispatchShape is the sentinel matched by errors.Is for NoDispatchShape DispatchErrors.
	ErrNoDispatchShape = errors.New("dispatch: inconsistent dispatch shape")
)

func invalidArgument(message string) error {
	return &DispatchError{Kind: InvalidArgument, Message: message}
}

func noHandler(role, messageType string) error {
	return &DispatchError{Kind: NoHandler, Message: fmt.Sprintf("no %s registered for %s", role, messageType)}
}

func noDispatchShape(message string) error {
	return &DispatchError{Kind: NoDispatchShape, Message: message}
}
