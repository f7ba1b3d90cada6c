package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sort"

	"github.com/corewire/dispatch/pkg/dispatchlog"
)

var universalErrorType = reflect.TypeFor[error]()

// ExceptionHandler is the type-erased handler resolved when a request
// pipeline stage fails with a matching error type. It may recover by
// returning handled=true along with the response to use in the failed
// dispatch's place.
type ExceptionHandler interface {
	RequestType() reflect.Type
	ExceptionType() reflect.Type
	Handle(ctx context.Context, req any, exception error) (response any, handled bool, err error)
}

// ExceptionAction is the type-erased side-effect hook run for every
// exception type in the chain that no ExceptionHandler recovered —
// logging, metrics, alerting. It cannot affect dispatch outcome.
type ExceptionAction interface {
	RequestType() reflect.Type
	ExceptionType() reflect.Type
	Handle(ctx context.Context, req any, exception error) error
}

// StreamExceptionHandler is the stream-request equivalent of
// ExceptionHandler: on recovery it supplies a replacement stream picking
// up where the failed one left off, rather than a single response value.
type StreamExceptionHandler interface {
	RequestType() reflect.Type
	ExceptionType() reflect.Type
	Handle(ctx context.Context, req any, exception error) (replacement rawStream, handled bool, err error)
}

type exceptionTyped interface {
	ExceptionType() reflect.Type
}

type exceptionHandlerFunc[TRequest any, TException error, TResponse any] struct {
	fn func(context.Context, TRequest, TException) (TResponse, bool, error)
}

// NewExceptionHandler adapts a concretely-typed exception handler
// function into a type-erased ExceptionHandler. TException is
// constrained to error so ExceptionType() always reports a type
// implementing the error interface, including the bare error interface
// type itself for a universal catch-all handler.
func NewExceptionHandler[TRequest any, TException error, TResponse any](
	fn func(context.Context, TRequest, TException) (TResponse, bool, error),
) ExceptionHandler {
	return &exceptionHandlerFunc[TRequest, TException, TResponse]{fn: fn}
}

func (h *exceptionHandlerFunc[TRequest, TException, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (h *exceptionHandlerFunc[TRequest, TException, TResponse]) ExceptionType() reflect.Type {
	return reflect.TypeFor[TException]()
}

func (h *exceptionHandlerFunc[TRequest, TException, TResponse]) Handle(ctx context.Context, req any, exception error) (any, bool, error) {
	typedReq, ok := req.(TRequest)
	if !ok {
		return nil, false, typeMismatch("exception handler", reflect.TypeFor[TRequest](), req)
	}
	typedExc, ok := exception.(TException)
	if !ok {
		return nil, false, nil
	}
	return h.fn(ctx, typedReq, typedExc)
}

type exceptionActionFunc[TRequest any, TException error] struct {
	fn func(context.Context, TRequest, TException) error
}

// NewExceptionAction adapts a concretely-typed exception action function
// into a type-erased ExceptionAction.
func NewExceptionAction[TRequest any, TException error](fn func(context.Context, TRequest, TException) error) ExceptionAction {
	return &exceptionActionFunc[TRequest, TException]{fn: fn}
}

func (a *exceptionActionFunc[TRequest, TException]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (a *exceptionActionFunc[TRequest, TException]) ExceptionType() reflect.Type {
	return reflect.TypeFor[TException]()
}

func (a *exceptionActionFunc[TRequest, TException]) Handle(ctx context.Context, req any, exception error) error {
	typedReq, ok := req.(TRequest)
	if !ok {
		return typeMismatch("exception action", reflect.TypeFor[TRequest](), req)
	}
	typedExc, ok := exception.(TException)
	if !ok {
		return nil
	}
	return a.fn(ctx, typedReq, typedExc)
}

type streamExceptionHandlerFunc[TRequest any, TException error, TResponse any] struct {
	fn func(context.Context, TRequest, TException) (Stream[TResponse], bool, error)
}

// NewStreamExceptionHandler adapts a concretely-typed stream exception
// handler function into a type-erased StreamExceptionHandler.
func NewStreamExceptionHandler[TRequest any, TException error, TResponse any](
	fn func(context.Context, TRequest, TException) (Stream[TResponse], bool, error),
) StreamExceptionHandler {
	return &streamExceptionHandlerFunc[TRequest, TException, TResponse]{fn: fn}
}

func (h *streamExceptionHandlerFunc[TRequest, TException, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (h *streamExceptionHandlerFunc[TRequest, TException, TResponse]) ExceptionType() reflect.Type {
	return reflect.TypeFor[TException]()
}

func (h *streamExceptionHandlerFunc[TRequest, TException, TResponse]) Handle(ctx context.Context, req any, exception error) (rawStream, bool, error) {
	typedReq, ok := req.(TRequest)
	if !ok {
		return nil, false, typeMismatch("stream exception handler", reflect.TypeFor[TRequest](), req)
	}
	typedExc, ok := exception.(TException)
	if !ok {
		return nil, false, nil
	}
	replacement, handled, err := h.fn(ctx, typedReq, typedExc)
	if !handled || err != nil {
		return nil, handled, err
	}
	return eraseStream(replacement), true, nil
}

// matchRank reports how specifically handlerType matches errType: 0 for
// an exact match, 1 for an interface assignable from errType, 2 for the
// universal error interface (the lowest-priority, always-matches
// fallback), or -1 for no match at all.
func matchRank(handlerType, errType reflect.Type) int {
	switch {
	case handlerType == errType:
		return 0
	case handlerType == universalErrorType:
		return 2
	case handlerType.Kind() == reflect.Interface && errType.Implements(handlerType):
		return 1
	default:
		return -1
	}
}

// rankMatches returns the subset of items whose ExceptionType matches
// errType, most specific first.
func rankMatches[T exceptionTyped](items []T, errType reflect.Type) []T {
	type scored struct {
		rank int
		item T
	}
	var matched []scored
	for _, it := range items {
		if r := matchRank(it.ExceptionType(), errType); r >= 0 {
			matched = append(matched, scored{rank: r, item: it})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].rank < matched[j].rank })
	out := make([]T, len(matched))
	for i, s := range matched {
		out[i] = s.item
	}
	return out
}

// processRequestException walks cause's Unwrap chain looking for the
// first ExceptionHandler that recovers. If none does, it runs every
// matching ExceptionAction across the whole chain and reports no
// recovery, so the caller rethrows cause unmodified.
func processRequestException(ctx context.Context, locator Locator, logger *slog.Logger, reqType reflect.Type, req any, cause error) (any, bool) {
	handlers, err := locator.ExceptionHandlers(reqType)
	if err == nil && len(handlers) > 0 {
		for cur := cause; cur != nil; cur = errors.Unwrap(cur) {
			errType := reflect.TypeOf(cur)
			if errType == nil {
				continue
			}
			for _, h := range rankMatches(handlers, errType) {
				resp, handled, herr := h.Handle(ctx, req, cur)
				if herr != nil {
					continue
				}
				if handled {
					logger.DebugContext(ctx, "exception recovered",
						dispatchlog.Role("exception_handler"),
						dispatchlog.Exception(errType.String()),
						dispatchlog.Recovered(true))
					return resp, true
				}
			}
		}
	}
	runExceptionActions(ctx, locator, logger, reqType, req, cause)
	return nil, false
}

// runExceptionActions fires every ExceptionAction whose type matches any
// level of cause's Unwrap chain, each at most once, in chain order.
func runExceptionActions(ctx context.Context, locator Locator, logger *slog.Logger, reqType reflect.Type, req any, cause error) {
	actions, err := locator.ExceptionActions(reqType)
	if err != nil || len(actions) == 0 {
		return
	}
	fired := make(map[ExceptionAction]bool, len(actions))
	for cur := cause; cur != nil; cur = errors.Unwrap(cur) {
		errType := reflect.TypeOf(cur)
		if errType == nil {
			continue
		}
		for _, a := range rankMatches(actions, errType) {
			if fired[a] {
				continue
			}
			fired[a] = true
			logger.DebugContext(ctx, "exception action fired",
				dispatchlog.Role("exception_action"), dispatchlog.Exception(errType.String()))
			_ = a.Handle(ctx, req, cur)
		}
	}
}

// recoverStream mirrors processRequestException for the streaming case:
// it returns a replacement rawStream on recovery, or ok=false if nothing
// recovered (after running exception actions regardless).
func recoverStream(ctx context.Context, locator Locator, logger *slog.Logger, reqType reflect.Type, req any, cause error) (rawStream, bool) {
	handlers, err := locator.StreamExceptionHandlers(reqType)
	if err == nil && len(handlers) > 0 {
		for cur := cause; cur != nil; cur = errors.Unwrap(cur) {
			errType := reflect.TypeOf(cur)
			if errType == nil {
				continue
			}
			for _, h := range rankMatches(handlers, errType) {
				repl, handled, herr := h.Handle(ctx, req, cur)
				if herr != nil {
					continue
				}
				if handled {
					logger.DebugContext(ctx, "stream recovered, swapping iterator",
						dispatchlog.Role("stream_exception_handler"),
						dispatchlog.Exception(errType.String()),
						dispatchlog.Recovered(true))
					return repl, true
				}
			}
		}
	}
	runExceptionActions(ctx, locator, logger, reqType, req, cause)
	return nil, false
}

// runStreamWithRecovery drives a stream-request dispatch end to end: it
// invokes the handler pipeline, and on any error — whether from the
// initial call or mid-iteration — attempts recovery via recoverStream
// and, if successful, transparently swaps in the replacement stream and
// keeps going. The consumer, reached only through yield, never sees the
// failed element or the error that produced it once recovery succeeds.
func runStreamWithRecovery(ctx context.Context, locator Locator, logger *slog.Logger, reqType reflect.Type, req any, inv *streamInvoker, yield func(any, error) bool) {
	current, err := inv.invoke(ctx, req)
	if err != nil {
		repl, ok := recoverStream(ctx, locator, logger, reqType, req, err)
		if !ok {
			yield(nil, err)
			return
		}
		current = repl
	}
	for current != nil {
		repl, done := drainStream(current, ctx, locator, logger, reqType, req, yield)
		if done {
			return
		}
		current = repl
	}
}

// drainStream ranges over s, forwarding elements to yield, until s is
// exhausted (done=true, no replacement), the consumer stops iterating
// early (done=true, no replacement), or an element carries an error
// (done reflects whether recovery succeeded: false with a replacement
// stream to continue from, or true after yielding the unrecovered error).
func drainStream(s rawStream, ctx context.Context, locator Locator, logger *slog.Logger, reqType reflect.Type, req any, yield func(any, error) bool) (rawStream, bool) {
	for v, err := range s {
		if err != nil {
			repl, ok := recoverStream(ctx, locator, logger, reqType, req, err)
			if !ok {
				yield(nil, err)
				return nil, true
			}
			return repl, false
		}
		if !yield(v, nil) {
			return nil, true
		}
	}
	return nil, true
}
