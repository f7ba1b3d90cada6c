package dispatch

import (
	"context"
	"iter"
	"reflect"

	"github.com/corewire/dispatch/pkg/asyncutil"
	"github.com/corewire/dispatch/pkg/dispatchlog"
)

// rawStream is the type-erased sequence the internal pipeline operates
// on: each step yields either a value or an error, never both, matching
// Go's range-over-func iter.Seq2 convention.
type rawStream iter.Seq2[any, error]

func emptyRawStream(yield func(any, error) bool) {}

// Stream is the lazily-evaluated sequence returned by a stream-request
// dispatch. Constructing a Stream does no work: the pipeline, the
// handler call and the recover-and-swap loop all run inside All, the
// first time the consumer ranges over it, against whatever context is
// passed to All — which may differ from the context the Stream was
// created with, hence the two-context link at the CreateStream boundary.
type Stream[T any] struct {
	start func(ctx context.Context) rawStream
}

// newStream wraps an already-materialized, context-independent raw
// sequence as a typed Stream. Used for handler- and middleware-produced
// streams, which already closed over whatever context they need.
func newStream[T any](raw rawStream) Stream[T] {
	if raw == nil {
		raw = emptyRawStream
	}
	return Stream[T]{start: func(context.Context) rawStream { return raw }}
}

// NewStream adapts a concretely-typed iter.Seq2 into a Stream, for use
// inside stream-request handlers and middleware.
func NewStream[T any](seq iter.Seq2[T, error]) Stream[T] {
	raw := rawStream(func(yield func(any, error) bool) {
		seq(func(v T, err error) bool {
			return yield(v, err)
		})
	})
	return newStream[T](raw)
}

// All ranges over the stream's elements against ctx. This is where all
// deferred work actually executes.
func (s Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if s.start == nil {
			return
		}
		for v, err := range s.start(ctx) {
			if err != nil {
				var zero T
				if !yield(zero, err) {
					return
				}
				continue
			}
			typed, ok := v.(T)
			if !ok {
				var zero T
				if !yield(zero, typeMismatch("stream element", reflect.TypeFor[T](), v)) {
					return
				}
				continue
			}
			if !yield(typed, nil) {
				return
			}
		}
	}
}

// eraseStream converts an already-materialized typed Stream into the
// internal rawStream representation used by the pipeline and invoker
// caches. Only ever called on handler/middleware-produced streams built
// via newStream/NewStream, whose start ignores its ctx argument, so the
// background context passed here is never actually observed.
func eraseStream[T any](s Stream[T]) rawStream {
	if s.start == nil {
		return emptyRawStream
	}
	return s.start(context.Background())
}

// typeStream converts a raw type-erased stream back into a typed Stream,
// used by stream middleware's "next" trampoline.
func typeStream[T any](raw rawStream) Stream[T] {
	return newStream[T](raw)
}

// CreateStream dispatches a stream-request message of type TRequest and
// returns a lazily-evaluated Stream[TResponse]. Nothing — not even the
// invoker lookup — runs until the consumer ranges over Stream.All.
func CreateStream[TResponse any, TRequest any](ctx context.Context, facade *Facade, req TRequest) (Stream[TResponse], error) {
	if facade == nil {
		return Stream[TResponse]{}, invalidArgument("facade must not be nil")
	}
	if any(req) == nil {
		return Stream[TResponse]{}, invalidArgument("request must not be nil")
	}
	messageType := reflect.TypeFor[TRequest]()
	facade.stats.streams.Add(1)

	start := func(iterCtx context.Context) rawStream {
		return func(yield func(any, error) bool) {
			linked, cancel := asyncutil.LinkContexts(ctx, iterCtx)
			defer cancel()
			// LinkContexts may hand back a context other than ctx, so the
			// dispatch metadata is stamped on the linked context itself.
			linked = withDispatchMeta(linked, messageType.String())

			inv, err := facade.streamInvokers.get(linked, facade.locator, facade.logger, messageType)
			if err != nil {
				facade.logger.DebugContext(linked, "dispatch table miss", dispatchlog.Message(messageType.String()), dispatchlog.Error(err))
				yield(nil, err)
				return
			}

			runStreamWithRecovery(linked, facade.locator, facade.logger, messageType, req, inv, yield)
		}
	}

	return Stream[TResponse]{start: start}, nil
}
