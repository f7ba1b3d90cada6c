// Package dispatch implements an in-process message dispatch runtime:
// application code defines request, void-request, stream-request and
// notification types plus the handlers that serve them, and this package
// routes each dispatched message to its handler through a composable
// middleware pipeline, with typed exception interception and recovery.
//
// # Core Concepts
//
// Four message shapes are supported:
//
//   - request-with-response: exactly one handler, produces a value
//   - void-request: exactly one handler, produces nothing (internally a
//     request whose response is Unit)
//   - stream-request: exactly one handler, produces a lazy sequence
//   - notification: zero or more handlers, fire-and-forget
//
// Collaborators are resolved from a Locator (the service-locator / DI
// container the host application owns); the core never registers them
// itself. The terminal handler, pre/post-processors and middleware of a
// message type are resolved once, on that type's first dispatch through a
// Facade, and the composed pipeline is cached and reused for every later
// dispatch of the type: collaborators registered with the Locator after
// that first dispatch are not picked up by that Facade. Exception
// handlers and actions are resolved each time a dispatch fails. See the
// registry subpackage for a
// minimal, concrete Locator good enough for an application that does not
// already have a DI container.
//
// # Quick Start
//
//	reg := registry.New()
//	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
//	    func(ctx context.Context, cmd CreateUser) (string, error) {
//	        return "user-" + cmd.Email, nil
//	    },
//	))
//
//	facade, err := dispatch.NewFacade(reg)
//	id, err := dispatch.Send[string](ctx, facade, CreateUser{Email: "a@b.com"})
//
// # Pipeline
//
// Every request dispatch is wrapped in pre-processors (observe-only),
// middleware (may short-circuit and skip the handler and post-processors),
// the handler itself, and post-processors (observe success only):
//
//	p1, p2, ..., pm, b1-pre, b2-pre, ..., bn-pre, handler, q1, ..., qk, bn-post, ..., b1-post
//
// Pre-processors run in registration order, middlewares nest onion-style
// (first registered is outermost), post-processors run in registration
// order after a successful handler call, inside the innermost middleware.
// A middleware that never invokes
// its next function short-circuits everything inside it, including the
// post-processors.
//
// # Exception Recovery
//
// When any pipeline stage returns an error, the exception processor walks
// the error's Unwrap chain from the concrete dynamic type up to the
// universal error interface, resolving typed ExceptionHandlers at each
// step (most specific first). The first handler that marks its state
// handled supplies the recovery value (or, for streams, a replacement
// Stream) and stops the walk. If nothing recovers, ExceptionActions for
// the same chain run for side effects, and the original error is
// rethrown unmodified — errors.Is/errors.As against it behave exactly as
// if the exception processor were not there.
//
// # Streaming
//
// CreateStream never does any work eagerly: pipeline composition,
// pre-processors and the iterate-and-recover loop all happen lazily
// inside Stream.All, the first time the consumer ranges over it. A
// mid-iteration failure that is recovered swaps in a replacement stream
// transparently — the consumer never observes the failed element or the
// error that produced it, only a continuous sequence.
//
// # Notifications
//
// Publish never goes through the pipeline: no pre/post-processors, no
// middleware, no exception handlers or actions apply to notifications.
// Two built-in PublisherStrategy implementations are provided —
// Sequential (ordered, fail-fast) and Parallel (every handler started
// before any is awaited, first failure reported, with zero/one-handler
// fast paths that skip fan-out machinery entirely).
package dispatch
