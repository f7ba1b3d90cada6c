package dispatch

import (
	"context"
	"fmt"
	"reflect"
)

// This file defines the type-erased collaborator interfaces the dispatch
// engine operates on internally, plus the generic constructors
// ("trampolines") that let application code implement them with plain,
// concretely-typed functions. Every NewXxx[T...] below follows the same
// shape as the teacher's command.NewHandlerFunc[T]: it closes over the
// concrete type parameters once and performs the type.(T) assertion
// inside the returned value's methods, so the interface itself never
// needs generics and the rest of the engine never performs reflective
// method invocation.

// RequestHandler is the type-erased terminal handler for a
// request-with-response message type.
type RequestHandler interface {
	RequestType() reflect.Type
	ResponseType() reflect.Type
	Handle(ctx context.Context, req any) (any, error)
}

// VoidRequestHandler is the type-erased terminal handler for a
// void-request message type.
type VoidRequestHandler interface {
	RequestType() reflect.Type
	Handle(ctx context.Context, req any) error
}

// StreamRequestHandler is the type-erased terminal handler for a
// stream-request message type.
type StreamRequestHandler interface {
	RequestType() reflect.Type
	ResponseType() reflect.Type
	Handle(ctx context.Context, req any) (rawStream, error)
}

// NotificationHandler is the type-erased handler for a notification type.
type NotificationHandler interface {
	NotificationType() reflect.Type
	Handle(ctx context.Context, notification any) error
}

// PreProcessor observes a request (or stream-request) before the handler
// runs. It cannot short-circuit; a returned error goes straight to the
// exception processor.
type PreProcessor interface {
	RequestType() reflect.Type
	Process(ctx context.Context, req any) error
}

// PostProcessor observes a request's response after a successful handler
// call. There is no stream equivalent (spec: "no stream equivalent").
type PostProcessor interface {
	RequestType() reflect.Type
	ResponseType() reflect.Type
	Process(ctx context.Context, req any, resp any) error
}

// RequestHandlerFunc is the "next" capability passed through the request
// middleware chain: a plain callable, not a resource, matching §9's
// "ownership-neutral capability" guidance.
type RequestHandlerFunc func(ctx context.Context, req any) (any, error)

// RequestMiddleware wraps a request handler call. It may choose not to
// invoke next, short-circuiting the handler and any post-processors.
type RequestMiddleware interface {
	RequestType() reflect.Type
	ResponseType() reflect.Type
	Handle(ctx context.Context, req any, next RequestHandlerFunc) (any, error)
}

// StreamHandlerFunc is the stream-pipeline equivalent of RequestHandlerFunc.
type StreamHandlerFunc func(ctx context.Context, req any) (rawStream, error)

// StreamMiddleware wraps a stream handler call, returning a (possibly
// transformed) stream instead of a single completion.
type StreamMiddleware interface {
	RequestType() reflect.Type
	ResponseType() reflect.Type
	Handle(ctx context.Context, req any, next StreamHandlerFunc) (rawStream, error)
}

func typeMismatch(role string, want reflect.Type, got any) error {
	return fmt.Errorf("%s: expected payload of type %s, got %T", role, want, got)
}

// --- trampolines -----------------------------------------------------

type requestHandlerFunc[TRequest any, TResponse any] struct {
	fn func(context.Context, TRequest) (TResponse, error)
}

// NewRequestHandler adapts a concretely-typed function into a
// type-erased RequestHandler. Reflection is used only via reflect.TypeFor
// (never reflect.Value.Call), to record the request/response type for
// dispatch-table and locator keying; the returned value's Handle method
// is a direct call, never a reflective one.
func NewRequestHandler[TRequest any, TResponse any](fn func(context.Context, TRequest) (TResponse, error)) RequestHandler {
	return &requestHandlerFunc[TRequest, TResponse]{fn: fn}
}

func (h *requestHandlerFunc[TRequest, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (h *requestHandlerFunc[TRequest, TResponse]) ResponseType() reflect.Type {
	return reflect.TypeFor[TResponse]()
}

func (h *requestHandlerFunc[TRequest, TResponse]) Handle(ctx context.Context, req any) (any, error) {
	typed, ok := req.(TRequest)
	if !ok {
		var zero TResponse
		return zero, typeMismatch("request handler", reflect.TypeFor[TRequest](), req)
	}
	return h.fn(ctx, typed)
}

type voidRequestHandlerFunc[TRequest any] struct {
	fn func(context.Context, TRequest) error
}

// NewVoidRequestHandler adapts a concretely-typed function with no
// response into a type-erased VoidRequestHandler.
func NewVoidRequestHandler[TRequest any](fn func(context.Context, TRequest) error) VoidRequestHandler {
	return &voidRequestHandlerFunc[TRequest]{fn: fn}
}

func (h *voidRequestHandlerFunc[TRequest]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (h *voidRequestHandlerFunc[TRequest]) Handle(ctx context.Context, req any) error {
	typed, ok := req.(TRequest)
	if !ok {
		return typeMismatch("void request handler", reflect.TypeFor[TRequest](), req)
	}
	return h.fn(ctx, typed)
}

type streamRequestHandlerFunc[TRequest any, TResponse any] struct {
	fn func(context.Context, TRequest) (Stream[TResponse], error)
}

// NewStreamRequestHandler adapts a concretely-typed function returning a
// Stream[TResponse] into a type-erased StreamRequestHandler.
func NewStreamRequestHandler[TRequest any, TResponse any](fn func(context.Context, TRequest) (Stream[TResponse], error)) StreamRequestHandler {
	return &streamRequestHandlerFunc[TRequest, TResponse]{fn: fn}
}

func (h *streamRequestHandlerFunc[TRequest, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (h *streamRequestHandlerFunc[TRequest, TResponse]) ResponseType() reflect.Type {
	return reflect.TypeFor[TResponse]()
}

func (h *streamRequestHandlerFunc[TRequest, TResponse]) Handle(ctx context.Context, req any) (rawStream, error) {
	typed, ok := req.(TRequest)
	if !ok {
		return nil, typeMismatch("stream request handler", reflect.TypeFor[TRequest](), req)
	}
	stream, err := h.fn(ctx, typed)
	if err != nil {
		return nil, err
	}
	return eraseStream(stream), nil
}

type notificationHandlerFunc[T any] struct {
	fn func(context.Context, T) error
}

// NewNotificationHandler adapts a concretely-typed function into a
// type-erased NotificationHandler.
func NewNotificationHandler[T any](fn func(context.Context, T) error) NotificationHandler {
	return &notificationHandlerFunc[T]{fn: fn}
}

func (h *notificationHandlerFunc[T]) NotificationType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (h *notificationHandlerFunc[T]) Handle(ctx context.Context, n any) error {
	typed, ok := n.(T)
	if !ok {
		return typeMismatch("notification handler", reflect.TypeFor[T](), n)
	}
	return h.fn(ctx, typed)
}

type preProcessorFunc[TRequest any] struct {
	fn func(context.Context, TRequest) error
}

// NewPreProcessor adapts a concretely-typed function into a type-erased PreProcessor.
func NewPreProcessor[TRequest any](fn func(context.Context, TRequest) error) PreProcessor {
	return &preProcessorFunc[TRequest]{fn: fn}
}

func (p *preProcessorFunc[TRequest]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (p *preProcessorFunc[TRequest]) Process(ctx context.Context, req any) error {
	typed, ok := req.(TRequest)
	if !ok {
		return typeMismatch("pre-processor", reflect.TypeFor[TRequest](), req)
	}
	return p.fn(ctx, typed)
}

type postProcessorFunc[TRequest any, TResponse any] struct {
	fn func(context.Context, TRequest, TResponse) error
}

// NewPostProcessor adapts a concretely-typed function into a type-erased PostProcessor.
func NewPostProcessor[TRequest any, TResponse any](fn func(context.Context, TRequest, TResponse) error) PostProcessor {
	return &postProcessorFunc[TRequest, TResponse]{fn: fn}
}

func (p *postProcessorFunc[TRequest, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (p *postProcessorFunc[TRequest, TResponse]) ResponseType() reflect.Type {
	return reflect.TypeFor[TResponse]()
}

func (p *postProcessorFunc[TRequest, TResponse]) Process(ctx context.Context, req any, resp any) error {
	typedReq, ok := req.(TRequest)
	if !ok {
		return typeMismatch("post-processor", reflect.TypeFor[TRequest](), req)
	}
	typedResp, ok := resp.(TResponse)
	if !ok {
		return typeMismatch("post-processor response", reflect.TypeFor[TResponse](), resp)
	}
	return p.fn(ctx, typedReq, typedResp)
}

type requestMiddlewareFunc[TRequest any, TResponse any] struct {
	fn func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (TResponse, error)) (TResponse, error)
}

// NewRequestMiddleware adapts a concretely-typed middleware function into
// a type-erased RequestMiddleware.
func NewRequestMiddleware[TRequest any, TResponse any](
	fn func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (TResponse, error)) (TResponse, error),
) RequestMiddleware {
	return &requestMiddlewareFunc[TRequest, TResponse]{fn: fn}
}

func (m *requestMiddlewareFunc[TRequest, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (m *requestMiddlewareFunc[TRequest, TResponse]) ResponseType() reflect.Type {
	return reflect.TypeFor[TResponse]()
}

func (m *requestMiddlewareFunc[TRequest, TResponse]) Handle(ctx context.Context, req any, next RequestHandlerFunc) (any, error) {
	typed, ok := req.(TRequest)
	if !ok {
		var zero TResponse
		return zero, typeMismatch("request middleware", reflect.TypeFor[TRequest](), req)
	}
	typedNext := func(ctx context.Context, req TRequest) (TResponse, error) {
		resp, err := next(ctx, req)
		if err != nil {
			var zero TResponse
			return zero, err
		}
		typedResp, ok := resp.(TResponse)
		if !ok {
			var zero TResponse
			return zero, typeMismatch("request middleware next response", reflect.TypeFor[TResponse](), resp)
		}
		return typedResp, nil
	}
	return m.fn(ctx, typed, typedNext)
}

type streamMiddlewareFunc[TRequest any, TResponse any] struct {
	fn func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (Stream[TResponse], error)) (Stream[TResponse], error)
}

// NewStreamMiddleware adapts a concretely-typed stream middleware function
// into a type-erased StreamMiddleware.
func NewStreamMiddleware[TRequest any, TResponse any](
	fn func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (Stream[TResponse], error)) (Stream[TResponse], error),
) StreamMiddleware {
	return &streamMiddlewareFunc[TRequest, TResponse]{fn: fn}
}

func (m *streamMiddlewareFunc[TRequest, TResponse]) RequestType() reflect.Type {
	return reflect.TypeFor[TRequest]()
}

func (m *streamMiddlewareFunc[TRequest, TResponse]) ResponseType() reflect.Type {
	return reflect.TypeFor[TResponse]()
}

func (m *streamMiddlewareFunc[TRequest, TResponse]) Handle(ctx context.Context, req any, next StreamHandlerFunc) (rawStream, error) {
	typed, ok := req.(TRequest)
	if !ok {
		return nil, typeMismatch("stream middleware", reflect.TypeFor[TRequest](), req)
	}
	typedNext := func(ctx context.Context, req TRequest) (Stream[TResponse], error) {
		raw, err := next(ctx, req)
		if err != nil {
			return Stream[TResponse]{}, err
		}
		return typeStream[TResponse](raw), nil
	}
	result, err := m.fn(ctx, typed, typedNext)
	if err != nil {
		return nil, err
	}
	return eraseStream(result), nil
}
