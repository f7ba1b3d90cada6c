package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/corewire/dispatch/core/dispatch"
)

// Registry is a concrete dispatch.Locator. The zero value is not usable;
// construct one with New.
type Registry struct {
	mu sync.RWMutex

	requestHandlers       map[reflect.Type]dispatch.RequestHandler
	voidRequestHandlers   map[reflect.Type]dispatch.VoidRequestHandler
	streamRequestHandlers map[reflect.Type]dispatch.StreamRequestHandler

	notificationHandlers map[reflect.Type][]dispatch.NotificationHandler

	preProcessors  map[reflect.Type][]dispatch.PreProcessor
	postProcessors map[reflect.Type][]dispatch.PostProcessor

	requestMiddlewares map[reflect.Type][]dispatch.RequestMiddleware
	streamMiddlewares  map[reflect.Type][]dispatch.StreamMiddleware

	exceptionHandlers       map[reflect.Type][]dispatch.ExceptionHandler
	exceptionActions        map[reflect.Type][]dispatch.ExceptionAction
	streamExceptionHandlers map[reflect.Type][]dispatch.StreamExceptionHandler
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		requestHandlers:         make(map[reflect.Type]dispatch.RequestHandler),
		voidRequestHandlers:     make(map[reflect.Type]dispatch.VoidRequestHandler),
		streamRequestHandlers:   make(map[reflect.Type]dispatch.StreamRequestHandler),
		notificationHandlers:    make(map[reflect.Type][]dispatch.NotificationHandler),
		preProcessors:           make(map[reflect.Type][]dispatch.PreProcessor),
		postProcessors:          make(map[reflect.Type][]dispatch.PostProcessor),
		requestMiddlewares:      make(map[reflect.Type][]dispatch.RequestMiddleware),
		streamMiddlewares:       make(map[reflect.Type][]dispatch.StreamMiddleware),
		exceptionHandlers:       make(map[reflect.Type][]dispatch.ExceptionHandler),
		exceptionActions:        make(map[reflect.Type][]dispatch.ExceptionAction),
		streamExceptionHandlers: make(map[reflect.Type][]dispatch.StreamExceptionHandler),
	}
}

// RegisterRequestHandler registers the handler for a request-with-response
// type. First wins: a later registration for an already-registered type is
// silently ignored, enforcing single-handler cardinality at lookup time
// without rejecting otherwise-valid registration calls.
func RegisterRequestHandler(r *Registry, h dispatch.RequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := h.RequestType()
	if _, exists := r.requestHandlers[t]; exists {
		return
	}
	r.requestHandlers[t] = h
}

// RegisterVoidRequestHandler registers the handler for a void-request
// type. First wins, matching RegisterRequestHandler.
func RegisterVoidRequestHandler(r *Registry, h dispatch.VoidRequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := h.RequestType()
	if _, exists := r.voidRequestHandlers[t]; exists {
		return
	}
	r.voidRequestHandlers[t] = h
}

// RegisterStreamRequestHandler registers the handler for a stream-request
// type. First wins, matching RegisterRequestHandler.
func RegisterStreamRequestHandler(r *Registry, h dispatch.StreamRequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := h.RequestType()
	if _, exists := r.streamRequestHandlers[t]; exists {
		return
	}
	r.streamRequestHandlers[t] = h
}

// RegisterNotificationHandler adds a handler for a notification type.
// Any number may be registered; they run in registration order.
func RegisterNotificationHandler(r *Registry, h dispatch.NotificationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := h.NotificationType()
	r.notificationHandlers[t] = append(r.notificationHandlers[t], h)
}

// RegisterPreProcessor adds a pre-processor for a request type.
func RegisterPreProcessor(r *Registry, p dispatch.PreProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := p.RequestType()
	r.preProcessors[t] = append(r.preProcessors[t], p)
}

// RegisterPostProcessor adds a post-processor for a request type.
func RegisterPostProcessor(r *Registry, p dispatch.PostProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := p.RequestType()
	r.postProcessors[t] = append(r.postProcessors[t], p)
}

// RegisterRequestMiddleware adds middleware for a request type. The
// first one registered is the outermost layer of the pipeline.
func RegisterRequestMiddleware(r *Registry, m dispatch.RequestMiddleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := m.RequestType()
	r.requestMiddlewares[t] = append(r.requestMiddlewares[t], m)
}

// RegisterStreamMiddleware adds middleware for a stream-request type.
func RegisterStreamMiddleware(r *Registry, m dispatch.StreamMiddleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := m.RequestType()
	r.streamMiddlewares[t] = append(r.streamMiddlewares[t], m)
}

// RegisterExceptionHandler adds an exception handler for a request type.
func RegisterExceptionHandler(r *Registry, h dispatch.ExceptionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := h.RequestType()
	r.exceptionHandlers[t] = append(r.exceptionHandlers[t], h)
}

// RegisterExceptionAction adds an exception action for a request type.
func RegisterExceptionAction(r *Registry, a dispatch.ExceptionAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := a.RequestType()
	r.exceptionActions[t] = append(r.exceptionActions[t], a)
}

// RegisterStreamExceptionHandler adds a stream exception handler for a
// request type.
func RegisterStreamExceptionHandler(r *Registry, h dispatch.StreamExceptionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := h.RequestType()
	r.streamExceptionHandlers[t] = append(r.streamExceptionHandlers[t], h)
}

// --- dispatch.Locator ----------------------------------------------

func (r *Registry) RequestHandler(reqType reflect.Type) (dispatch.RequestHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.requestHandlers[reqType]
	if !ok {
		return nil, fmt.Errorf("registry: no request handler registered for %s", reqType)
	}
	return h, nil
}

func (r *Registry) VoidRequestHandler(reqType reflect.Type) (dispatch.VoidRequestHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.voidRequestHandlers[reqType]
	if !ok {
		return nil, fmt.Errorf("registry: no void request handler registered for %s", reqType)
	}
	return h, nil
}

func (r *Registry) StreamRequestHandler(reqType reflect.Type) (dispatch.StreamRequestHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.streamRequestHandlers[reqType]
	if !ok {
		return nil, fmt.Errorf("registry: no stream request handler registered for %s", reqType)
	}
	return h, nil
}

func (r *Registry) NotificationHandlers(notificationType reflect.Type) ([]dispatch.NotificationHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notificationHandlers[notificationType], nil
}

func (r *Registry) PreProcessors(reqType reflect.Type) ([]dispatch.PreProcessor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.preProcessors[reqType], nil
}

func (r *Registry) PostProcessors(reqType reflect.Type) ([]dispatch.PostProcessor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.postProcessors[reqType], nil
}

func (r *Registry) RequestMiddlewares(reqType reflect.Type) ([]dispatch.RequestMiddleware, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.requestMiddlewares[reqType], nil
}

func (r *Registry) StreamMiddlewares(reqType reflect.Type) ([]dispatch.StreamMiddleware, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streamMiddlewares[reqType], nil
}

func (r *Registry) ExceptionHandlers(reqType reflect.Type) ([]dispatch.ExceptionHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exceptionHandlers[reqType], nil
}

func (r *Registry) ExceptionActions(reqType reflect.Type) ([]dispatch.ExceptionAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exceptionActions[reqType], nil
}

func (r *Registry) StreamExceptionHandlers(reqType reflect.Type) ([]dispatch.StreamExceptionHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streamExceptionHandlers[reqType], nil
}

var _ dispatch.Locator = (*Registry)(nil)
