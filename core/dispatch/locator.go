package dispatch

import "reflect"

// Locator resolves collaborators by the concrete runtime type of the
// message being dispatched. The host application owns the Locator — it
// is typically backed by the application's existing DI container — and
// the core never caches or registers handler instances on its own
// behalf beyond the invoker caches keyed by reflect.Type (C2). The
// registry subpackage provides a minimal, concrete implementation good
// enough for an application that has no DI container of its own.
//
// Every method returns (zero-value, error) when nothing is registered
// for the given type, except the plural-result methods, which return a
// nil (or empty) slice and no error — notifications, pre/post-processors,
// middleware, exception handlers and exception actions are all
// legitimately zero-or-more.
type Locator interface {
	RequestHandler(reqType reflect.Type) (RequestHandler, error)
	VoidRequestHandler(reqType reflect.Type) (VoidRequestHandler, error)
	StreamRequestHandler(reqType reflect.Type) (StreamRequestHandler, error)

	NotificationHandlers(notificationType reflect.Type) ([]NotificationHandler, error)

	PreProcessors(reqType reflect.Type) ([]PreProcessor, error)
	PostProcessors(reqType reflect.Type) ([]PostProcessor, error)

	RequestMiddlewares(reqType reflect.Type) ([]RequestMiddleware, error)
	StreamMiddlewares(reqType reflect.Type) ([]StreamMiddleware, error)

	ExceptionHandlers(reqType reflect.Type) ([]ExceptionHandler, error)
	ExceptionActions(reqType reflect.Type) ([]ExceptionAction, error)
	StreamExceptionHandlers(reqType reflect.Type) ([]StreamExceptionHandler, error)
}
