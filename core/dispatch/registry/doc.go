// Package registry provides a concrete, in-process dispatch.Locator for
// applications that do not already have their own DI container. It
// mirrors the host module's two registration disciplines: terminal
// handlers (request, void-request, stream-request) enforce single-handler
// cardinality first-wins — a later registration for an already-registered
// type is silently ignored rather than rejected — while every other
// collaborator (notification handlers, pre/post processors, middleware,
// exception handlers and actions) follows core/event's Processor — any
// number registered per type, invoked in registration order.
package registry
