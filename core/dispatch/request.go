package dispatch

import (
	"context"
	"reflect"

	"github.com/corewire/dispatch/pkg/dispatchlog"
)

// Send dispatches a request-with-response message of type TRequest
// through its pre-processor, middleware, handler and post-processor
// pipeline and returns the handler's response. TResponse is supplied
// explicitly at the call site; TRequest is inferred from req.
func Send[TResponse any, TRequest any](ctx context.Context, facade *Facade, req TRequest) (TResponse, error) {
	var zero TResponse
	if facade == nil {
		return zero, invalidArgument("facade must not be nil")
	}
	if any(req) == nil {
		return zero, invalidArgument("request must not be nil")
	}

	reqType := reflect.TypeFor[TRequest]()
	ctx = withDispatchMeta(ctx, reqType.String())
	facade.stats.requests.Add(1)
	facade.logger.DebugContext(ctx, "dispatching request",
		dispatchlog.Message(reqType.String()), dispatchlog.CorrelationID(DispatchID(ctx)))

	inv, err := facade.requestInvokers.get(ctx, facade.locator, facade.logger, reqType)
	if err != nil {
		facade.logger.DebugContext(ctx, "dispatch table miss", dispatchlog.Message(reqType.String()), dispatchlog.Error(err))
		return zero, err
	}
	resp, err := inv.invoke(ctx, facade.locator, facade.logger, req)
	if err != nil {
		facade.logger.ErrorContext(ctx, "request dispatch failed",
			dispatchlog.Message(reqType.String()), dispatchlog.Error(err))
		return zero, err
	}
	typed, ok := resp.(TResponse)
	if !ok {
		return zero, noDispatchShape("handler response type does not match the requested TResponse")
	}
	return typed, nil
}

// SendVoid dispatches a void-request message of type TRequest. It
// shares Send's pipeline and exception-recovery semantics; internally
// the response type is Unit.
func SendVoid[TRequest any](ctx context.Context, facade *Facade, req TRequest) error {
	if facade == nil {
		return invalidArgument("facade must not be nil")
	}
	if any(req) == nil {
		return invalidArgument("request must not be nil")
	}

	reqType := reflect.TypeFor[TRequest]()
	ctx = withDispatchMeta(ctx, reqType.String())
	facade.stats.voidRequests.Add(1)
	facade.logger.DebugContext(ctx, "dispatching void request",
		dispatchlog.Message(reqType.String()), dispatchlog.CorrelationID(DispatchID(ctx)))

	inv, err := facade.voidInvokers.get(ctx, facade.locator, facade.logger, reqType)
	if err != nil {
		facade.logger.DebugContext(ctx, "dispatch table miss", dispatchlog.Message(reqType.String()), dispatchlog.Error(err))
		return err
	}
	_, err = inv.invoke(ctx, facade.locator, facade.logger, req)
	if err != nil {
		facade.logger.ErrorContext(ctx, "void request dispatch failed",
			dispatchlog.Message(reqType.String()), dispatchlog.Error(err))
	}
	return err
}
