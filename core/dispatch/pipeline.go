package dispatch

import (
	"context"
	"reflect"
)

// composeRequestPipeline resolves, once, every collaborator registered
// for reqType and nests them into a single callable:
//
//	pre-processors (registration order) -> middleware (onion, first
//	registered outermost) -> handler -> post-processors (registration
//	order, success only, inside the innermost middleware)
//
// A middleware that never calls next short-circuits the handler and
// every post-processor.
func composeRequestPipeline(locator Locator, reqType reflect.Type) (func(context.Context, any) (any, error), error) {
	handler, err := locator.RequestHandler(reqType)
	if err != nil {
		return nil, noHandler("request handler", reqType.String())
	}
	pre, err := locator.PreProcessors(reqType)
	if err != nil {
		return nil, err
	}
	post, err := locator.PostProcessors(reqType)
	if err != nil {
		return nil, err
	}
	mw, err := locator.RequestMiddlewares(reqType)
	if err != nil {
		return nil, err
	}

	var core RequestHandlerFunc = func(ctx context.Context, req any) (any, error) {
		resp, err := handler.Handle(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, p := range post {
			if err := p.Process(ctx, req, resp); err != nil {
				return nil, err
			}
		}
		return resp, nil
	}
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := core
		core = func(ctx context.Context, req any) (any, error) {
			return m.Handle(ctx, req, next)
		}
	}

	return func(ctx context.Context, req any) (any, error) {
		for _, p := range pre {
			if err := p.Process(ctx, req); err != nil {
				return nil, err
			}
		}
		return core(ctx, req)
	}, nil
}

// composeVoidPipeline mirrors composeRequestPipeline for void-request
// handlers: internally the response type is Unit throughout, so void
// dispatch can reuse every request-shaped collaborator (pre-processors,
// middleware, post-processors, exception handlers) unchanged.
func composeVoidPipeline(locator Locator, reqType reflect.Type) (func(context.Context, any) (any, error), error) {
	handler, err := locator.VoidRequestHandler(reqType)
	if err != nil {
		return nil, noHandler("void request handler", reqType.String())
	}
	pre, err := locator.PreProcessors(reqType)
	if err != nil {
		return nil, err
	}
	post, err := locator.PostProcessors(reqType)
	if err != nil {
		return nil, err
	}
	mw, err := locator.RequestMiddlewares(reqType)
	if err != nil {
		return nil, err
	}

	var core RequestHandlerFunc = func(ctx context.Context, req any) (any, error) {
		if err := handler.Handle(ctx, req); err != nil {
			return nil, err
		}
		for _, p := range post {
			if err := p.Process(ctx, req, Unit{}); err != nil {
				return nil, err
			}
		}
		return Unit{}, nil
	}
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := core
		core = func(ctx context.Context, req any) (any, error) {
			return m.Handle(ctx, req, next)
		}
	}

	return func(ctx context.Context, req any) (any, error) {
		for _, p := range pre {
			if err := p.Process(ctx, req); err != nil {
				return nil, err
			}
		}
		if _, err := core(ctx, req); err != nil {
			return nil, err
		}
		return Unit{}, nil
	}, nil
}

// composeStreamPipeline mirrors composeRequestPipeline for stream
// requests: pre-processors run once before the stream is produced,
// stream middleware nests onion-style around the handler, and there is
// no post-processor stage (no stream equivalent).
func composeStreamPipeline(locator Locator, reqType reflect.Type) (func(context.Context, any) (rawStream, error), error) {
	handler, err := locator.StreamRequestHandler(reqType)
	if err != nil {
		return nil, noHandler("stream request handler", reqType.String())
	}
	pre, err := locator.PreProcessors(reqType)
	if err != nil {
		return nil, err
	}
	mw, err := locator.StreamMiddlewares(reqType)
	if err != nil {
		return nil, err
	}

	var core StreamHandlerFunc = handler.Handle
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := core
		core = func(ctx context.Context, req any) (rawStream, error) {
			return m.Handle(ctx, req, next)
		}
	}

	return func(ctx context.Context, req any) (rawStream, error) {
		for _, p := range pre {
			if err := p.Process(ctx, req); err != nil {
				return nil, err
			}
		}
		return core(ctx, req)
	}, nil
}
