package dispatch

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/corewire/dispatch/pkg/dispatchlog"
)

// requestInvoker is the cached, fully-composed pipeline for one concrete
// request type: pre-processors, middleware and the handler, wired once
// at build time, plus exception recovery on every call.
type requestInvoker struct {
	reqType reflect.Type
	call    func(context.Context, any) (any, error)
}

func (inv *requestInvoker) invoke(ctx context.Context, locator Locator, logger *slog.Logger, req any) (any, error) {
	resp, err := inv.call(ctx, req)
	if err == nil {
		return resp, nil
	}
	if recovered, ok := processRequestException(ctx, locator, logger, inv.reqType, req, err); ok {
		return recovered, nil
	}
	return nil, err
}

// streamInvoker is the cached, fully-composed pipeline for one concrete
// stream-request type. It performs no exception handling itself — that
// happens per-element in runStreamWithRecovery, since a stream can fail
// and recover mid-iteration, long after invoke returns.
type streamInvoker struct {
	call func(context.Context, any) (rawStream, error)
}

func (inv *streamInvoker) invoke(ctx context.Context, req any) (rawStream, error) {
	return inv.call(ctx, req)
}

// invokerCache is a reflection-free, never-evicted cache of compiled
// invokers keyed by the concrete runtime message type: the one-time
// reflect.Type lookup and Locator resolution happen on the first
// dispatch of a given type; every subsequent dispatch of that type goes
// straight to the cached closure with no further reflection or locator
// round-trip for the handler/middleware/processor set itself.
type invokerCache[V any] struct {
	entries sync.Map // reflect.Type -> *V
	build   func(Locator, reflect.Type) (*V, error)
}

func newInvokerCache[V any](build func(Locator, reflect.Type) (*V, error)) *invokerCache[V] {
	return &invokerCache[V]{build: build}
}

func (c *invokerCache[V]) get(ctx context.Context, locator Locator, logger *slog.Logger, reqType reflect.Type) (*V, error) {
	if existing, ok := c.entries.Load(reqType); ok {
		return existing.(*V), nil
	}
	start := time.Now()
	built, err := c.build(locator, reqType)
	if err != nil {
		return nil, err
	}
	actual, loaded := c.entries.LoadOrStore(reqType, built)
	if !loaded {
		logger.DebugContext(ctx, "invoker cache build",
			dispatchlog.Message(reqType.String()), dispatchlog.Duration(time.Since(start)))
	}
	return actual.(*V), nil
}

func newRequestInvokerCache() *invokerCache[requestInvoker] {
	return newInvokerCache(func(locator Locator, reqType reflect.Type) (*requestInvoker, error) {
		call, err := composeRequestPipeline(locator, reqType)
		if err != nil {
			return nil, err
		}
		return &requestInvoker{reqType: reqType, call: call}, nil
	})
}

func newVoidInvokerCache() *invokerCache[requestInvoker] {
	return newInvokerCache(func(locator Locator, reqType reflect.Type) (*requestInvoker, error) {
		call, err := composeVoidPipeline(locator, reqType)
		if err != nil {
			return nil, err
		}
		return &requestInvoker{reqType: reqType, call: call}, nil
	})
}

func newStreamInvokerCache() *invokerCache[streamInvoker] {
	return newInvokerCache(func(locator Locator, reqType reflect.Type) (*streamInvoker, error) {
		call, err := composeStreamPipeline(locator, reqType)
		if err != nil {
			return nil, err
		}
		return &streamInvoker{call: call}, nil
	})
}
