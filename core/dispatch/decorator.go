package dispatch

import (
	"context"
	"fmt"
	"time"
)

// This file adapts the command package's handler decorators
// (WithTimeout/WithRetry) into RequestMiddleware, since middleware is
// where cross-cutting concerns like these belong in the pipeline; it
// adds WithRecover, which the original decorators did not need because
// command handlers ran directly on the caller's goroutine.

// WithTimeout returns a RequestMiddleware that enforces a maximum
// execution time on the wrapped handler, canceling its context if it is
// exceeded.
func WithTimeout[TRequest any, TResponse any](timeout time.Duration) RequestMiddleware {
	return NewRequestMiddleware(func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (TResponse, error)) (TResponse, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type result struct {
			resp TResponse
			err  error
		}
		resultCh := make(chan result, 1)
		go func() {
			resp, err := next(ctx, req)
			resultCh <- result{resp, err}
		}()

		select {
		case r := <-resultCh:
			return r.resp, r.err
		case <-ctx.Done():
			var zero TResponse
			return zero, fmt.Errorf("handler timeout after %s: %w", timeout, ctx.Err())
		}
	})
}

// WithRetry returns a RequestMiddleware that retries the wrapped handler
// on error up to maxRetries times, returning the last error wrapped if
// every attempt fails.
func WithRetry[TRequest any, TResponse any](maxRetries int) RequestMiddleware {
	return NewRequestMiddleware(func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (TResponse, error)) (TResponse, error) {
		var lastErr error
		var zero TResponse
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 && ctx.Err() != nil {
				return zero, ctx.Err()
			}
			resp, err := next(ctx, req)
			if err == nil {
				return resp, nil
			}
			lastErr = err
		}
		return zero, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
	})
}

// WithRecover returns a RequestMiddleware that converts a panic inside
// the wrapped handler into an error instead of crashing the dispatching
// goroutine.
func WithRecover[TRequest any, TResponse any]() RequestMiddleware {
	return NewRequestMiddleware(func(ctx context.Context, req TRequest, next func(context.Context, TRequest) (TResponse, error)) (resp TResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panicked: %v", r)
			}
		}()
		return next(ctx, req)
	})
}
