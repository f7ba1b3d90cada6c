package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corewire/dispatch/core/dispatch"
	"github.com/corewire/dispatch/core/dispatch/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout_FiresOnSlowHandler(t *testing.T) {
	t.Parallel()

	reg, facade := newFacade(t)
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) {
			select {
			case <-time.After(50 * time.Millisecond):
				return "too slow", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	))
	registry.RegisterRequestMiddleware(reg, dispatch.WithTimeout[Ping, string](5*time.Millisecond))

	_, err := dispatch.Send[string](context.Background(), facade, Ping{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	reg, facade := newFacade(t)
	attempts := 0
	boom := errors.New("transient")
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) {
			attempts++
			if attempts < 3 {
				return "", boom
			}
			return "ok", nil
		},
	))
	registry.RegisterRequestMiddleware(reg, dispatch.WithRetry[Ping, string](3))

	resp, err := dispatch.Send[string](context.Background(), facade, Ping{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	t.Parallel()

	reg, facade := newFacade(t)
	attempts := 0
	boom := errors.New("always fails")
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) {
			attempts++
			return "", boom
		},
	))
	registry.RegisterRequestMiddleware(reg, dispatch.WithRetry[Ping, string](2))

	_, err := dispatch.Send[string](context.Background(), facade, Ping{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts, "one initial attempt plus two retries")
}

func TestWithRecover_ConvertsPanicToError(t *testing.T) {
	t.Parallel()

	reg, facade := newFacade(t)
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) {
			panic("handler exploded")
		},
	))
	registry.RegisterRequestMiddleware(reg, dispatch.WithRecover[Ping, string]())

	_, err := dispatch.Send[string](context.Background(), facade, Ping{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler exploded")
}
