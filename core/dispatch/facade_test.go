package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/corewire/dispatch/core/dispatch"
	"github.com/corewire/dispatch/core/dispatch/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheck_NoChecksIsHealthy(t *testing.T) {
	t.Parallel()

	_, facade := newFacade(t)
	require.NoError(t, facade.Healthcheck(context.Background()))
}

func TestHealthcheck_AggregatesFirstFailure(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	boom := errors.New("database unreachable")
	facade, err := dispatch.NewFacade(reg,
		dispatch.WithHealthCheck("ok-dependency", func(ctx context.Context) error { return nil }),
		dispatch.WithHealthCheck("bad-dependency", func(ctx context.Context) error { return boom }),
	)
	require.NoError(t, err)

	err = facade.Healthcheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad-dependency")
}

func TestStats_IncrementsPerMessageShape(t *testing.T) {
	t.Parallel()

	reg, facade := newFacade(t)
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) { return "pong", nil },
	))
	registry.RegisterVoidRequestHandler(reg, dispatch.NewVoidRequestHandler(
		func(ctx context.Context, req Ping) error { return nil },
	))
	registry.RegisterStreamRequestHandler(reg, dispatch.NewStreamRequestHandler(
		func(ctx context.Context, req CountTo) (dispatch.Stream[int], error) {
			return dispatch.NewStream(func(yield func(int, error) bool) {}), nil
		},
	))
	registry.RegisterNotificationHandler(reg, dispatch.NewNotificationHandler(
		func(ctx context.Context, n ItemCreated) error { return nil },
	))

	_, err := dispatch.Send[string](context.Background(), facade, Ping{})
	require.NoError(t, err)
	require.NoError(t, dispatch.SendVoid(context.Background(), facade, Ping{}))
	stream, err := dispatch.CreateStream[int](context.Background(), facade, CountTo{N: 1})
	require.NoError(t, err)
	for range stream.All(context.Background()) {
	}
	require.NoError(t, dispatch.Publish(context.Background(), facade, ItemCreated{ID: "1"}))

	stats := facade.Stats()
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(1), stats.VoidRequests)
	assert.Equal(t, int64(1), stats.Streams)
	assert.Equal(t, int64(1), stats.Notifications)
}
