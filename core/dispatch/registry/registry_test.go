package registry_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/corewire/dispatch/core/dispatch"
	"github.com/corewire/dispatch/core/dispatch/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Ping struct{ Message string }
type ItemCreated struct{ ID string }

func TestRegisterRequestHandler_FirstWinsOnDuplicate(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) { return "first", nil },
	))
	registry.RegisterRequestHandler(reg, dispatch.NewRequestHandler(
		func(ctx context.Context, req Ping) (string, error) { return "second", nil },
	))

	h, err := reg.RequestHandler(reflect.TypeOf(Ping{}))
	require.NoError(t, err)
	resp, err := h.Handle(context.Background(), Ping{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp)
}

func TestRegisterVoidRequestHandler_FirstWinsOnDuplicate(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	var firstCalled, secondCalled bool
	registry.RegisterVoidRequestHandler(reg, dispatch.NewVoidRequestHandler(
		func(ctx context.Context, req Ping) error { firstCalled = true; return nil },
	))
	registry.RegisterVoidRequestHandler(reg, dispatch.NewVoidRequestHandler(
		func(ctx context.Context, req Ping) error { secondCalled = true; return nil },
	))

	h, err := reg.VoidRequestHandler(reflect.TypeOf(Ping{}))
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), Ping{}))
	assert.True(t, firstCalled)
	assert.False(t, secondCalled)
}

func TestRegisterStreamRequestHandler_FirstWinsOnDuplicate(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	registry.RegisterStreamRequestHandler(reg, dispatch.NewStreamRequestHandler(
		func(ctx context.Context, req Ping) (dispatch.Stream[string], error) {
			return dispatch.NewStream(func(yield func(string, error) bool) { yield("first", nil) }), nil
		},
	))
	registry.RegisterStreamRequestHandler(reg, dispatch.NewStreamRequestHandler(
		func(ctx context.Context, req Ping) (dispatch.Stream[string], error) {
			return dispatch.NewStream(func(yield func(string, error) bool) { yield("second", nil) }), nil
		},
	))

	h, err := reg.StreamRequestHandler(reflect.TypeOf(Ping{}))
	require.NoError(t, err)
	raw, err := h.Handle(context.Background(), Ping{})
	require.NoError(t, err)

	var got []string
	for v, err := range raw {
		require.NoError(t, err)
		s, ok := v.(string)
		require.True(t, ok)
		got = append(got, s)
	}
	assert.Equal(t, []string{"first"}, got)
}

func TestRegisterNotificationHandler_AllowsMultiple(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	registry.RegisterNotificationHandler(reg, dispatch.NewNotificationHandler(
		func(ctx context.Context, n ItemCreated) error { return nil },
	))
	registry.RegisterNotificationHandler(reg, dispatch.NewNotificationHandler(
		func(ctx context.Context, n ItemCreated) error { return nil },
	))

	handlers, err := reg.NotificationHandlers(reflect.TypeOf(ItemCreated{}))
	require.NoError(t, err)
	assert.Len(t, handlers, 2)
}

func TestUnregisteredType_ReturnsErrorForSingular(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	_, err := reg.RequestHandler(reflect.TypeOf(Ping{}))
	assert.Error(t, err)
}

func TestUnregisteredType_EmptyForPlural(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	handlers, err := reg.PreProcessors(reflect.TypeOf(Ping{}))
	require.NoError(t, err)
	assert.Empty(t, handlers)
}
