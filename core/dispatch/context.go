package dispatch

import (
	"context"

	"github.com/google/uuid"
)

type dispatchIDCtx struct{}

// WithDispatchID attaches a dispatch correlation id to the context.
// Send, SendVoid, Publish and Stream.All stamp a freshly generated id on
// entry, replacing any id already present; the request and notification
// paths log it on their "dispatching"/"publishing" Debug lines.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDCtx{}, id)
}

// DispatchID extracts the dispatch correlation id from the context.
// Returns empty string if not present.
func DispatchID(ctx context.Context) string {
	if id, ok := ctx.Value(dispatchIDCtx{}).(string); ok {
		return id
	}
	return ""
}

type messageNameCtx struct{}

func withMessageName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, messageNameCtx{}, name)
}

// MessageName extracts the concrete request/notification type name being
// processed from the context, for use in logging or metrics from within a
// handler, middleware or processor.
func MessageName(ctx context.Context) string {
	if name, ok := ctx.Value(messageNameCtx{}).(string); ok {
		return name
	}
	return ""
}

// withDispatchMeta stamps a freshly generated correlation id and the
// message type name onto ctx at the Facade boundary.
func withDispatchMeta(ctx context.Context, messageName string) context.Context {
	ctx = WithDispatchID(ctx, uuid.New().String())
	ctx = withMessageName(ctx, messageName)
	return ctx
}
