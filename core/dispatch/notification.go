package dispatch

import (
	"context"
	"reflect"

	"github.com/corewire/dispatch/pkg/asyncutil"
	"github.com/corewire/dispatch/pkg/dispatchlog"
)

// PublisherStrategy controls how a notification's handlers are run.
// Notifications never go through the request pipeline: no pre/post
// processors, no middleware, no exception handlers or actions apply.
type PublisherStrategy interface {
	Publish(ctx context.Context, handlers []NotificationHandler, notification any) error
}

// Sequential runs notification handlers one at a time, in registration
// order, stopping at the first error.
type Sequential struct{}

func (Sequential) Publish(ctx context.Context, handlers []NotificationHandler, notification any) error {
	for _, h := range handlers {
		if err := h.Handle(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}

// Parallel starts every handler before awaiting any of them, then
// collects the first failure. Zero handlers and exactly one handler both
// skip the fan-out machinery entirely.
type Parallel struct{}

func (Parallel) Publish(ctx context.Context, handlers []NotificationHandler, notification any) error {
	switch len(handlers) {
	case 0:
		return nil
	case 1:
		return handlers[0].Handle(ctx, notification)
	}

	futures := make([]*asyncutil.Future, len(handlers))
	for i, h := range handlers {
		h := h
		futures[i] = asyncutil.Run(func() error {
			return h.Handle(ctx, notification)
		})
	}
	return asyncutil.WaitAll(futures...)
}

// Publish dispatches a notification of type TNotification to every
// handler resolved for that type under the Facade's PublisherStrategy.
// Zero registered handlers is not an error.
func Publish[TNotification any](ctx context.Context, facade *Facade, notification TNotification) error {
	if facade == nil {
		return invalidArgument("facade must not be nil")
	}
	if any(notification) == nil {
		return invalidArgument("notification must not be nil")
	}

	nType := reflect.TypeFor[TNotification]()
	ctx = withDispatchMeta(ctx, nType.String())
	facade.stats.notifications.Add(1)

	handlers, err := facade.locator.NotificationHandlers(nType)
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		facade.logger.DebugContext(ctx, "no notification handlers registered", dispatchlog.Message(nType.String()))
		return nil
	}

	facade.logger.DebugContext(ctx, "publishing notification",
		dispatchlog.Message(nType.String()), dispatchlog.CorrelationID(DispatchID(ctx)))

	err = facade.publisher.Publish(ctx, handlers, notification)
	if err != nil {
		facade.logger.ErrorContext(ctx, "notification publish failed",
			dispatchlog.Message(nType.String()), dispatchlog.Error(err))
	}
	return err
}
