package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// HealthCheck is a named liveness probe a host application registers
// against the Facade, typically one per downstream dependency a
// handler relies on (a database pool, a cache, a message broker).
type HealthCheck func(ctx context.Context) error

// Stats is a snapshot of how many dispatches of each shape a Facade has
// served since construction.
type Stats struct {
	Requests      int64
	VoidRequests  int64
	Streams       int64
	Notifications int64
}

type facadeStats struct {
	requests      atomic.Int64
	voidRequests  atomic.Int64
	streams       atomic.Int64
	notifications atomic.Int64
}

// Facade is the single entry point application code dispatches
// messages through. It owns the invoker caches (C2), the active
// PublisherStrategy, and the logger and health checks every dispatch is
// observed through. A Facade is safe for concurrent use.
type Facade struct {
	locator Locator

	requestInvokers *invokerCache[requestInvoker]
	voidInvokers    *invokerCache[requestInvoker]
	streamInvokers  *invokerCache[streamInvoker]

	publisher PublisherStrategy
	logger    *slog.Logger

	healthChecks map[string]HealthCheck
	stats        *facadeStats
}

// FacadeOption configures a Facade at construction time.
type FacadeOption func(*Facade)

// WithPublisherStrategy overrides the default Sequential notification
// strategy.
func WithPublisherStrategy(strategy PublisherStrategy) FacadeOption {
	return func(f *Facade) { f.publisher = strategy }
}

// WithLogger overrides the default no-op logger.
func WithLogger(logger *slog.Logger) FacadeOption {
	return func(f *Facade) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithHealthCheck registers a named health check, reachable through
// Facade.Healthcheck.
func WithHealthCheck(name string, check HealthCheck) FacadeOption {
	return func(f *Facade) { f.healthChecks[name] = check }
}

// NewFacade builds a Facade over locator. locator must not be nil.
func NewFacade(locator Locator, opts ...FacadeOption) (*Facade, error) {
	if locator == nil {
		return nil, invalidArgument("locator must not be nil")
	}
	f := &Facade{
		locator:         locator,
		requestInvokers: newRequestInvokerCache(),
		voidInvokers:    newVoidInvokerCache(),
		streamInvokers:  newStreamInvokerCache(),
		publisher:       Sequential{},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		healthChecks:    make(map[string]HealthCheck),
		stats:           &facadeStats{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Healthcheck runs every registered HealthCheck concurrently and
// returns the first failure, prefixed with the check's name. A Facade
// with no registered checks is always healthy.
func (f *Facade) Healthcheck(ctx context.Context) error {
	if len(f.healthChecks) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for name, check := range f.healthChecks {
		name, check := name, check
		g.Go(func() error {
			if err := check(gctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Stats returns a snapshot of dispatch counts since construction.
func (f *Facade) Stats() Stats {
	return Stats{
		Requests:      f.stats.requests.Load(),
		VoidRequests:  f.stats.voidRequests.Load(),
		Streams:       f.stats.streams.Load(),
		Notifications: f.stats.notifications.Load(),
	}
}
