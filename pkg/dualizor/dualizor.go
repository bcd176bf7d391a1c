// Package dualizor is the composition entry point: it populates the
// registration catalog from options, runs discovery and startup
// validation, freezes the catalog, and wires the dispatch engine and
// notification publisher over a service registry.
package dualizor

import (
	"context"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/catalog"
	"github.com/dualizor/dualizor/pkg/mediator"
	"github.com/dualizor/dualizor/pkg/registry"
	"github.com/dualizor/dualizor/pkg/types"
)

// Dualizor is a composed dispatch engine and notification publisher
// over a frozen catalog.
type Dualizor struct {
	catalog   *catalog.Catalog
	provider  *registry.Provider
	mediator  *mediator.Mediator
	publisher *mediator.Publisher
	logger    *logger.Logger
}

// New composes a Dualizor from options. Registration order is fixed:
// manual registrations, then discovery, then validation, then freeze.
// With validation in throw mode a defective registration graph fails
// here, before any dispatch can occur.
func New(opts *Options) (*Dualizor, error) {
	if opts == nil {
		opts = NewOptions()
	}

	log := opts.Logger
	if log == nil {
		var err error
		log, err = logger.NewDefault()
		if err != nil {
			return nil, types.WrapError(types.ErrCodeInternal, "failed to create default logger", err)
		}
	}

	cat := catalog.New(log)

	// Manual registrations first; they are never overwritten.
	for _, b := range opts.Handlers {
		b.Source = catalog.SourceManual
		if err := cat.RegisterHandler(b); err != nil {
			return nil, err
		}
	}
	for _, b := range opts.Behaviors {
		b.Source = catalog.SourceManual
		if err := cat.RegisterBehavior(b); err != nil {
			return nil, err
		}
	}
	for _, b := range opts.NotificationHandlers {
		b.Source = catalog.SourceManual
		if err := cat.RegisterNotificationHandler(b); err != nil {
			return nil, err
		}
	}
	if err := cat.Discover(opts.Declared, catalog.DiscoveryFlags{}); err != nil {
		return nil, err
	}

	// Discovery second, gated per category.
	flags := catalog.DiscoveryFlags{
		Handlers:      opts.RegisterDiscoveredHandlers,
		Behaviors:     opts.RegisterDiscoveredBehaviors,
		Notifications: opts.RegisterDiscoveredNotificationHandlers,
	}
	if err := cat.Discover(opts.Discovery, flags); err != nil {
		return nil, err
	}

	// Validation third.
	if opts.EnableStartupValidation {
		if err := catalog.Validate(cat, opts.StartupValidationMode, log); err != nil {
			return nil, err
		}
	}

	// Freeze, then provision the registry from the frozen catalog.
	cat.Freeze()

	provider := registry.NewProvider(log)
	if err := provision(cat, provider); err != nil {
		return nil, err
	}
	provider.Close()

	m, err := mediator.New(cat, provider, log)
	if err != nil {
		return nil, err
	}

	p, err := mediator.NewPublisher(cat, provider, log)
	if err != nil {
		return nil, err
	}

	return &Dualizor{
		catalog:   cat,
		provider:  provider,
		mediator:  m,
		publisher: p,
		logger:    log.With("component", "dualizor"),
	}, nil
}

// provision registers every catalog binding's factory with the
// service registry.
func provision(cat *catalog.Catalog, provider *registry.Provider) error {
	for _, t := range cat.RequestTypes() {
		for _, b := range cat.Bindings(t) {
			if err := provider.Register(b.Key, normalizeLifetime(b.Lifetime), b.Factory); err != nil {
				return err
			}
		}
	}

	for _, b := range cat.Behaviors() {
		if err := provider.Register(b.Key, normalizeLifetime(b.Lifetime), b.Factory); err != nil {
			return err
		}
	}

	for _, t := range cat.NotificationTypes() {
		for _, b := range cat.NotificationBindings(t) {
			if err := provider.Register(b.Key, normalizeLifetime(b.Lifetime), b.Factory); err != nil {
				return err
			}
		}
	}

	return nil
}

func normalizeLifetime(l registry.Lifetime) registry.Lifetime {
	if l == "" {
		return registry.Singleton
	}
	return l
}

// Send dispatches a request through the behavior chain to its handler
func (d *Dualizor) Send(ctx context.Context, req types.Request) (any, error) {
	return d.mediator.Send(ctx, req)
}

// Publish fans a notification out to all bound handlers
func (d *Dualizor) Publish(ctx context.Context, n types.Notification) error {
	return d.publisher.Publish(ctx, n)
}

// Mediator returns the dispatch engine
func (d *Dualizor) Mediator() *mediator.Mediator {
	return d.mediator
}

// Publisher returns the notification publisher
func (d *Dualizor) Publisher() *mediator.Publisher {
	return d.publisher
}

// Catalog returns the frozen registration catalog
func (d *Dualizor) Catalog() *catalog.Catalog {
	return d.catalog
}

// Registry returns the service registry instances resolve through
func (d *Dualizor) Registry() *registry.Provider {
	return d.provider
}

// Send dispatches a request through a composed Dualizor and asserts
// the response to T.
func Send[T any](ctx context.Context, d *Dualizor, req types.Request) (T, error) {
	return mediator.Send[T](ctx, d.mediator, req)
}
