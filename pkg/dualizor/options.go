package dualizor

import (
	"context"
	"reflect"

	"github.com/dualizor/dualizor/internal/config"
	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/catalog"
	"github.com/dualizor/dualizor/pkg/mediator"
	"github.com/dualizor/dualizor/pkg/registry"
	"github.com/dualizor/dualizor/pkg/types"
)

// Options configures composition. Manual registrations are applied
// first, discovery candidates second (per-category flag-gated, never
// overriding a manually bound type), validation third, then the
// catalog freezes.
type Options struct {
	// EnableStartupValidation runs the startup validator when true
	EnableStartupValidation bool

	// StartupValidationMode governs the reaction to registration defects
	StartupValidationMode catalog.ValidationMode

	// Per-category discovery gates
	RegisterDiscoveredHandlers             bool
	RegisterDiscoveredBehaviors            bool
	RegisterDiscoveredNotificationHandlers bool

	// Logger used by every composed component. Defaults to the
	// package default logger when nil.
	Logger *logger.Logger

	// Manual registrations, populated through the Register* helpers
	Handlers             []catalog.HandlerBinding
	Behaviors            []catalog.BehaviorBinding
	NotificationHandlers []catalog.NotificationBinding
	Declared             []catalog.Candidate

	// Discovery is the host-supplied candidate enumeration, populated
	// through the Discover* helpers or a code-generated list.
	Discovery []catalog.Candidate
}

// NewOptions returns options with default settings: validation enabled
// in throw mode, all discovery categories enabled.
func NewOptions() *Options {
	return &Options{
		EnableStartupValidation:                true,
		StartupValidationMode:                  catalog.ModeThrow,
		RegisterDiscoveredHandlers:             true,
		RegisterDiscoveredBehaviors:            true,
		RegisterDiscoveredNotificationHandlers: true,
	}
}

// OptionsFromConfig maps a dispatch configuration section onto options
func OptionsFromConfig(cfg config.DispatchConfig) (*Options, error) {
	mode, err := catalog.ParseValidationMode(cfg.StartupValidationMode)
	if err != nil {
		return nil, err
	}

	o := NewOptions()
	o.EnableStartupValidation = cfg.EnableStartupValidation
	o.StartupValidationMode = mode
	o.RegisterDiscoveredHandlers = cfg.DiscoverHandlers
	o.RegisterDiscoveredBehaviors = cfg.DiscoverBehaviors
	o.RegisterDiscoveredNotificationHandlers = cfg.DiscoverNotifications
	return o, nil
}

// RegisterHandler manually binds a handler instance to request type R.
// Manual bindings always take precedence over discovery.
func RegisterHandler[R types.Request, T any](o *Options, name string, h mediator.Handler[R, T]) {
	o.Handlers = append(o.Handlers, handlerBinding[R, T](name, registry.Singleton,
		func() (mediator.Handler[R, T], error) { return h, nil }))
}

// RegisterHandlerFunc manually binds a handler function to request type R
func RegisterHandlerFunc[R types.Request, T any](o *Options, name string, fn func(ctx context.Context, req R) (T, error)) {
	adapted := mediator.TypedFunc[R, T](fn)
	rt := mediator.RequestTypeOf[R]()
	o.Handlers = append(o.Handlers, catalog.HandlerBinding{
		RequestType: rt,
		Key:         catalog.HandlerKey(rt, name),
		Lifetime:    registry.Singleton,
		Factory:     func() (any, error) { return adapted, nil },
		Source:      catalog.SourceManual,
	})
}

// RegisterHandlerFactory manually binds a handler factory to request
// type R. Use registry.Transient for request-scoped handler instances.
func RegisterHandlerFactory[R types.Request, T any](o *Options, name string, lifetime registry.Lifetime, factory func() (mediator.Handler[R, T], error)) {
	o.Handlers = append(o.Handlers, handlerBinding[R, T](name, lifetime, factory))
}

// RegisterBehavior manually registers a behavior applying to every
// request type. Lower orders run outermost.
func RegisterBehavior(o *Options, name string, order int, b types.Behavior) {
	o.Behaviors = append(o.Behaviors, behaviorBinding(name, order, b, nil))
}

// RegisterBehaviorFor manually registers a behavior constrained to
// request type R.
func RegisterBehaviorFor[R types.Request](o *Options, name string, order int, b types.Behavior) {
	rt := mediator.RequestTypeOf[R]()
	o.Behaviors = append(o.Behaviors, behaviorBinding(name, order, b,
		func(t reflect.Type) bool { return t == rt }))
}

// RegisterNotificationHandler manually binds a notification handler to
// notification type N. Many handlers per type are permitted.
func RegisterNotificationHandler[N types.Notification](o *Options, name string, h types.NotificationHandler) {
	o.NotificationHandlers = append(o.NotificationHandlers, notificationBinding[N](name, h))
}

// RegisterNotificationFunc manually binds a typed notification handler
// function to notification type N.
func RegisterNotificationFunc[N types.Notification](o *Options, name string, fn func(ctx context.Context, n N) error) {
	o.NotificationHandlers = append(o.NotificationHandlers,
		notificationBinding[N](name, mediator.TypedNotificationFunc[N](fn)))
}

// DeclareRequest records request type R without binding a handler.
// Declared types participate in startup validation.
func DeclareRequest[R types.Request](o *Options) {
	o.Declared = append(o.Declared, catalog.Candidate{Request: mediator.RequestTypeOf[R]()})
}

// DiscoverHandler adds a handler candidate to the discovery set. It is
// only applied when handler discovery is enabled and the request type
// has no manual binding.
func DiscoverHandler[R types.Request, T any](o *Options, name string, h mediator.Handler[R, T]) {
	b := handlerBinding[R, T](name, registry.Singleton,
		func() (mediator.Handler[R, T], error) { return h, nil })
	o.Discovery = append(o.Discovery, catalog.Candidate{Handler: &b})
}

// DiscoverHandlerFunc adds a handler function candidate to the discovery set
func DiscoverHandlerFunc[R types.Request, T any](o *Options, name string, fn func(ctx context.Context, req R) (T, error)) {
	adapted := mediator.TypedFunc[R, T](fn)
	rt := mediator.RequestTypeOf[R]()
	b := catalog.HandlerBinding{
		RequestType: rt,
		Key:         catalog.HandlerKey(rt, name),
		Lifetime:    registry.Singleton,
		Factory:     func() (any, error) { return adapted, nil },
	}
	o.Discovery = append(o.Discovery, catalog.Candidate{Handler: &b})
}

// DiscoverBehavior adds a behavior candidate to the discovery set
func DiscoverBehavior(o *Options, name string, order int, b types.Behavior) {
	binding := behaviorBinding(name, order, b, nil)
	o.Discovery = append(o.Discovery, catalog.Candidate{Behavior: &binding})
}

// DiscoverNotificationHandler adds a notification handler candidate to
// the discovery set.
func DiscoverNotificationHandler[N types.Notification](o *Options, name string, h types.NotificationHandler) {
	b := notificationBinding[N](name, h)
	o.Discovery = append(o.Discovery, catalog.Candidate{Notification: &b})
}

func handlerBinding[R types.Request, T any](name string, lifetime registry.Lifetime, factory func() (mediator.Handler[R, T], error)) catalog.HandlerBinding {
	rt := mediator.RequestTypeOf[R]()
	return catalog.HandlerBinding{
		RequestType: rt,
		Key:         catalog.HandlerKey(rt, name),
		Lifetime:    lifetime,
		Factory: func() (any, error) {
			h, err := factory()
			if err != nil {
				return nil, err
			}
			return mediator.TypedHandler[R, T](h), nil
		},
		Source: catalog.SourceManual,
	}
}

func behaviorBinding(name string, order int, b types.Behavior, matches func(reflect.Type) bool) catalog.BehaviorBinding {
	return catalog.BehaviorBinding{
		Key:      catalog.BehaviorKey(name),
		Order:    order,
		Lifetime: registry.Singleton,
		Factory:  func() (any, error) { return b, nil },
		Matches:  matches,
		Source:   catalog.SourceManual,
	}
}

func notificationBinding[N types.Notification](name string, h types.NotificationHandler) catalog.NotificationBinding {
	nt := mediator.NotificationTypeOf[N]()
	return catalog.NotificationBinding{
		NotificationType: nt,
		Key:              catalog.NotificationKey(nt, name),
		Lifetime:         registry.Singleton,
		Factory:          func() (any, error) { return h, nil },
		Source:           catalog.SourceManual,
	}
}
