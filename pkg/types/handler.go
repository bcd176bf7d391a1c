package types

import "context"

// RequestHandler handles requests
type RequestHandler interface {
	// Handle processes a request and returns its response.
	// Handlers without a meaningful response return nil.
	Handle(ctx context.Context, req Request) (any, error)
}

// RequestFunc is a function adapter for RequestHandler
type RequestFunc func(ctx context.Context, req Request) (any, error)

// Handle implements RequestHandler
func (f RequestFunc) Handle(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// NotificationHandler handles notifications
type NotificationHandler interface {
	// Handle processes a notification
	Handle(ctx context.Context, n Notification) error
}

// NotificationFunc is a function adapter for NotificationHandler
type NotificationFunc func(ctx context.Context, n Notification) error

// Handle implements NotificationHandler
func (f NotificationFunc) Handle(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Next invokes the rest of a behavior chain. A behavior may call it
// zero or more times; not calling it short-circuits the chain.
type Next func(ctx context.Context) (any, error)

// Behavior wraps a request handler invocation for cross-cutting
// concerns. Behaviors run before and/or after the continuation and may
// map or replace the result or failure.
//
// Every behavior is expected to pass its ctx through to next; a
// behavior that drops the context breaks cancellation for all inner
// links. This is a contract obligation, not enforced by the engine.
type Behavior interface {
	Handle(ctx context.Context, req Request, next Next) (any, error)
}

// BehaviorFunc is a function adapter for Behavior
type BehaviorFunc func(ctx context.Context, req Request, next Next) (any, error)

// Handle implements Behavior
func (f BehaviorFunc) Handle(ctx context.Context, req Request, next Next) (any, error) {
	return f(ctx, req, next)
}
