package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/catalog"
	"github.com/dualizor/dualizor/pkg/registry"
	"github.com/dualizor/dualizor/pkg/types"
)

// Publisher fans a notification out to every handler bound to its
// concrete type.
type Publisher struct {
	catalog  *catalog.Catalog
	resolver registry.Resolver
	logger   *logger.Logger
}

// NewPublisher creates a notification publisher over a frozen catalog
func NewPublisher(cat *catalog.Catalog, resolver registry.Resolver, log *logger.Logger) (*Publisher, error) {
	if cat == nil {
		return nil, types.NewError(types.ErrCodeInvalid, "catalog cannot be nil")
	}
	if resolver == nil {
		return nil, types.NewError(types.ErrCodeInvalid, "resolver cannot be nil")
	}
	if !cat.Frozen() {
		return nil, types.NewError(types.ErrCodeInvalid, "catalog must be frozen before publishing")
	}

	if log == nil {
		var err error
		log, err = logger.NewDefault()
		if err != nil {
			return nil, types.WrapError(types.ErrCodeInternal, "failed to create default logger", err)
		}
	}

	return &Publisher{
		catalog:  cat,
		resolver: resolver,
		logger:   log.With("component", "publisher"),
	}, nil
}

// Publish invokes every handler bound to the notification's concrete
// type in registration order, passing the same ctx to all. Zero bound
// handlers is not an error.
//
// Failure policy (contract): every handler runs regardless of earlier
// failures; failures are collected and returned as one aggregate
// PARTIAL_FAILURE error wrapping the joined handler errors.
func (p *Publisher) Publish(ctx context.Context, n types.Notification) error {
	if n == nil {
		return types.NewError(types.ErrCodeInvalid, "notification cannot be nil")
	}

	if err := ctx.Err(); err != nil {
		return types.WrapError(types.ErrCodeCanceled, "publish canceled before handler invocation", err)
	}

	nType := reflect.TypeOf(n)
	bindings := p.catalog.NotificationBindings(nType)
	if len(bindings) == 0 {
		p.logger.Debug("No handlers bound for notification", "notification_type", nType.String())
		return nil
	}

	var failures []error
	for _, b := range bindings {
		handler, err := p.resolveNotificationHandler(b)
		if err != nil {
			failures = append(failures, err)
			continue
		}

		if err := handler.Handle(ctx, n); err != nil {
			p.logger.Debug("Notification handler failed",
				"notification_type", nType.String(),
				"key", b.Key,
				"error", err)
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return types.WrapError(types.ErrCodePartialFailure,
			fmt.Sprintf("%d of %d notification handlers failed", len(failures), len(bindings)),
			errors.Join(failures...))
	}

	return nil
}

// resolveNotificationHandler resolves one notification handler instance
func (p *Publisher) resolveNotificationHandler(b catalog.NotificationBinding) (types.NotificationHandler, error) {
	raw, err := p.resolver.ResolveOne(b.Key)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeInternal,
			fmt.Sprintf("notification handler for key %s could not be resolved", b.Key), err)
	}

	handler, ok := raw.(types.NotificationHandler)
	if !ok {
		return nil, types.NewError(types.ErrCodeInternal,
			fmt.Sprintf("registration for key %s is not a notification handler: %T", b.Key, raw))
	}

	return handler, nil
}
