// Package mediator implements the dispatch engine: it routes a request
// through an ordered behavior chain to exactly one handler and fans
// notifications out to all subscribed handlers.
package mediator

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/catalog"
	"github.com/dualizor/dualizor/pkg/registry"
	"github.com/dualizor/dualizor/pkg/types"
)

// Mediator dispatches requests to their registered handlers. It holds
// only a read reference to a frozen catalog and shares no mutable
// state across calls; concurrent sends are independent.
type Mediator struct {
	catalog  *catalog.Catalog
	resolver registry.Resolver
	logger   *logger.Logger
}

// New creates a dispatch engine over a frozen catalog
func New(cat *catalog.Catalog, resolver registry.Resolver, log *logger.Logger) (*Mediator, error) {
	if cat == nil {
		return nil, types.NewError(types.ErrCodeInvalid, "catalog cannot be nil")
	}
	if resolver == nil {
		return nil, types.NewError(types.ErrCodeInvalid, "resolver cannot be nil")
	}
	if !cat.Frozen() {
		return nil, types.NewError(types.ErrCodeInvalid, "catalog must be frozen before dispatch")
	}

	if log == nil {
		var err error
		log, err = logger.NewDefault()
		if err != nil {
			return nil, types.WrapError(types.ErrCodeInternal, "failed to create default logger", err)
		}
	}

	return &Mediator{
		catalog:  cat,
		resolver: resolver,
		logger:   log.With("component", "mediator"),
	}, nil
}

// Send dispatches a request to its registered handler through the
// behavior chain and returns the handler's result unchanged. Requests
// without a meaningful response return a nil result.
//
// The chain observes ctx cooperatively: a ctx canceled before dispatch
// fails with a CANCELED error without invoking the handler; a ctx
// canceled mid-flight is observed by each link at its own suspension
// points.
func (m *Mediator) Send(ctx context.Context, req types.Request) (any, error) {
	if req == nil {
		return nil, types.NewError(types.ErrCodeInvalid, "request cannot be nil")
	}

	if err := ctx.Err(); err != nil {
		return nil, types.WrapError(types.ErrCodeCanceled, "dispatch canceled before handler invocation", err)
	}

	reqType := reflect.TypeOf(req)

	binding, err := m.catalog.Binding(reqType)
	if err != nil {
		return nil, err
	}

	handler, err := m.resolveHandler(binding)
	if err != nil {
		return nil, err
	}

	chain, err := m.buildChain(reqType, req, handler)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Dispatching request",
		"request_type", reqType.String(),
		"kind", req.MessageKind())

	// Result and failure propagate unchanged; the engine adds no wrapping.
	return chain(ctx)
}

// resolveHandler resolves the handler instance bound to a request type
func (m *Mediator) resolveHandler(b catalog.HandlerBinding) (types.RequestHandler, error) {
	raw, err := m.resolver.ResolveOne(b.Key)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeUnresolvedHandler,
			fmt.Sprintf("handler instance for %s could not be resolved", b.RequestType.String()), err)
	}

	handler, ok := raw.(types.RequestHandler)
	if !ok {
		return nil, types.NewError(types.ErrCodeInternal,
			fmt.Sprintf("registration for %s is not a request handler: %T", b.RequestType.String(), raw))
	}

	return handler, nil
}
