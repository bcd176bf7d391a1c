package mediator

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dualizor/dualizor/pkg/catalog"
	"github.com/dualizor/dualizor/pkg/types"
)

// buildChain composes the behavior chain for one dispatch. The
// terminal link invokes the handler directly; each behavior wraps the
// next link as a continuation it may invoke zero or more times,
// short-circuit, or map the result of.
//
// The chain is built fresh per call: behavior instances may be
// request-scoped, so nothing is cached across dispatches.
func (m *Mediator) buildChain(reqType reflect.Type, req types.Request, handler types.RequestHandler) (types.Next, error) {
	next := types.Next(func(ctx context.Context) (any, error) {
		return handler.Handle(ctx, req)
	})

	bindings := m.catalog.BehaviorsFor(reqType)

	// Wrap innermost-first so the lowest order runs outermost: its
	// before-logic fires first and its after-logic fires last.
	for i := len(bindings) - 1; i >= 0; i-- {
		behavior, err := m.resolveBehavior(bindings[i])
		if err != nil {
			return nil, err
		}

		inner := next
		next = func(ctx context.Context) (any, error) {
			return behavior.Handle(ctx, req, inner)
		}
	}

	return next, nil
}

// resolveBehavior resolves a behavior instance through the registry
func (m *Mediator) resolveBehavior(b catalog.BehaviorBinding) (types.Behavior, error) {
	raw, err := m.resolver.ResolveOne(b.Key)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeInternal,
			fmt.Sprintf("behavior instance for key %s could not be resolved", b.Key), err)
	}

	behavior, ok := raw.(types.Behavior)
	if !ok {
		return nil, types.NewError(types.ErrCodeInternal,
			fmt.Sprintf("registration for key %s is not a behavior: %T", b.Key, raw))
	}

	return behavior, nil
}
