package mediator

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dualizor/dualizor/pkg/types"
)

// Handler is a strongly typed request handler. TypedHandler adapts it
// to the untyped types.RequestHandler contract the engine dispatches
// through.
type Handler[R types.Request, T any] interface {
	Handle(ctx context.Context, req R) (T, error)
}

// RequestTypeOf returns the reflect.Type dispatch is keyed on for a
// request type parameter.
func RequestTypeOf[R types.Request]() reflect.Type {
	var zero R
	return reflect.TypeOf(zero)
}

// NotificationTypeOf returns the reflect.Type publishing is keyed on
// for a notification type parameter.
func NotificationTypeOf[N types.Notification]() reflect.Type {
	var zero N
	return reflect.TypeOf(zero)
}

// TypedHandler adapts a strongly typed handler to the untyped handler
// contract. The request value is asserted back to its concrete type at
// dispatch time.
func TypedHandler[R types.Request, T any](h Handler[R, T]) types.RequestHandler {
	return types.RequestFunc(func(ctx context.Context, req types.Request) (any, error) {
		typed, ok := req.(R)
		if !ok {
			return nil, types.NewError(types.ErrCodeInternal,
				fmt.Sprintf("handler bound to %s received %T", RequestTypeOf[R]().String(), req))
		}
		return h.Handle(ctx, typed)
	})
}

// TypedFunc adapts a strongly typed handler function to the untyped
// handler contract.
func TypedFunc[R types.Request, T any](fn func(ctx context.Context, req R) (T, error)) types.RequestHandler {
	return TypedHandler[R, T](handlerFunc[R, T](fn))
}

type handlerFunc[R types.Request, T any] func(ctx context.Context, req R) (T, error)

func (f handlerFunc[R, T]) Handle(ctx context.Context, req R) (T, error) {
	return f(ctx, req)
}

// TypedNotificationFunc adapts a strongly typed notification handler
// function to the untyped contract.
func TypedNotificationFunc[N types.Notification](fn func(ctx context.Context, n N) error) types.NotificationHandler {
	return types.NotificationFunc(func(ctx context.Context, n types.Notification) error {
		typed, ok := n.(N)
		if !ok {
			return types.NewError(types.ErrCodeInternal,
				fmt.Sprintf("notification handler bound to %s received %T", NotificationTypeOf[N]().String(), n))
		}
		return fn(ctx, typed)
	})
}

// Send dispatches a request and asserts the response to T. A nil
// result yields the zero value of T.
func Send[T any](ctx context.Context, m *Mediator, req types.Request) (T, error) {
	var zero T

	res, err := m.Send(ctx, req)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}

	typed, ok := res.(T)
	if !ok {
		return zero, types.NewError(types.ErrCodeInternal,
			fmt.Sprintf("response for %T is %T, not %s", req, res, reflect.TypeOf(zero)))
	}

	return typed, nil
}
