package behaviors

import (
	"context"
	"fmt"
	"reflect"
	"runtime"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/types"
)

// Recovery converts panics raised by inner links into HANDLER_FAILED
// errors instead of unwinding the caller's stack. Register it with the
// lowest order so it wraps the entire chain.
type Recovery struct {
	logger *logger.Logger
}

// NewRecovery creates a new recovery behavior
func NewRecovery(log *logger.Logger) (*Recovery, error) {
	if log == nil {
		var err error
		log, err = logger.NewDefault()
		if err != nil {
			return nil, types.WrapError(types.ErrCodeInternal, "failed to create default logger", err)
		}
	}

	return &Recovery{
		logger: log.With("component", "recovery_behavior"),
	}, nil
}

// Handle implements types.Behavior
func (b *Recovery) Handle(ctx context.Context, req types.Request, next types.Next) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			b.logger.Error("Handler panic recovered",
				"request", typeName(req),
				"panic", fmt.Sprintf("%v", r))

			res = nil
			err = types.NewError(types.ErrCodeHandlerFailed,
				fmt.Sprintf("handler panic for %s: %v\n%s", typeName(req), r, string(stack[:n])))
		}
	}()

	return next(ctx)
}

// typeName returns the concrete type name of a request value
func typeName(req types.Request) string {
	return reflect.TypeOf(req).String()
}
