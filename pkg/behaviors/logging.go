package behaviors

import (
	"context"
	"time"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/types"
)

// Logging logs every dispatch with its kind, concrete type, duration,
// and outcome.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new logging behavior
func NewLogging(log *logger.Logger) (*Logging, error) {
	if log == nil {
		var err error
		log, err = logger.NewDefault()
		if err != nil {
			return nil, types.WrapError(types.ErrCodeInternal, "failed to create default logger", err)
		}
	}

	return &Logging{
		logger: log.With("component", "logging_behavior"),
	}, nil
}

// Handle implements types.Behavior
func (b *Logging) Handle(ctx context.Context, req types.Request, next types.Next) (any, error) {
	start := time.Now()

	res, err := next(ctx)

	if err != nil {
		b.logger.Warn("Request failed",
			"kind", req.MessageKind(),
			"request", typeName(req),
			"duration", time.Since(start),
			"error", err)
		return res, err
	}

	b.logger.Debug("Request handled",
		"kind", req.MessageKind(),
		"request", typeName(req),
		"duration", time.Since(start))

	return res, nil
}
