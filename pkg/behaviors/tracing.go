package behaviors

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dualizor/dualizor/pkg/types"
)

const tracerName = "github.com/dualizor/dualizor/pkg/behaviors"

// Tracing opens a span around the continuation and records failures on
// it. The span's ctx flows to all inner links, so handler-side spans
// nest under the dispatch span.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing creates a tracing behavior. A nil provider falls back to
// the globally registered tracer provider.
func NewTracing(provider trace.TracerProvider) *Tracing {
	var tracer trace.Tracer
	if provider != nil {
		tracer = provider.Tracer(tracerName)
	} else {
		tracer = otel.Tracer(tracerName)
	}

	return &Tracing{tracer: tracer}
}

// Handle implements types.Behavior
func (b *Tracing) Handle(ctx context.Context, req types.Request, next types.Next) (any, error) {
	ctx, span := b.tracer.Start(ctx, "dispatch "+typeName(req),
		trace.WithAttributes(
			attribute.String("dualizor.request", typeName(req)),
			attribute.String("dualizor.kind", req.MessageKind().String()),
		))
	defer span.End()

	res, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return res, err
}
