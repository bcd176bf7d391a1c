package behaviors

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dualizor/dualizor/pkg/types"
)

// Metrics records a counter and a latency histogram per request type
// and outcome.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates a metrics behavior and registers its collectors
// with the given registerer. Pass prometheus.DefaultRegisterer to use
// the process-wide registry.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "dualizor"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total request dispatches by request type and status.",
		}, []string{"request", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Request dispatch latency by request type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request"}),
	}

	if err := reg.Register(m.dispatches); err != nil {
		return nil, types.WrapError(types.ErrCodeInternal, "failed to register dispatch counter", err)
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, types.WrapError(types.ErrCodeInternal, "failed to register dispatch histogram", err)
	}

	return m, nil
}

// Handle implements types.Behavior
func (b *Metrics) Handle(ctx context.Context, req types.Request, next types.Next) (any, error) {
	start := time.Now()
	name := typeName(req)

	res, err := next(ctx)

	b.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		if code := types.GetErrorCode(err); code != "" {
			status = code
		}
	}
	b.dispatches.WithLabelValues(name, status).Inc()

	return res, err
}
