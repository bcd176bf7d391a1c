// Package behaviors ships built-in cross-cutting behaviors for the
// dispatch chain: panic recovery, structured logging, prometheus
// metrics, and otel tracing.
//
// Each behavior carries a recommended order; lower orders run
// outermost. Recovery sits outermost so it also catches panics raised
// by inner behaviors.
package behaviors

// Recommended chain orders for the built-in behaviors
const (
	OrderRecovery = -100
	OrderTracing  = -90
	OrderLogging  = -80
	OrderMetrics  = -70
)
