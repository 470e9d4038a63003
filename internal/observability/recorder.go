// Package observability provides the metrics recorders used by the query service.
package observability

import (
	"context"
	"time"
)

// Recorder observes the outcome of a service operation.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Backend names a metrics implementation.
type Backend string

const (
	BackendPrometheus Backend = "prometheus"
	BackendExpvar     Backend = "expvar"
	BackendNone       Backend = "none"
)

// Outcome labels attached to every observation, by all recorders.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Outcome returns the label for success.
func Outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeError
}

// Noop discards observations.
type Noop struct{}

// Observe implements Recorder.
func (Noop) Observe(context.Context, string, bool, time.Duration) {}
