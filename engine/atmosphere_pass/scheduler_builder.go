package atmosphere_pass

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere_pass"

// PassSchedulerBuilderOption is a function that configures a PassScheduler during construction.
type PassSchedulerBuilderOption func(*passSchedulerImpl)

// WithLogger sets the scheduler's logger.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - PassSchedulerBuilderOption: a function that applies the logger option
func WithLogger(log logging.Logger) PassSchedulerBuilderOption {
	return func(ps *passSchedulerImpl) {
		ps.log = logging.OrNoop(log)
	}
}

// WithMetrics sets the recorder that receives per-frame statistics.
//
// Parameters:
//   - metrics: the recorder, nil for none
//
// Returns:
//   - PassSchedulerBuilderOption: a function that applies the metrics option
func WithMetrics(metrics MetricsRecorder) PassSchedulerBuilderOption {
	return func(ps *passSchedulerImpl) {
		if metrics == nil {
			metrics = noopRecorder{}
		}
		ps.metrics = metrics
	}
}

// WithTracer sets the tracer used for the per-call schedule span.
// Defaults to the global tracer provider.
//
// Parameters:
//   - tracer: the tracer
//
// Returns:
//   - PassSchedulerBuilderOption: a function that applies the tracer option
func WithTracer(tracer trace.Tracer) PassSchedulerBuilderOption {
	return func(ps *passSchedulerImpl) {
		ps.tracer = tracer
	}
}

// WithWorkers sets how many workers build parameter sets in parallel.
// Defaults to one less than the CPU count, at least 1.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - PassSchedulerBuilderOption: a function that applies the worker count option
func WithWorkers(workers int) PassSchedulerBuilderOption {
	return func(ps *passSchedulerImpl) {
		ps.workers = max(workers, 1)
	}
}

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
