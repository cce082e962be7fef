package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// FrameKey is the span attribute carrying the frame number. Spans started with it are
// sampled by frame interval rather than by trace ID.
const FrameKey = attribute.Key("frame")

const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ErrTracingConfig is wrapped by every TracingConfig validation error.
var ErrTracingConfig = errors.New("invalid tracing config")

// TracingConfig governs how frame tracing is set up.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string
	// Endpoint is the OTLP gRPC collector address, localhost:4317 when empty.
	Endpoint string
	// FrameInterval keeps one frame span out of every FrameInterval frames; 0 drops them all.
	FrameInterval uint64
	// SampleRatio applies to root spans that carry no frame number.
	SampleRatio float64
	// Output receives stdout exporter spans, os.Stderr when nil.
	Output io.Writer
}

// TracingConfigFromEnv reads ATMOS_TRACING_* variables. Unparseable numbers keep their
// defaults; out-of-range values are left for Validate to reject.
func TracingConfigFromEnv() TracingConfig {
	cfg := TracingConfig{
		Enabled:       strings.EqualFold(os.Getenv("ATMOS_TRACING_ENABLED"), "true"),
		ServiceName:   "atmosphere-viewer",
		Exporter:      ExporterStdout,
		Endpoint:      os.Getenv("ATMOS_OTLP_ENDPOINT"),
		FrameInterval: 60,
		SampleRatio:   1,
	}
	if v := os.Getenv("ATMOS_TRACING_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("ATMOS_TRACING_EXPORTER"); v != "" {
		cfg.Exporter = strings.ToLower(v)
	}
	if v, err := strconv.ParseUint(os.Getenv("ATMOS_TRACING_FRAME_INTERVAL"), 10, 64); err == nil {
		cfg.FrameInterval = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("ATMOS_TRACING_SAMPLE_RATIO"), 64); err == nil {
		cfg.SampleRatio = v
	}
	return cfg
}

// Validate reports the first problem with the config.
//
// Returns:
//   - error: an ErrTracingConfig wrapper, nil when the config is usable
func (c TracingConfig) Validate() error {
	switch c.Exporter {
	case ExporterStdout, ExporterOTLP:
	default:
		return fmt.Errorf("%w: unknown exporter %q", ErrTracingConfig, c.Exporter)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("%w: sample ratio %v outside [0, 1]", ErrTracingConfig, c.SampleRatio)
	}
	if c.ServiceName == "" {
		return fmt.Errorf("%w: empty service name", ErrTracingConfig)
	}
	return nil
}

// frameSampler keeps every interval-th frame span and defers everything else to fallback.
type frameSampler struct {
	interval uint64
	fallback sdktrace.Sampler
}

var _ sdktrace.Sampler = frameSampler{}

// NewFrameSampler returns a sampler for per-frame spans.
//
// Parameters:
//   - interval: keep frames whose number is a multiple of interval, 0 to drop every frame span
//   - fallback: sampler for spans without a FrameKey attribute
//
// Returns:
//   - sdktrace.Sampler: the sampler
func NewFrameSampler(interval uint64, fallback sdktrace.Sampler) sdktrace.Sampler {
	if fallback == nil {
		fallback = sdktrace.AlwaysSample()
	}
	return frameSampler{interval: interval, fallback: fallback}
}

func (s frameSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	for _, kv := range p.Attributes {
		if kv.Key != FrameKey {
			continue
		}
		decision := sdktrace.Drop
		if s.interval > 0 && uint64(kv.Value.AsInt64())%s.interval == 0 {
			decision = sdktrace.RecordAndSample
		}
		return sdktrace.SamplingResult{
			Decision:   decision,
			Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
		}
	}
	return s.fallback.ShouldSample(p)
}

func (s frameSampler) Description() string {
	return fmt.Sprintf("FrameSampler{interval=%d,fallback=%s}", s.interval, s.fallback.Description())
}

// NewTracerProvider builds a provider over the configured exporter without installing it.
//
// Parameters:
//   - ctx: context for exporter and resource setup
//   - cfg: a config that passes Validate
//
// Returns:
//   - *sdktrace.TracerProvider: the provider, shut it down to flush spans
//   - error: a validation, exporter or resource error
func NewTracerProvider(ctx context.Context, cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.namespace", "oxy"),
		attribute.Int64("atmosphere.frame_interval", int64(cfg.FrameInterval)),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	sampler := NewFrameSampler(cfg.FrameInterval, sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter == ExporterOTLP {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithoutTimestamps())
}

// InitTracing installs the global tracer provider and propagators. A disabled config installs
// a noop provider, so frame spans cost nothing.
//
// Parameters:
//   - ctx: context for setup
//   - cfg: the tracing config
//   - log: logger for the chosen setup, nil for none
//
// Returns:
//   - func(context.Context) error: flushes and stops the provider
//   - error: from NewTracerProvider
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	log = logging.OrNoop(log)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		log.Debug(ctx, "frame tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	tp, err := NewTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	log.Info(ctx, "frame tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service_name", cfg.ServiceName),
		logging.Uint64("frame_interval", cfg.FrameInterval),
		logging.Float("sample_ratio", float32(cfg.SampleRatio)),
	)
	return tp.Shutdown, nil
}

// ShutdownWithTimeout flushes tracing within five seconds; a failure is only logged.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logging.OrNoop(log).Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
