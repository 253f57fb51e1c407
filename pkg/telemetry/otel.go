package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelConfig configures the OpenTelemetry sink.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // e.g. "localhost:4317" for gRPC
	BatchTimeout   time.Duration
	Insecure       bool
}

// DefaultOTelConfig returns development defaults.
func DefaultOTelConfig() OTelConfig {
	return OTelConfig{
		ServiceName:    "proofrun",
		ServiceVersion: "0.1.0",
		OTLPEndpoint:   "localhost:4317",
		BatchTimeout:   5 * time.Second,
		Insecure:       true,
	}
}

// OTel exports events as metrics and wraps each attempt in a span. One
// counter per event kind; attempt spans open on attempt_started and close on
// attempt_finished with the terminal status attached.
type OTel struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	eventCounter   metric.Int64Counter

	mu    sync.Mutex
	spans map[string]trace.Span // attempt_id -> open span
}

// NewOTel builds the sink and its providers.
func NewOTel(ctx context.Context, cfg OTelConfig) (*OTel, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("otel sink: resource: %w", err)
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("otel sink: trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("otel sink: metric exporter: %w", err)
	}

	o := &OTel{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(15*time.Second))),
		),
		spans: map[string]trace.Span{},
	}
	otel.SetTracerProvider(o.tracerProvider)
	otel.SetMeterProvider(o.meterProvider)

	o.tracer = o.tracerProvider.Tracer("proofrun",
		trace.WithInstrumentationVersion(cfg.ServiceVersion))
	meter := o.meterProvider.Meter("proofrun",
		metric.WithInstrumentationVersion(cfg.ServiceVersion))
	o.eventCounter, err = meter.Int64Counter("proofrun.events",
		metric.WithDescription("Proof loop state transition events by kind"))
	if err != nil {
		return nil, fmt.Errorf("otel sink: counter: %w", err)
	}
	return o, nil
}

func (o *OTel) Emit(ctx context.Context, ev Event) {
	o.eventCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", string(ev.Kind)),
			attribute.String("attempt_id", ev.AttemptID),
		))

	switch ev.Kind {
	case KindAttemptStarted:
		_, span := o.tracer.Start(ctx, "attempt",
			trace.WithAttributes(attribute.String("attempt_id", ev.AttemptID)))
		o.mu.Lock()
		o.spans[ev.AttemptID] = span
		o.mu.Unlock()
	case KindAttemptFinished:
		o.mu.Lock()
		span, ok := o.spans[ev.AttemptID]
		delete(o.spans, ev.AttemptID)
		o.mu.Unlock()
		if ok {
			if status, has := ev.Fields["status"]; has {
				span.SetAttributes(attribute.String("status", fmt.Sprint(status)))
			}
			span.End()
		}
	}
}

// Shutdown flushes and stops the providers.
func (o *OTel) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := o.tracerProvider.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
