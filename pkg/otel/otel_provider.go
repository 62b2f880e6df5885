// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the meter and tracer providers exporting the anonymiser
// telemetry over OTLP/gRPC.
type Provider struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	resource       *resource.Resource
	shutdownFns    []func(context.Context) error

	newMetricExporter metricExporterFn
	newSpanExporter   spanExporterFn
}

type (
	metricExporterFn func(context.Context, *MetricsConfig) (sdkmetric.Exporter, error)
	spanExporterFn   func(context.Context, *TracesConfig) (sdktrace.SpanExporter, error)
)

type ProviderOption func(*Provider)

const (
	serviceName     = "anonymiser"
	shutdownTimeout = 5 * time.Second
)

func NewProvider(cfg *Config, opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		resource:          newResource(serviceVersion(cfg)),
		newMetricExporter: newOTLPMetricExporter,
		newSpanExporter:   newOTLPSpanExporter,
	}
	for _, opt := range opts {
		opt(p)
	}

	ctx := context.Background()
	if err := p.initMeterProvider(ctx, cfg.Metrics); err != nil {
		return nil, fmt.Errorf("initialising meter provider: %w", err)
	}

	if err := p.initTracerProvider(ctx, cfg.Traces); err != nil {
		// release the meter provider if it was already started
		return nil, errors.Join(fmt.Errorf("initialising tracer provider: %w", err), p.Close())
	}

	return p, nil
}

func withSpanExporter(fn spanExporterFn) ProviderOption {
	return func(p *Provider) {
		p.newSpanExporter = fn
	}
}

func withMetricExporter(fn metricExporterFn) ProviderOption {
	return func(p *Provider) {
		p.newMetricExporter = fn
	}
}

func (p *Provider) Meter(name string) metric.Meter {
	return p.meterProvider.Meter(name)
}

func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tracerProvider.Tracer(name)
}

func (p *Provider) NewInstrumentation(name string) *Instrumentation {
	return &Instrumentation{
		Meter:  p.Meter(name),
		Tracer: p.Tracer(name),
	}
}

// Close flushes and stops the exporters. All of them are stopped even if
// some fail.
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, shutdownFn := range p.shutdownFns {
		if err := shutdownFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdownFns = nil

	return errors.Join(errs...)
}

func (p *Provider) initMeterProvider(ctx context.Context, cfg *MetricsConfig) error {
	if cfg == nil {
		p.meterProvider = metricnoop.NewMeterProvider()
		otel.SetMeterProvider(p.meterProvider)
		return nil
	}

	exporter, err := p.newMetricExporter(ctx, cfg)
	if err != nil {
		return err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(p.resource),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.collectionInterval()))))
	p.shutdownFns = append(p.shutdownFns, mp.Shutdown)
	p.meterProvider = mp
	otel.SetMeterProvider(mp)

	// go runtime metrics for long running processes
	if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
		return fmt.Errorf("starting runtime metrics: %w", err)
	}

	return nil
}

func (p *Provider) initTracerProvider(ctx context.Context, cfg *TracesConfig) error {
	if cfg == nil {
		p.tracerProvider = tracenoop.NewTracerProvider()
		otel.SetTracerProvider(p.tracerProvider)
		return nil
	}

	exporter, err := p.newSpanExporter(ctx, cfg)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(p.resource),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio()))))
	p.shutdownFns = append(p.shutdownFns, tp.Shutdown)
	p.tracerProvider = tp
	otel.SetTracerProvider(tp)

	return nil
}

func newOTLPMetricExporter(ctx context.Context, cfg *MetricsConfig) (sdkmetric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithTemporalitySelector(deltaSelector),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

func newOTLPSpanExporter(ctx context.Context, cfg *TracesConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

func newResource(version string) *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(version),
	)
}

// deltaSelector reports monotonic instruments with delta temporality, so no
// data points are lost when the process or the collector restarts.
// Up/down counters stay cumulative.
func deltaSelector(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	switch kind {
	case sdkmetric.InstrumentKindUpDownCounter,
		sdkmetric.InstrumentKindObservableUpDownCounter:
		return metricdata.CumulativeTemporality
	default:
		return metricdata.DeltaTemporality
	}
}
