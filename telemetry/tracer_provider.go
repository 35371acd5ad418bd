package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

func (m *Manager) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", m.config.ServiceName),
	}
	if m.config.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", m.config.ServiceVersion))
	}
	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithTelemetrySDK(),
	)
}

// createTracerProvider batches spans; Shutdown flushes what is left.
func (m *Manager) createTracerProvider(res *resource.Resource) (*trace.TracerProvider, error) {
	exporter, err := m.createSpanExporter()
	if err != nil {
		return nil, fmt.Errorf("create exporter failed: %w", err)
	}
	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSampler(m.createSampler()),
		trace.WithBatcher(exporter),
	), nil
}

func (m *Manager) createSampler() trace.Sampler {
	switch m.config.Sampler.Type {
	case SamplerAlwaysOn:
		return trace.AlwaysSample()
	case SamplerAlwaysOff:
		return trace.NeverSample()
	case SamplerTraceIDRatio:
		return trace.TraceIDRatioBased(m.config.Sampler.Ratio)
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}

// createMeterProvider returns nil when there is nowhere to export to.
func (m *Manager) createMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := m.createMetricExporter()
	if err != nil || exporter == nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.config.Metrics.ExportInterval),
		)),
	), nil
}
