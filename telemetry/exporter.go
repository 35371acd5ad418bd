package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

func (m *Manager) createSpanExporter() (trace.SpanExporter, error) {
	switch m.config.Exporter {
	case ExporterStdout:
		return stdouttrace.New(
			stdouttrace.WithWriter(m.out),
			stdouttrace.WithPrettyPrint(),
		)
	case ExporterNoop:
		return noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.config.Exporter)
	}
}

// createMetricExporter returns nil for the noop exporter.
func (m *Manager) createMetricExporter() (sdkmetric.Exporter, error) {
	switch m.config.Exporter {
	case ExporterStdout:
		return stdoutmetric.New(
			stdoutmetric.WithWriter(m.out),
			stdoutmetric.WithPrettyPrint(),
		)
	case ExporterNoop:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", m.config.Exporter)
	}
}

// noopExporter drops every span.
type noopExporter struct{}

func (noopExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }

func (noopExporter) Shutdown(context.Context) error { return nil }
