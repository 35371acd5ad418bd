package event

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EventMetrics instruments the dispatcher.
type EventMetrics struct {
	mu         sync.RWMutex
	registered bool

	eventsDispatched metric.Int64Counter
	eventsHandled    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
}

func NewEventMetrics() *EventMetrics {
	return &EventMetrics{}
}

// RegisterMetrics registers all event metrics with meter
func (m *EventMetrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	m.eventsDispatched, err = meter.Int64Counter(
		"event_dispatched_total",
		metric.WithDescription("Total number of events dispatched"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.eventsHandled, err = meter.Int64Counter(
		"event_handled_total",
		metric.WithDescription("Total number of listener invocations"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.dispatchDuration, err = meter.Float64Histogram(
		"event_dispatch_duration_seconds",
		metric.WithDescription("Event dispatch duration distribution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

func (m *EventMetrics) RecordDispatched(ctx context.Context, eventName string, duration time.Duration) {
	if !m.IsRegistered() {
		return
	}
	attrs := metric.WithAttributes(attribute.String("event", eventName))
	m.eventsDispatched.Add(ctx, 1, attrs)
	m.dispatchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHandled records one listener invocation; result is success or error.
func (m *EventMetrics) RecordHandled(ctx context.Context, eventName, result string) {
	if !m.IsRegistered() {
		return
	}
	m.eventsHandled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.String("result", result),
	))
}

func (m *EventMetrics) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}
