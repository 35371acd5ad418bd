// Package telemetry installs the OpenTelemetry tracer and meter providers
// that the query, mutation, cache and transport layers report to.
package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Manager owns the providers it sets as the otel globals.
type Manager struct {
	config Config
	logger *logger.CtxZapLogger
	out    io.Writer

	mu             sync.Mutex
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	prevTracer     trace.TracerProvider
	prevMeter      metric.MeterProvider
}

type Option func(*Manager)

// WithWriter sets where the stdout exporters write. Defaults to os.Stderr so
// that command output stays clean.
func WithWriter(w io.Writer) Option {
	return func(m *Manager) {
		if w != nil {
			m.out = w
		}
	}
}

func NewManager(cfg Config, log *logger.CtxZapLogger, opts ...Option) *Manager {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetLogger("telemetry")
	}
	m := &Manager{config: cfg, logger: log, out: os.Stderr}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates the providers and installs them globally. It does nothing
// when telemetry is disabled.
func (m *Manager) Start(ctx context.Context) error {
	if !m.config.Enabled {
		m.logger.DebugCtx(ctx, "telemetry disabled")
		return nil
	}
	if err := m.config.Validate(); err != nil {
		return err
	}

	res, err := m.createResource(ctx)
	if err != nil {
		return ErrStart.Wrap(err).WithMsg("create resource failed")
	}
	tp, err := m.createTracerProvider(res)
	if err != nil {
		return ErrStart.Wrap(err)
	}

	var mp *sdkmetric.MeterProvider
	if m.config.Metrics.Enabled {
		if mp, err = m.createMeterProvider(res); err != nil {
			_ = tp.Shutdown(ctx)
			return ErrStart.Wrap(err)
		}
	}

	m.mu.Lock()
	m.tracerProvider, m.meterProvider = tp, mp
	m.prevTracer = otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	if mp != nil {
		m.prevMeter = otel.GetMeterProvider()
		otel.SetMeterProvider(mp)
	}
	m.mu.Unlock()

	m.logger.DebugCtx(ctx, "telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.String("exporter", m.config.Exporter),
		zap.Bool("metrics", mp != nil))
	return nil
}

// Shutdown flushes pending spans and metrics and restores the providers
// that were global before Start. Later calls are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	tp, mp := m.tracerProvider, m.meterProvider
	m.tracerProvider, m.meterProvider = nil, nil
	if tp != nil {
		otel.SetTracerProvider(m.prevTracer)
	}
	if mp != nil {
		otel.SetMeterProvider(m.prevMeter)
	}
	m.mu.Unlock()

	var errs []error
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
