package cache

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the cache instruments. A zero Metrics records nothing.
type Metrics struct {
	mu         sync.RWMutex
	registered bool

	hits          metric.Int64Counter
	misses        metric.Int64Counter
	fetches       metric.Int64Counter
	dedup         metric.Int64Counter
	invalidations metric.Int64Counter
	errors        metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsName returns the metrics group name
func (m *Metrics) MetricsName() string {
	return "cache"
}

// RegisterMetrics creates the instruments on meter. Calling it twice is a no-op.
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.hits, "query_cache_hits_total", "Reads served from fresh cached data"},
		{&m.misses, "query_cache_misses_total", "Reads that required a fetch"},
		{&m.fetches, "query_cache_fetches_total", "Fetches executed"},
		{&m.dedup, "query_cache_dedup_total", "Reads that joined an in-flight fetch"},
		{&m.invalidations, "query_cache_invalidations_total", "Entries marked invalid"},
		{&m.errors, "query_cache_errors_total", "Fetches that failed"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("{operation}"))
		if err != nil {
			return err
		}
	}

	m.fetchDuration, err = meter.Float64Histogram(
		"query_cache_fetch_duration_seconds",
		metric.WithDescription("Fetch duration distribution, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

// IsRegistered returns whether metrics have been registered
func (m *Metrics) IsRegistered() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

func (m *Metrics) add(ctx context.Context, c metric.Int64Counter, n int64, key Key) {
	if n == 0 || !m.IsRegistered() {
		return
	}
	c.Add(ctx, n, metric.WithAttributes(rootAttr(key)))
}

func (m *Metrics) recordFetch(ctx context.Context, key Key, seconds float64, failed bool) {
	if !m.IsRegistered() {
		return
	}
	result := "success"
	if failed {
		result = "error"
		m.errors.Add(ctx, 1, metric.WithAttributes(rootAttr(key)))
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(rootAttr(key), attribute.String("result", result)))
	m.fetchDuration.Record(ctx, seconds, metric.WithAttributes(rootAttr(key)))
}

// rootAttr labels by the first key segment only to keep cardinality low.
func rootAttr(key Key) attribute.KeyValue {
	if len(key) == 0 {
		return attribute.String("query", "")
	}
	return attribute.String("query", encodeSegment(key[0]))
}
