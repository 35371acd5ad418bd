package telemetry

import "time"

// Exporters
const (
	ExporterStdout = "stdout"
	ExporterNoop   = "noop"
)

// Samplers
const (
	SamplerAlwaysOn      = "always_on"
	SamplerAlwaysOff     = "always_off"
	SamplerTraceIDRatio  = "trace_id_ratio"
	SamplerParentBasedOn = "parent_based_always_on"
)

// Config selects where spans and metrics of the client go.
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Exporter       string        `mapstructure:"exporter"`
	Sampler        SamplerConfig `mapstructure:"sampler"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type SamplerConfig struct {
	Type string `mapstructure:"type"`
	// Ratio is only read by trace_id_ratio.
	Ratio float64 `mapstructure:"ratio"`
}

// MetricsConfig turns on the meter provider. Metrics are also flushed once
// on shutdown, so short commands still report.
type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "cohortctl",
		Exporter:    ExporterStdout,
		Sampler:     SamplerConfig{Type: SamplerParentBasedOn, Ratio: 1},
		Metrics:     MetricsConfig{ExportInterval: 30 * time.Second},
	}
}

func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.ServiceName == "" {
		c.ServiceName = def.ServiceName
	}
	if c.Exporter == "" {
		c.Exporter = def.Exporter
	}
	if c.Sampler.Type == "" {
		c.Sampler.Type = def.Sampler.Type
	}
	if c.Metrics.ExportInterval <= 0 {
		c.Metrics.ExportInterval = def.Metrics.ExportInterval
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Exporter {
	case ExporterStdout, ExporterNoop:
	default:
		return ErrConfigInvalid.WithMsgf("unsupported telemetry exporter: %s", c.Exporter)
	}
	switch c.Sampler.Type {
	case SamplerAlwaysOn, SamplerAlwaysOff, SamplerParentBasedOn:
	case SamplerTraceIDRatio:
		if c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1 {
			return ErrConfigInvalid.WithMsgf("sampler ratio must be within [0, 1], got %v", c.Sampler.Ratio)
		}
	default:
		return ErrConfigInvalid.WithMsgf("unsupported sampler: %s", c.Sampler.Type)
	}
	return nil
}
