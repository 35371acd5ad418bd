package event

// Config event bus configuration
type Config struct {
	PoolSize   int  `mapstructure:"pool_size"`
	SetAllSync bool `mapstructure:"set_all_sync"`

	// LogDispatch logs every dispatch at debug level
	LogDispatch bool `mapstructure:"log_dispatch"`

	// MetricsEnabled records dispatch counters on the global meter provider
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

func DefaultConfig() Config {
	return Config{
		PoolSize: 100,
	}
}

// Options converts the configuration into dispatcher options.
func (c Config) Options() []DispatcherOption {
	opts := []DispatcherOption{WithSetAllSync(c.SetAllSync)}
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	if c.LogDispatch {
		opts = append(opts, WithDispatchLogging())
	}
	if c.MetricsEnabled {
		opts = append(opts, WithMetrics(NewEventMetrics()))
	}
	return opts
}
