package cache

import (
	"fmt"
	"time"

	"github.com/Vayras/admin-frontend-sub001/retry"
)

// Persistence store types
const (
	StoreNone   = ""
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreChain  = "chain"
)

// Config cache client configuration
type Config struct {
	// StaleTime is how long fetched data counts as fresh. Zero refetches on every read.
	StaleTime time.Duration `mapstructure:"stale_time"`

	// GCTime is how long an unobserved entry is kept after its last access.
	// It is also the TTL of persisted snapshots.
	GCTime time.Duration `mapstructure:"gc_time"`

	GCInterval time.Duration `mapstructure:"gc_interval"`

	Retry retry.Policy `mapstructure:"retry"`

	Persist PersistConfig `mapstructure:"persist"`

	// MetricsEnabled registers the otel instruments on the global meter provider.
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// PersistConfig selects the snapshot store.
type PersistConfig struct {
	// Type: "", memory, redis or chain (memory in front of redis)
	Type      string `mapstructure:"type"`
	MaxSize   int    `mapstructure:"max_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		StaleTime:  0,
		GCTime:     5 * time.Minute,
		GCInterval: time.Minute,
		Retry:      retry.DefaultPolicy(),
		Persist: PersistConfig{
			MaxSize:   1000,
			KeyPrefix: "cohort:query:",
		},
	}
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.GCTime == 0 {
		c.GCTime = d.GCTime
	}
	if c.GCInterval == 0 {
		c.GCInterval = d.GCInterval
	}
	if c.Persist.MaxSize == 0 {
		c.Persist.MaxSize = d.Persist.MaxSize
	}
	if c.Persist.KeyPrefix == "" {
		c.Persist.KeyPrefix = d.Persist.KeyPrefix
	}
	c.Retry.ApplyDefaults()
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.StaleTime < 0 {
		return ErrConfigInvalid.WithMsgf("stale_time must not be negative, current: %s", c.StaleTime)
	}
	if c.GCTime <= 0 {
		return ErrConfigInvalid.WithMsgf("gc_time must be positive, current: %s", c.GCTime)
	}
	if c.GCInterval <= 0 {
		return ErrConfigInvalid.WithMsgf("gc_interval must be positive, current: %s", c.GCInterval)
	}
	switch c.Persist.Type {
	case StoreNone, StoreMemory, StoreRedis, StoreChain:
	default:
		return ErrConfigInvalid.WithMsgf("unsupported persist type: %s", c.Persist.Type)
	}
	if err := c.Retry.Validate(); err != nil {
		return ErrConfigInvalid.Wrap(fmt.Errorf("cache: %w", err))
	}
	return nil
}
