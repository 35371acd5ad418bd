package redis

import (
	"time"
)

// Modes
const (
	ModeStandalone = "standalone"
	ModeCluster    = "cluster"
)

// Config of the redis connection shared by the cache snapshot store and the
// redis storage driver.
type Config struct {
	// Mode: standalone or cluster
	Mode string `mapstructure:"mode"`

	// Addrs: standalone uses the first one, cluster uses all of them
	Addrs []string `mapstructure:"addrs"`

	// Addr is folded into Addrs when Addrs is empty
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`

	// DB number, standalone only
	DB int `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// MetricsEnabled adds the otel command hook
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeStandalone
	}
	if c.Addr != "" && len(c.Addrs) == 0 {
		c.Addrs = []string{c.Addr}
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Mode != ModeStandalone && c.Mode != ModeCluster {
		return ErrConfigInvalid.WithMsgf("invalid mode: %s (must be standalone or cluster)", c.Mode)
	}
	if len(c.Addrs) == 0 {
		return ErrConfigInvalid.WithMsg("addrs cannot be empty")
	}
	if c.Mode == ModeStandalone && (c.DB < 0 || c.DB > 15) {
		return ErrConfigInvalid.WithMsgf("db must be between 0 and 15, got: %d", c.DB)
	}
	if c.PoolSize < 0 || c.MinIdleConns < 0 {
		return ErrConfigInvalid.WithMsg("pool sizes must not be negative")
	}
	return nil
}
