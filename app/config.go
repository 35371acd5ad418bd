package app

import (
	"os"
	"path/filepath"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/config"
	"github.com/Vayras/admin-frontend-sub001/event"
	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/redis"
	"github.com/Vayras/admin-frontend-sub001/storage"
	"github.com/Vayras/admin-frontend-sub001/telemetry"
)

// EnvPrefix of the environment variables read by LoadConfig,
// e.g. COHORT_HTTP__BASE_URL or COHORT_CACHE__STALE_TIME.
const EnvPrefix = "COHORT"

// Config is the whole client configuration, one section per module.
type Config struct {
	Logger    logger.ManagerConfig `mapstructure:"logger"`
	HTTP      httpclient.Config    `mapstructure:"http"`
	Cache     cache.Config         `mapstructure:"cache"`
	Storage   storage.Config       `mapstructure:"storage"`
	Redis     redis.Config         `mapstructure:"redis"`
	Event     event.Config         `mapstructure:"event"`
	Telemetry telemetry.Config     `mapstructure:"telemetry"`
}

func DefaultConfig() Config {
	cfg := Config{
		Logger:    logger.DefaultManagerConfig(),
		HTTP:      httpclient.Config{BaseURL: "http://localhost:8080"},
		Cache:     cache.DefaultConfig(),
		Storage:   storage.DefaultConfig(),
		Event:     event.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
	}
	cfg.Storage.Path = defaultSessionFile()
	return cfg
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cohortctl", "session.json")
}

// ApplyDefaults fills zero values of every section. The redis section is
// only defaulted when something uses it.
func (c *Config) ApplyDefaults() {
	c.Logger.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Cache.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.NeedsRedis() {
		c.Redis.ApplyDefaults()
	}
}

// NeedsRedis reports whether the storage driver or the cache store is redis backed.
func (c Config) NeedsRedis() bool {
	if c.Storage.Driver == storage.DriverRedis {
		return true
	}
	return c.Cache.Persist.Type == cache.StoreRedis || c.Cache.Persist.Type == cache.StoreChain
}

func (c Config) Validate() error {
	validators := []config.Validator{c.Logger, c.HTTP, c.Cache, c.Storage, c.Telemetry}
	if c.NeedsRedis() {
		validators = append(validators, c.Redis)
	}
	return config.ValidateAll(validators...)
}

// LoadConfig reads path (optional) and the COHORT_ environment over the
// defaults; overrides, typically command line flags, win over both.
func LoadConfig(path string, overrides map[string]any) (Config, error) {
	loader, err := config.NewLoaderBuilder().
		WithConfigFile(path).
		WithEnvPrefix(EnvPrefix).
		WithOverrides(overrides).
		Build()
	if err != nil {
		return Config{}, ErrConfigLoad.Wrap(err)
	}

	cfg := DefaultConfig()
	if err := loader.Unmarshal(&cfg); err != nil {
		return Config{}, ErrConfigLoad.Wrap(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
