package storage

// Drivers
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config selects and configures the durable store.
type Config struct {
	Driver string `mapstructure:"driver"`
	// Path of the JSON file for the file driver.
	Path string `mapstructure:"path"`
	// KeyPrefix for the redis driver; the change channel is KeyPrefix + "changes".
	KeyPrefix string `mapstructure:"key_prefix"`
}

func DefaultConfig() Config {
	return Config{
		Driver:    DriverFile,
		Path:      "",
		KeyPrefix: "cohort:storage:",
	}
}

func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverFile
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultConfig().KeyPrefix
	}
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverRedis:
	case DriverFile:
		if c.Path == "" {
			return ErrConfigInvalid.WithMsg("storage path is required for the file driver")
		}
	default:
		return ErrConfigInvalid.WithMsgf("unsupported storage driver: %s", c.Driver)
	}
	return nil
}
