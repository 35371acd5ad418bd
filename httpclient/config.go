package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Vayras/admin-frontend-sub001/retry"
)

// Config configures the API client.
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Retry     retry.Policy  `mapstructure:"retry"`
}

func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "cohortctl"
	}
	c.Retry.ApplyDefaults()
}

func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("http base_url must be an absolute URL, current: %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("http timeout must not be negative, current: %s", c.Timeout)
	}
	return c.Retry.Validate()
}

// Options turns c into client options. Retries are not enabled here: reads are
// retried by the cache layer and writes are never retried.
func (c Config) Options() []Option {
	return []Option{
		WithBaseURL(c.BaseURL),
		WithTimeout(c.Timeout),
		WithHeader("User-Agent", c.UserAgent),
	}
}
