package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCacheConfig struct {
	StaleTime time.Duration `mapstructure:"stale_time"`
	MaxRetry  int           `mapstructure:"max_retry"`
}

type testConfig struct {
	BaseURL string          `mapstructure:"base_url"`
	Cache   testCacheConfig `mapstructure:"cache"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_PriorityOrder(t *testing.T) {
	path := writeFile(t, "config.yaml", `
base_url: http://file
cache:
  stale_time: 10s
  max_retry: 2
`)
	env := NewEnvSource("COHORT", PriorityEnv)
	env.environ = func() []string {
		return []string{"COHORT_CACHE__MAX_RETRY=5", "OTHER_CACHE__MAX_RETRY=9"}
	}

	l := NewLoader().
		AddSource(NewMapSource("flags", PriorityFlags, map[string]any{"base_url": "http://flag"})).
		AddSource(env).
		AddSource(NewFileSource(path, PriorityFile)).
		AddSource(NewMapSource("defaults", PriorityDefaults, map[string]any{
			"base_url": "http://default",
			"cache":    map[string]any{"stale_time": "1s"},
		}))
	require.NoError(t, l.Load())

	var cfg testConfig
	require.NoError(t, l.Unmarshal(&cfg))
	assert.Equal(t, "http://flag", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, 5, cfg.Cache.MaxRetry)
	assert.Equal(t, []string{path}, l.LoadedFiles())
}

func TestLoader_UnmarshalKey(t *testing.T) {
	l := NewLoader().AddSource(NewMapSource("m", 1, map[string]any{
		"cache.stale_time": "250ms",
	}))
	require.NoError(t, l.Load())

	var c testCacheConfig
	require.NoError(t, l.UnmarshalKey("cache", &c))
	assert.Equal(t, 250*time.Millisecond, c.StaleTime)
	assert.True(t, l.IsSet("cache.stale_time"))
	assert.Equal(t, "250ms", l.GetString("cache.stale_time"))
}

func TestFileSource_MissingFileIsEmpty(t *testing.T) {
	data, err := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"), PriorityFile).Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileSource_InvalidFile(t *testing.T) {
	path := writeFile(t, "broken.yaml", "cache: [unterminated")
	_, err := NewFileSource(path, PriorityFile).Load()
	assert.Error(t, err)

	l := NewLoader().AddSource(NewFileSource(path, PriorityFile))
	assert.ErrorContains(t, l.Load(), "load source file:")
}

func TestEnvSource_KeyMapping(t *testing.T) {
	s := NewEnvSource("COHORT", PriorityEnv)
	s.environ = func() []string {
		return []string{
			"COHORT_HTTP__BASE_URL=http://api",
			"COHORT_LEVEL=debug",
			"COHORT_=ignored",
			"PATH=/bin",
		}
	}
	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"http.base_url": "http://api", "level": "debug"}, data)

	empty, err := NewEnvSource("", PriorityEnv).Load()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLoaderBuilder(t *testing.T) {
	path := writeFile(t, "c.yaml", "cache:\n  max_retry: 1\n")
	l, err := NewLoaderBuilder().
		WithDefaults(map[string]any{"base_url": "http://default"}).
		WithConfigFile(path).
		WithOverrides(map[string]any{"cache.max_retry": 3}).
		Build()
	require.NoError(t, err)

	var cfg testConfig
	require.NoError(t, l.Unmarshal(&cfg))
	assert.Equal(t, "http://default", cfg.BaseURL)
	assert.Equal(t, 3, cfg.Cache.MaxRetry)
}

type stubValidator struct{ err error }

func (s stubValidator) Validate() error { return s.err }

func TestValidateAll(t *testing.T) {
	assert.NoError(t, ValidateAll(stubValidator{}, stubValidator{}))
	assert.EqualError(t, ValidateAll(stubValidator{}, stubValidator{err: assert.AnError}), assert.AnError.Error())
}
