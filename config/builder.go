package config

// LoaderBuilder assembles the usual source stack: defaults, an optional file,
// prefixed environment variables and command line overrides.
type LoaderBuilder struct {
	defaults  map[string]any
	file      string
	envPrefix string
	overrides map[string]any
}

func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{}
}

func (b *LoaderBuilder) WithDefaults(values map[string]any) *LoaderBuilder {
	b.defaults = values
	return b
}

func (b *LoaderBuilder) WithConfigFile(path string) *LoaderBuilder {
	b.file = path
	return b
}

func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithOverrides sets values that win over every other source.
func (b *LoaderBuilder) WithOverrides(values map[string]any) *LoaderBuilder {
	b.overrides = values
	return b
}

// Build creates the loader and loads it once.
func (b *LoaderBuilder) Build() (*Loader, error) {
	l := NewLoader()
	if len(b.defaults) > 0 {
		l.AddSource(NewMapSource("defaults", PriorityDefaults, b.defaults))
	}
	if b.file != "" {
		l.AddSource(NewFileSource(b.file, PriorityFile))
	}
	if b.envPrefix != "" {
		l.AddSource(NewEnvSource(b.envPrefix, PriorityEnv))
	}
	if len(b.overrides) > 0 {
		l.AddSource(NewMapSource("flags", PriorityFlags, b.overrides))
	}
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}
