package config

// Source is one layer of configuration. Higher priorities override lower ones.
//
// Conventional priorities: defaults 1, config file 10, environment 50, command line 100.
type Source interface {
	Name() string
	Priority() int
	// Load returns flattened, dot separated keys such as "cache.stale_time".
	Load() (map[string]any, error)
}

const (
	PriorityDefaults = 1
	PriorityFile     = 10
	PriorityEnv      = 50
	PriorityFlags    = 100
)

// MapSource serves a fixed set of values, typically defaults or flag overrides.
type MapSource struct {
	name     string
	priority int
	values   map[string]any
}

// NewMapSource copies values; nested maps are flattened.
func NewMapSource(name string, priority int, values map[string]any) *MapSource {
	return &MapSource{name: name, priority: priority, values: flattenMap("", values)}
}

func (s *MapSource) Name() string { return "map:" + s.name }

func (s *MapSource) Priority() int { return s.priority }

func (s *MapSource) Load() (map[string]any, error) {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}
