// Package config layers configuration sources and decodes them into structs through viper.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges sources by priority.
type Loader struct {
	sources     []Source
	merged      map[string]any
	v           *viper.Viper
	loadedFiles []string
}

func NewLoader() *Loader {
	return &Loader{merged: make(map[string]any), v: viper.New()}
}

func (l *Loader) AddSource(s Source) *Loader {
	l.sources = append(l.sources, s)
	return l
}

// Load reads every source, lowest priority first.
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]any)
	var files []string
	for _, s := range l.sources {
		data, err := s.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", s.Name(), err)
		}
		if fs, ok := s.(*FileSource); ok && len(data) > 0 {
			files = append(files, fs.Path())
		}
		for k, v := range data {
			merged[k] = v
		}
	}

	v := viper.New()
	for k, val := range unflattenMap(merged) {
		v.Set(k, val)
	}
	l.merged, l.v, l.loadedFiles = merged, v, files
	return nil
}

// Unmarshal decodes the merged configuration, honouring mapstructure tags.
// Durations may be given as strings such as "30s".
func (l *Loader) Unmarshal(out any) error {
	return l.v.Unmarshal(out)
}

// UnmarshalKey decodes a single section.
func (l *Loader) UnmarshalKey(key string, out any) error {
	return l.v.UnmarshalKey(key, out)
}

func (l *Loader) Get(key string) any { return l.v.Get(key) }

func (l *Loader) GetString(key string) string { return l.v.GetString(key) }

func (l *Loader) IsSet(key string) bool { return l.v.IsSet(key) }

func (l *Loader) AllSettings() map[string]any { return l.v.AllSettings() }

// LoadedFiles lists the files that contributed values.
func (l *Loader) LoadedFiles() []string { return l.loadedFiles }

func unflattenMap(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = value
	}
	return out
}
