package config

import (
	"fmt"

	"github.com/samber/do/v2"
)

// ProvideLoader registers a builder-made Loader in a do injector.
//
//	do.Provide(injector, config.ProvideLoader(config.NewLoaderBuilder().WithConfigFile(path)))
func ProvideLoader(b *LoaderBuilder) func(do.Injector) (*Loader, error) {
	return func(do.Injector) (*Loader, error) {
		l, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("config loader build failed: %w", err)
		}
		return l, nil
	}
}
