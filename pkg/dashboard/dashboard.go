package dashboard

import (
	"context"

	core "github.com/goliatone/go-agridash/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Fixtures is the read-only data source shared by every widget.
type Fixtures = core.Fixtures

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// LoadFixtures reads a fixture document from path, or returns the bundled fixtures when path is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	if path == "" {
		return core.DefaultFixtures(), nil
	}
	return core.LoadFixturesFile(path)
}

// NewSeededService builds a service over an in-memory widget store and seeds the default layout.
func NewSeededService(ctx context.Context, opts Options) (*Service, error) {
	if opts.WidgetStore == nil {
		opts.WidgetStore = core.NewInMemoryWidgetStore()
	}
	service := core.NewService(opts)
	if _, err := core.Bootstrap(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}
