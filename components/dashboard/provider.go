package dashboard

import (
	"context"
	"strings"
)

// Provider produces the template data for one widget kind.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext is what a provider sees: the placed instance, the viewer and the
// shared read-only sources (fixtures, live datasets, connection probe).
type WidgetContext struct {
	Instance   WidgetInstance
	Viewer     ViewerContext
	Translator TranslationService
	Fixtures   *Fixtures
	Datasets   DatasetSource
	Probe      *ConnectionProbe
}

// Setting returns a trimmed string setting from the instance configuration, or "".
func (c WidgetContext) Setting(key string) string {
	s, _ := c.Instance.Configuration[key].(string)
	return strings.TrimSpace(s)
}

// SettingOr is Setting with a fallback for missing or blank values.
func (c WidgetContext) SettingOr(key, fallback string) string {
	if s := c.Setting(key); s != "" {
		return s
	}
	return fallback
}

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any
