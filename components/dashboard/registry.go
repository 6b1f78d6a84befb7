package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	errMissingWidgetCode = errors.New("dashboard: widget definition code is required")
	errNilProvider       = errors.New("dashboard: provider cannot be nil")
	errUnknownWidget     = errors.New("dashboard: widget definition not registered")
)

// WidgetRegistration pairs a definition with an optional provider for bulk registration.
type WidgetRegistration struct {
	Definition WidgetDefinition
	Provider   Provider
}

// Registry implements ProviderRegistry. Schemas are compiled when a definition is
// registered so a broken schema fails at startup instead of on the first widget add.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]WidgetDefinition
	providers   map[string]Provider
	schemas     *JSONSchemaValidator
}

// NewRegistry builds a registry preloaded with the agricultural widgets and their providers.
func NewRegistry() *Registry {
	reg := newRegistry()
	providers := defaultProviders()
	for _, def := range DefaultWidgetDefinitions() {
		_ = reg.Register(WidgetRegistration{Definition: def, Provider: providers[def.Code]})
	}
	return reg
}

func newRegistry() *Registry {
	return &Registry{
		definitions: map[string]WidgetDefinition{},
		providers:   map[string]Provider{},
		schemas:     NewJSONSchemaValidator(),
	}
}

// Register adds definitions and their providers in order and stops at the first failure.
func (r *Registry) Register(items ...WidgetRegistration) error {
	for _, item := range items {
		if err := r.RegisterDefinition(item.Definition); err != nil {
			return err
		}
		if item.Provider == nil {
			continue
		}
		if err := r.RegisterProvider(item.Definition.Code, item.Provider); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata after compiling its schema.
// Registering the same code again replaces the definition.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	def.Code = strings.TrimSpace(def.Code)
	if def.Code == "" {
		return errMissingWidgetCode
	}
	if err := r.schemas.Compile(def); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider with an already registered definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return errMissingWidgetCode
	}
	if provider == nil {
		return fmt.Errorf("%w: %s", errNilProvider, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("%w: %s", errUnknownWidget, code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a widget provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []WidgetDefinition {
	return r.filter(func(WidgetDefinition) bool { return true })
}

// InCategory returns the definitions of one category (metrics, visualization, alerts...) sorted by code.
func (r *Registry) InCategory(category string) []WidgetDefinition {
	return r.filter(func(def WidgetDefinition) bool { return def.Category == category })
}

// Categories lists the distinct categories in alphabetical order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, def := range r.definitions {
		if def.Category == "" {
			continue
		}
		if _, ok := seen[def.Category]; ok {
			continue
		}
		seen[def.Category] = struct{}{}
		out = append(out, def.Category)
	}
	sort.Strings(out)
	return out
}

// DatasetWidgets returns the codes of widgets whose configuration selects a dataset.
func (r *Registry) DatasetWidgets() []string {
	defs := r.filter(showsDataset)
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = def.Code
	}
	return out
}

func (r *Registry) filter(keep func(WidgetDefinition) bool) []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		if keep(def) {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// showsDataset reports whether the definition schema declares a data_type property.
func showsDataset(def WidgetDefinition) bool {
	props, _ := def.Schema["properties"].(map[string]any)
	_, ok := props["data_type"]
	return ok
}
