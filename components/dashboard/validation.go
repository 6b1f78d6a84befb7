package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var errInvalidConfig = errors.New("dashboard: invalid widget configuration")

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// ConfigError lists every schema violation found in a widget configuration.
type ConfigError struct {
	Widget     string
	Violations []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dashboard: configuration for %s failed validation: %s", e.Widget, strings.Join(e.Violations, "; "))
}

// Unwrap lets errors.Is match the invalid configuration sentinel.
func (e *ConfigError) Unwrap() error { return errInvalidConfig }

// JSONSchemaValidator compiles widget schemas once per definition code.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Compile checks that the definition schema is usable and caches it.
func (v *JSONSchemaValidator) Compile(def WidgetDefinition) error {
	if len(def.Schema) == 0 {
		return nil
	}
	_, err := v.schemaFor(def)
	return err
}

// Validate checks config against the widget schema. Selector values such as data_type,
// view or chart are rejected when they fall outside the schema enums.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload, err := normalizeConfig(def.Code, config)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ConfigError{Widget: def.Code, Violations: flattenViolations(verr)}
		}
		return fmt.Errorf("dashboard: validate %s: %w", def.Code, err)
	}
	return nil
}

// normalizeConfig round-trips through JSON so numbers and nested maps match what the schema expects.
func normalizeConfig(code string, config map[string]any) (map[string]any, error) {
	payload := map[string]any{}
	if len(config) == 0 {
		return payload, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal config for %s: %w", code, err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("dashboard: normalize config for %s: %w", code, err)
	}
	return payload, nil
}

// flattenViolations collects leaf messages keyed by the offending field.
func flattenViolations(verr *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				field = "(root)"
			}
			out = append(out, field+": "+e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	sort.Strings(out)
	return out
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// ApplyConfigDefaults returns a copy of config with top-level schema defaults filled in.
// Keys already present are kept as is.
func ApplyConfigDefaults(def WidgetDefinition, config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = v
	}
	props, _ := def.Schema["properties"].(map[string]any)
	for key, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		value, ok := prop["default"]
		if !ok {
			continue
		}
		if _, set := out[key]; !set {
			out[key] = value
		}
	}
	return out
}
