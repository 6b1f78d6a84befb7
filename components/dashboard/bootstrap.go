package dashboard

import (
	"context"
	"errors"
	"fmt"
)

var errBootstrapService = errors.New("dashboard: service is required to bootstrap")

// BootstrapReport says what a Bootstrap run changed. Reruns against a populated
// store report zero created rows and Seeded false.
type BootstrapReport struct {
	AreasCreated       int
	DefinitionsCreated int
	Seeded             bool
}

// RegisterAreas ensures the metrics, main and sidebar areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	_, err := ensureAreas(ctx, store)
	return err
}

// RegisterDefinitions stores the agricultural widget definitions and, when registry
// is set, registers them there too.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	_, err := ensureDefinitions(ctx, store, registry)
	return err
}

func ensureAreas(ctx context.Context, store WidgetStore) (int, error) {
	if store == nil {
		return 0, errMissingWidgetStore
	}
	created := 0
	for _, area := range DefaultAreaDefinitions() {
		ok, err := store.EnsureArea(ctx, area)
		if err != nil {
			return created, fmt.Errorf("dashboard: ensure area %s: %w", area.Code, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func ensureDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) (int, error) {
	if store == nil {
		return 0, errMissingWidgetStore
	}
	created := 0
	for _, def := range DefaultWidgetDefinitions() {
		ok, err := store.EnsureDefinition(ctx, def)
		if err != nil {
			return created, fmt.Errorf("dashboard: ensure definition %s: %w", def.Code, err)
		}
		if ok {
			created++
		}
		if registry == nil {
			continue
		}
		if err := registry.RegisterDefinition(def); err != nil {
			return created, fmt.Errorf("dashboard: register definition %s: %w", def.Code, err)
		}
	}
	return created, nil
}

// SeedLayout places the starter widgets: stat cards, the visualization selector,
// the connection status and the alerts panel. Every failure is reported.
func SeedLayout(ctx context.Context, service *Service) error {
	if service == nil {
		return errBootstrapService
	}
	var errs []error
	for _, req := range DefaultSeedWidgets() {
		if err := service.AddWidget(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("dashboard: seed %s: %w", req.DefinitionID, err))
		}
	}
	return errors.Join(errs...)
}

// Bootstrap registers areas and definitions, then seeds the starter layout when every area is empty.
func Bootstrap(ctx context.Context, service *Service) (BootstrapReport, error) {
	var report BootstrapReport
	if service == nil {
		return report, errBootstrapService
	}
	store, err := service.widgetStore()
	if err != nil {
		return report, err
	}
	if report.AreasCreated, err = ensureAreas(ctx, store); err != nil {
		return report, err
	}
	if report.DefinitionsCreated, err = ensureDefinitions(ctx, store, nil); err != nil {
		return report, err
	}
	empty, err := areasEmpty(ctx, store, service.areaList())
	if err != nil || !empty {
		return report, err
	}
	if err := SeedLayout(ctx, service); err != nil {
		return report, err
	}
	report.Seeded = true
	service.recordTelemetry(ctx, "dashboard.bootstrap", map[string]any{
		"areas":       report.AreasCreated,
		"definitions": report.DefinitionsCreated,
	})
	return report, nil
}

func areasEmpty(ctx context.Context, store WidgetStore, areas []string) (bool, error) {
	for _, area := range areas {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: area})
		if err != nil {
			return false, fmt.Errorf("dashboard: inspect area %s: %w", area, err)
		}
		if len(resolved.Widgets) > 0 {
			return false, nil
		}
	}
	return true, nil
}
