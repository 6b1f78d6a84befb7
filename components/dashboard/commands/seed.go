package commands

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// SeedDashboardInput controls bootstrap behavior.
type SeedDashboardInput struct {
	// SeedLayout places the default agricultural widgets after areas and definitions exist.
	SeedLayout bool `json:"seed_layout"`
}

// SeedDashboardCommand registers the admin areas and widget definitions, then
// optionally places the default widgets.
type SeedDashboardCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs areas, definitions and layout in that order. Layout seeding is
// skipped when no service was provided.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.store == nil {
		return errMissingStore
	}
	if err := dashboard.RegisterAreas(ctx, c.store); err != nil {
		return fmt.Errorf("commands: seed areas: %w", err)
	}
	if err := dashboard.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
		return fmt.Errorf("commands: seed definitions: %w", err)
	}
	seeded := msg.SeedLayout && c.service != nil
	if seeded {
		if err := dashboard.SeedLayout(ctx, c.service); err != nil {
			return fmt.Errorf("commands: seed layout: %w", err)
		}
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{
		"areas":       len(dashboard.DefaultAreaDefinitions()),
		"definitions": len(dashboard.DefaultWidgetDefinitions()),
		"seed_layout": seeded,
	})
	return nil
}
