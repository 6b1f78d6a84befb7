package commands

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// SaveLayoutPreferencesInput is the preferences payload: shell state (tab, sidebar,
// language) plus widget order and hidden widgets.
type SaveLayoutPreferencesInput struct {
	Viewer        dashboard.ViewerContext `json:"viewer"`
	Shell         *dashboard.ShellState   `json:"shell,omitempty"`
	AreaOrder     map[string][]string     `json:"area_order"`
	HiddenWidgets []string                `json:"hidden_widget_ids"`
}

// overrides converts the payload. The shell language, when present, becomes the saved locale.
func (in SaveLayoutPreferencesInput) overrides() dashboard.LayoutOverrides {
	out := dashboard.LayoutOverrides{
		Locale:        in.Viewer.Locale,
		Shell:         in.Shell,
		AreaOrder:     map[string][]string{},
		HiddenWidgets: map[string]bool{},
	}
	if in.Shell != nil && in.Shell.Language != "" {
		out.Locale = in.Shell.Language
	}
	for area, ids := range in.AreaOrder {
		if code, ok := dashboard.AreaCodeFor(area); ok {
			area = code
		}
		out.AreaOrder[area] = ids
	}
	for _, id := range in.HiddenWidgets {
		if id = strings.TrimSpace(id); id != "" {
			out.HiddenWidgets[id] = true
		}
	}
	return out
}

type preferenceService interface {
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// SaveLayoutPreferencesCommand persists per-user overrides.
type SaveLayoutPreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSaveLayoutPreferencesCommand creates the command.
func NewSaveLayoutPreferencesCommand(service preferenceService, telemetry Telemetry) *SaveLayoutPreferencesCommand {
	return &SaveLayoutPreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveLayoutPreferencesInput] = (*SaveLayoutPreferencesCommand)(nil)

// Execute saves the overrides for a signed-in viewer.
func (c *SaveLayoutPreferencesCommand) Execute(ctx context.Context, msg SaveLayoutPreferencesInput) error {
	if err := requireService("preferences", c.service != nil); err != nil {
		return err
	}
	if msg.Viewer.UserID == "" {
		return errAnonymous
	}
	overrides := msg.overrides()
	if err := c.service.SavePreferences(ctx, msg.Viewer, overrides); err != nil {
		return err
	}
	payload := map[string]any{
		"user_id": msg.Viewer.UserID,
		"areas":   len(overrides.AreaOrder),
		"hidden":  len(overrides.HiddenWidgets),
	}
	if msg.Shell != nil {
		payload["tab"] = msg.Shell.Tab
	}
	c.telemetry.Record(ctx, "dashboard.command.preferences", payload)
	return nil
}
