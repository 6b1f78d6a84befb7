package dashboard

import (
	"context"
	"time"
)

// Refresh reasons carried by WidgetEvent.
const (
	ReasonAdd            = "add"
	ReasonAlertRead      = "alert.read"
	ReasonDatasetChanged = "dataset_changed"
)

// WidgetStore keeps the farm dashboard's areas, widget definitions and placed widgets.
// EnsureArea and EnsureDefinition report whether a row was created.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer decides per widget whether a viewer may see it.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore holds each viewer's tab, sidebar and widget arrangement.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry maps widget codes to definitions and data providers.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook is told when a placed widget should be redrawn.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition is one region of the page: metrics, main or sidebar.
type WidgetAreaDefinition struct {
	Code        string
	Name        string
	Description string
}

// WidgetDefinition names a widget kind and the JSON schema of its settings.
type WidgetDefinition struct {
	Code                 string
	Name                 string
	NameLocalized        map[string]string
	Description          string
	DescriptionLocalized map[string]string
	Schema               map[string]any
	Category             string
}

// WidgetInstance is a configured widget, for example a market chart in the main area.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// WidgetVisibility limits a widget to roles and an optional display window.
type WidgetVisibility struct {
	Roles   []string
	StartAt *time.Time
	EndAt   *time.Time
}

type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ResolveAreaInput asks for the widgets of one area visible to Audience (viewer roles).
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	Locale   string
}

type ResolvedArea struct {
	AreaCode string
	Widgets  []WidgetInstance
}

// LayoutOverrides is what a viewer changed: widget order, hidden widgets and shell state.
type LayoutOverrides struct {
	Locale        string              `json:"locale,omitempty"`
	AreaOrder     map[string][]string `json:"area_order,omitempty"`
	HiddenWidgets map[string]bool     `json:"hidden_widgets,omitempty"`
	Shell         *ShellState         `json:"shell,omitempty"`
}

// ViewerContext identifies who is looking at the dashboard. An empty UserID is anonymous.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// Layout is the arranged widgets keyed by area code.
type Layout struct {
	Areas map[string][]WidgetInstance
}

// WidgetEvent is pushed to refresh hooks. Reason is one of the Reason constants
// or a caller supplied label.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
}
