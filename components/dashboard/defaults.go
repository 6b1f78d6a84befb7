package dashboard

import (
	"maps"

	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	AreaMetrics = "agri.dashboard.metrics"
	AreaMain    = "agri.dashboard.main"
	AreaSidebar = "agri.dashboard.sidebar"
)

const (
	WidgetMetricsOverview  = "agri.widget.metrics_overview"
	WidgetVisualization    = "agri.widget.visualization"
	WidgetAlertsPanel      = "agri.widget.alerts_panel"
	WidgetConnectionStatus = "agri.widget.connection_status"
	WidgetDatasetChart     = "agri.widget.dataset_chart"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaMetrics, Name: "Overview (Metrics)", Description: "Key metric cards above the fold"},
	{Code: AreaMain, Name: "Overview (Main)", Description: "Primary visualization canvas"},
	{Code: AreaSidebar, Name: "Overview (Sidebar)", Description: "Alerts and status"},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: WidgetMetricsOverview,
		Name: "Key Metrics Overview",
		NameLocalized: map[string]string{
			"ar": "نظرة عامة على المؤشرات الرئيسية",
		},
		Description: "Metric cards grouped by category",
		Category:    "metrics",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tab":    map[string]any{"type": "string", "enum": optionValues(metricTabOptions()), "default": "all"},
				"region": map[string]any{"type": "string", "enum": optionValues(metricRegions), "default": "all"},
				"period": map[string]any{"type": "string", "enum": optionValues(metricPeriods), "default": "month"},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetVisualization,
		Name: "Agricultural Data Visualization",
		NameLocalized: map[string]string{
			"ar": "تصور البيانات الزراعية",
		},
		Description: "Chart, map or table view of a dataset",
		DescriptionLocalized: map[string]string{
			"ar": "عرض البيانات كمخطط أو خريطة أو جدول",
		},
		Category: "visualization",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data_type":   dataTypeSchema(),
				"view":        map[string]any{"type": "string", "enum": optionValues(viewModeOptions), "default": "chart"},
				"chart":       map[string]any{"type": "string", "enum": optionValues(chartKindOptions), "default": "bar"},
				"time_range":  map[string]any{"type": "string", "enum": optionValues(timeRangeOptions), "default": "month"},
				"region":      map[string]any{"type": "string", "enum": optionValues(regionOptions), "default": "all"},
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetAlertsPanel,
		Name: "Alert Notifications",
		NameLocalized: map[string]string{
			"ar": "الإشعارات والتنبيهات",
		},
		Description: "Weather, pest and market alerts",
		Category:    "alerts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tab":   map[string]any{"type": "string", "enum": []string{"all", "weather", "pest", "market"}, "default": "all"},
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetConnectionStatus,
		Name:        "Database Connection",
		Description: "Data store reachability",
		Category:    "status",
		Schema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetDatasetChart,
		Name:        "Dataset Chart",
		Description: "Single chart of an agricultural dataset",
		Category:    "charts",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"data_type"},
			"properties": map[string]any{
				"data_type": dataTypeSchema(),
				"chart":     map[string]any{"type": "string", "enum": optionValues(chartKindOptions), "default": "bar"},
				"title":     map[string]any{"type": "string"},
				"theme": map[string]any{
					"type": "string",
					"enum": []string{
						string(types.ThemeWesteros),
						string(types.ThemeWalden),
						string(types.ThemeWonderland),
						string(types.ThemeChalk),
					},
				},
			},
			"additionalProperties": false,
		},
	},
}

func dataTypeSchema() map[string]any {
	values := make([]string, 0, len(DataTypes()))
	for _, dt := range DataTypes() {
		values = append(values, string(dt))
	}
	return map[string]any{"type": "string", "enum": values, "default": string(DataTypeCrops)}
}

func optionValues(options []Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Value
	}
	return out
}

func metricTabOptions() []Option {
	tabs := MetricTabs()
	out := make([]Option, len(tabs))
	for i, tab := range tabs {
		out[i] = Option{Value: string(tab), Label: metricTabLabels[tab]}
	}
	return out
}

var defaultSeedConfigs = []AddWidgetRequest{
	{
		DefinitionID:  WidgetMetricsOverview,
		AreaCode:      AreaMetrics,
		Configuration: map[string]any{"tab": "all"},
	},
	{
		DefinitionID:  WidgetVisualization,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"data_type": "crops", "view": "chart", "chart": "bar"},
	},
	{
		DefinitionID:  WidgetAlertsPanel,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{"tab": "all"},
	},
	{
		DefinitionID:  WidgetConnectionStatus,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{},
	},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultAreaCodes returns the overview areas in render order.
func DefaultAreaCodes() []string {
	out := make([]string, len(defaultAreaDefinitions))
	for i, area := range defaultAreaDefinitions {
		out[i] = area.Code
	}
	return out
}

// AreaCodeFor resolves a short area name ("main") or a full area code to the area code.
func AreaCodeFor(name string) (string, bool) {
	for _, area := range defaultAreaDefinitions {
		if name == area.Code || name == shortCode(area.Code) {
			return area.Code, true
		}
	}
	return "", false
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns the overview's starter widgets.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		cfg.Configuration = maps.Clone(cfg.Configuration)
		out[i] = cfg
	}
	return out
}
