package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MetricCategory tags a metric for tab grouping.
type MetricCategory string

const (
	MetricCrops       MetricCategory = "crops"
	MetricLivestock   MetricCategory = "livestock"
	MetricMarket      MetricCategory = "market"
	MetricEnvironment MetricCategory = "environment"
)

// MetricTab selects which metrics the overview shows.
type MetricTab string

// MetricTabAll shows every metric.
const MetricTabAll MetricTab = "all"

var errInvalidMetricTab = errors.New("dashboard: unknown metric tab")

var metricTabLabels = map[MetricTab]string{
	MetricTabAll:                 "All Metrics",
	MetricTab(MetricCrops):       "Crops",
	MetricTab(MetricLivestock):   "Livestock",
	MetricTab(MetricMarket):      "Market",
	MetricTab(MetricEnvironment): "Environment",
}

// MetricTabs lists overview tabs in display order.
func MetricTabs() []MetricTab {
	return []MetricTab{
		MetricTabAll,
		MetricTab(MetricCrops),
		MetricTab(MetricLivestock),
		MetricTab(MetricMarket),
		MetricTab(MetricEnvironment),
	}
}

// ParseMetricTab validates a tab name. Empty input selects "all".
func ParseMetricTab(value string) (MetricTab, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return MetricTabAll, nil
	}
	for _, tab := range MetricTabs() {
		if string(tab) == value {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errInvalidMetricTab, value)
}

// Metric is a headline figure with a signed percent change.
type Metric struct {
	Title    string         `json:"title" yaml:"title"`
	Value    string         `json:"value" yaml:"value"`
	Change   float64        `json:"change" yaml:"change"`
	Icon     string         `json:"icon" yaml:"icon"`
	Accent   string         `json:"accent,omitempty" yaml:"accent,omitempty"`
	Category MetricCategory `json:"category" yaml:"category"`
}

// GroupMetrics keeps the metrics tagged with the tab's category, in input order.
// The "all" tab returns the input unchanged.
func GroupMetrics(metrics []Metric, tab MetricTab) []Metric {
	if tab == MetricTabAll {
		return metrics
	}
	out := make([]Metric, 0, len(metrics))
	for _, m := range metrics {
		if MetricTab(m.Category) == tab {
			out = append(out, m)
		}
	}
	return out
}

// MetricCard is the rendered form of a single metric.
type MetricCard struct {
	Title      string  `json:"title"`
	Value      string  `json:"value"`
	Icon       string  `json:"icon"`
	Accent     string  `json:"accent,omitempty"`
	Change     float64 `json:"change"`
	Positive   bool    `json:"positive"`
	Direction  string  `json:"direction"`
	ChangeText string  `json:"change_text"`
	Caption    string  `json:"caption"`
	ColorClass string  `json:"color_class"`
}

// NewMetricCard renders a metric. Zero change counts as positive.
func NewMetricCard(m Metric) MetricCard {
	positive := m.Change >= 0
	card := MetricCard{
		Title:      m.Title,
		Value:      m.Value,
		Icon:       m.Icon,
		Accent:     m.Accent,
		Change:     m.Change,
		Positive:   positive,
		ChangeText: strconv.FormatFloat(math.Abs(m.Change), 'f', -1, 64) + "%",
		Caption:    "from last month",
	}
	if positive {
		card.Direction = "up"
		card.ColorClass = "text-green-500"
	} else {
		card.Direction = "down"
		card.ColorClass = "text-red-500"
	}
	return card
}

// Period is the display-only reporting window of the metrics overview.
type Period string

// ParsePeriod validates a period. Empty input selects month.
func ParsePeriod(value string) (Period, error) {
	v, err := parseOption(metricPeriods, "period", value, "month")
	return Period(v), err
}

var metricRegions = []Option{
	{Value: "all", Label: "All Regions"},
	{Value: "north", Label: "Northern Region"},
	{Value: "central", Label: "Central Region"},
	{Value: "south", Label: "Southern Region"},
	{Value: "east", Label: "Eastern Region"},
	{Value: "west", Label: "Western Region"},
}

var metricPeriods = []Option{
	{Value: "day", Label: "Daily"},
	{Value: "week", Label: "Weekly"},
	{Value: "month", Label: "Monthly"},
	{Value: "quarter", Label: "Quarterly"},
	{Value: "year", Label: "Yearly"},
}

// MetricsOverviewView is the metrics overview for one tab.
type MetricsOverviewView struct {
	Title   string       `json:"title"`
	Tab     MetricTab    `json:"tab"`
	Tabs    []TabView    `json:"tabs"`
	Cards   []MetricCard `json:"cards"`
	Region  Region       `json:"region"`
	Regions []Option     `json:"regions"`
	Period  Period       `json:"period"`
	Periods []Option     `json:"periods"`
}

// BuildMetricsOverview groups metrics for the tab and renders cards.
// Region and period are shown as selected but do not filter.
func BuildMetricsOverview(metrics []Metric, tab MetricTab, region Region, period Period) MetricsOverviewView {
	if region == "" {
		region = RegionAll
	}
	if period == "" {
		period = "month"
	}
	view := MetricsOverviewView{
		Title:   "Key Metrics Overview",
		Tab:     tab,
		Region:  region,
		Regions: selectOptions(metricRegions, string(region)),
		Period:  period,
		Periods: selectOptions(metricPeriods, string(period)),
	}
	for _, t := range MetricTabs() {
		view.Tabs = append(view.Tabs, TabView{Value: string(t), Label: metricTabLabels[t], Active: t == tab})
	}
	grouped := GroupMetrics(metrics, tab)
	view.Cards = make([]MetricCard, 0, len(grouped))
	for _, m := range grouped {
		view.Cards = append(view.Cards, NewMetricCard(m))
	}
	return view
}
