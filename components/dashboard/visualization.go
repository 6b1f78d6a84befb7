package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ViewMode selects how the visualization renders its dataset.
type ViewMode string

const (
	ViewChart ViewMode = "chart"
	ViewMap   ViewMode = "map"
	ViewTable ViewMode = "table"
)

// ChartKind selects the chart drawn in chart mode.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// TimeRange is the selected reporting window. It is displayed but does not filter data.
type TimeRange string

// Region is the selected region. It is displayed but does not filter data.
type Region string

// RegionAll selects every region.
const RegionAll Region = "all"

const (
	defaultVisualizationTitle       = "Agricultural Data Visualization"
	defaultVisualizationDescription = "Interactive visualization of agricultural data"
)

var errInvalidSelection = errors.New("dashboard: invalid selection")

// Option is a select entry.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

var (
	viewModeOptions = []Option{
		{Value: string(ViewChart), Label: "Chart"},
		{Value: string(ViewMap), Label: "Map"},
		{Value: string(ViewTable), Label: "Table"},
	}
	chartKindOptions = []Option{
		{Value: string(ChartBar), Label: "Bar Chart"},
		{Value: string(ChartLine), Label: "Line Chart"},
		{Value: string(ChartPie), Label: "Pie Chart"},
	}
	timeRangeOptions = []Option{
		{Value: "day", Label: "Daily"},
		{Value: "week", Label: "Weekly"},
		{Value: "month", Label: "Monthly"},
		{Value: "year", Label: "Yearly"},
	}
	regionOptions = []Option{
		{Value: "all", Label: "All Regions"},
		{Value: "north", Label: "North"},
		{Value: "central", Label: "Central"},
		{Value: "south", Label: "South"},
		{Value: "east", Label: "East"},
		{Value: "west", Label: "West"},
	}
)

func selectOptions(options []Option, selected string) []Option {
	out := make([]Option, len(options))
	for i, opt := range options {
		opt.Selected = opt.Value == selected
		out[i] = opt
	}
	return out
}

func parseOption(options []Option, kind, value, fallback string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback, nil
	}
	for _, opt := range options {
		if opt.Value == value {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", errInvalidSelection, kind, value)
}

// ParseViewMode validates a view mode. Empty input selects chart.
func ParseViewMode(value string) (ViewMode, error) {
	v, err := parseOption(viewModeOptions, "view", value, string(ViewChart))
	return ViewMode(v), err
}

// ParseChartKind validates a chart kind. Empty input selects bar.
func ParseChartKind(value string) (ChartKind, error) {
	v, err := parseOption(chartKindOptions, "chart", value, string(ChartBar))
	return ChartKind(v), err
}

// ParseTimeRange validates a time range. Empty input selects month.
func ParseTimeRange(value string) (TimeRange, error) {
	v, err := parseOption(timeRangeOptions, "time_range", value, "month")
	return TimeRange(v), err
}

// ParseRegion validates a region. Empty input selects all.
func ParseRegion(value string) (Region, error) {
	v, err := parseOption(regionOptions, "region", value, string(RegionAll))
	return Region(v), err
}

// VisualizationState holds the independent selector toggles.
type VisualizationState struct {
	ViewMode  ViewMode  `json:"view"`
	ChartKind ChartKind `json:"chart"`
	TimeRange TimeRange `json:"time_range"`
	Region    Region    `json:"region"`
}

// DefaultVisualizationState is chart / bar / month / all.
func DefaultVisualizationState() VisualizationState {
	return VisualizationState{
		ViewMode:  ViewChart,
		ChartKind: ChartBar,
		TimeRange: "month",
		Region:    RegionAll,
	}
}

// WithViewMode returns the state with a new view mode.
func (s VisualizationState) WithViewMode(mode ViewMode) VisualizationState {
	s.ViewMode = mode
	return s
}

// WithChartKind returns the state with a new chart kind.
func (s VisualizationState) WithChartKind(kind ChartKind) VisualizationState {
	s.ChartKind = kind
	return s
}

// WithTimeRange returns the state with a new time range.
func (s VisualizationState) WithTimeRange(r TimeRange) VisualizationState {
	s.TimeRange = r
	return s
}

// WithRegion returns the state with a new region.
func (s VisualizationState) WithRegion(r Region) VisualizationState {
	s.Region = r
	return s
}

// ParseVisualizationState validates raw selector values. Empty values pick the defaults.
func ParseVisualizationState(view, chart, timeRange, region string) (VisualizationState, error) {
	var (
		state VisualizationState
		err   error
	)
	if state.ViewMode, err = ParseViewMode(view); err != nil {
		return VisualizationState{}, err
	}
	if state.ChartKind, err = ParseChartKind(chart); err != nil {
		return VisualizationState{}, err
	}
	if state.TimeRange, err = ParseTimeRange(timeRange); err != nil {
		return VisualizationState{}, err
	}
	if state.Region, err = ParseRegion(region); err != nil {
		return VisualizationState{}, err
	}
	return state, nil
}

func (s VisualizationState) normalized() VisualizationState {
	def := DefaultVisualizationState()
	if s.ViewMode == "" {
		s.ViewMode = def.ViewMode
	}
	if s.ChartKind == "" {
		s.ChartKind = def.ChartKind
	}
	if s.TimeRange == "" {
		s.TimeRange = def.TimeRange
	}
	if s.Region == "" {
		s.Region = def.Region
	}
	return s
}

// VisualizationOptions configures a Visualization. Zero values pick the defaults.
type VisualizationOptions struct {
	Title       string
	Description string
	DataType    DataType
	// Data overrides the fixture dataset for DataType when non-nil.
	Data *Dataset
}

// Visualization is the data visualization selector bound to a single dataset.
type Visualization struct {
	title       string
	description string
	dataType    DataType
	dataset     Dataset
	charts      *EChartsProvider
	maps        *MapRenderer
}

// NewVisualization resolves the dataset from opts.Data or the fixtures.
// Unknown data types fall back to the crops fixture.
func NewVisualization(fixtures *Fixtures, opts VisualizationOptions, charts *EChartsProvider) *Visualization {
	if opts.Title == "" {
		opts.Title = defaultVisualizationTitle
	}
	if opts.Description == "" {
		opts.Description = defaultVisualizationDescription
	}
	if opts.DataType == "" {
		opts.DataType = DataTypeCrops
	}
	if charts == nil {
		charts = NewEChartsProvider(string(ChartBar))
	}
	v := &Visualization{
		title:       opts.Title,
		description: opts.Description,
		dataType:    opts.DataType,
		charts:      charts,
		maps:        NewMapRenderer(),
	}
	if opts.Data != nil {
		v.dataset = opts.Data.Clone()
		v.dataset.Type = opts.DataType
	} else {
		if fixtures == nil {
			fixtures = DefaultFixtures()
		}
		v.dataset = fixtures.Dataset(opts.DataType)
		v.dataType = v.dataset.Type
	}
	return v
}

// Dataset returns a copy of the bound dataset.
func (v *Visualization) Dataset() Dataset {
	return v.dataset.Clone()
}

// ChartView is the chart-mode output.
type ChartView struct {
	Kind    ChartKind `json:"kind"`
	HTML    string    `json:"html"`
	Caption string    `json:"caption"`
	Theme   string    `json:"theme"`
}

// VisualizationView is a fully rendered selector. Exactly one of Chart, Map and
// Table is set, matching State.ViewMode.
type VisualizationView struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	DataType    DataType           `json:"data_type"`
	State       VisualizationState `json:"state"`
	ViewModes   []TabView          `json:"view_modes"`
	ChartKinds  []Option           `json:"chart_kinds,omitempty"`
	TimeRanges  []Option           `json:"time_ranges"`
	Regions     []Option           `json:"regions"`
	Chart       *ChartView         `json:"chart,omitempty"`
	Map         *MapView           `json:"map,omitempty"`
	Table       *TableView         `json:"table,omitempty"`
}

// Render draws the dataset for the state's view mode. Rendering never mutates the
// dataset, so repeated calls with the same state produce the same view.
func (v *Visualization) Render(ctx context.Context, viewer ViewerContext, state VisualizationState) (VisualizationView, error) {
	state = state.normalized()
	view := VisualizationView{
		Title:       v.title,
		Description: v.description,
		DataType:    v.dataType,
		State:       state,
		TimeRanges:  selectOptions(timeRangeOptions, string(state.TimeRange)),
		Regions:     selectOptions(regionOptions, string(state.Region)),
	}
	for _, opt := range viewModeOptions {
		view.ViewModes = append(view.ViewModes, TabView{Value: opt.Value, Label: opt.Label, Active: opt.Value == string(state.ViewMode)})
	}
	switch state.ViewMode {
	case ViewChart:
		view.ChartKinds = selectOptions(chartKindOptions, string(state.ChartKind))
		chart, err := v.renderChart(ctx, viewer, state.ChartKind)
		if err != nil {
			return VisualizationView{}, err
		}
		view.Chart = &chart
	case ViewMap:
		mapView, err := v.maps.Render(v.dataset)
		if err != nil {
			return VisualizationView{}, err
		}
		view.Map = &mapView
	case ViewTable:
		table := BuildTable(v.dataset)
		view.Table = &table
	default:
		return VisualizationView{}, fmt.Errorf("%w: view %q", errInvalidSelection, state.ViewMode)
	}
	return view, nil
}

func (v *Visualization) renderChart(ctx context.Context, viewer ViewerContext, kind ChartKind) (ChartView, error) {
	caption := fmt.Sprintf("%s chart visualization for %s data", headerLabel(string(kind)), v.dataType)
	html, theme, err := v.charts.RenderDataset(ctx, viewer, kind, v.title, v.dataset)
	if err != nil {
		return ChartView{}, err
	}
	return ChartView{Kind: kind, HTML: html, Caption: caption, Theme: theme}, nil
}
