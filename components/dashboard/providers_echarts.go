package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// EChartsProvider renders server-side chart HTML for datasets.
type EChartsProvider struct {
	chartKind     ChartKind
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
	translator    TranslationService
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.themeResolver = resolver
	}
}

// WithChartAssetsHost loads the ECharts scripts from host instead of the public bucket.
// Empty or malformed hosts keep the current one.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		if normalized, err := NormalizeAssetsHost(host); err == nil && normalized != "" {
			p.assetsHost = normalized
		}
	}
}

// WithChartTranslator localizes titles and series names.
func WithChartTranslator(svc TranslationService) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.translator = svc
	}
}

// NewEChartsProvider builds a provider whose widget default is chartKind.
func NewEChartsProvider(chartKind string, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		chartKind:  ChartKind(strings.ToLower(chartKind)),
		cache:      sharedChartCache,
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch renders the configured dataset as a chart widget.
// Config keys: data_type, chart, title, theme.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	dataType, err := ParseDataType(meta.Setting("data_type"))
	if err != nil {
		return nil, err
	}
	kind := p.chartKind
	if raw := meta.Setting("chart"); raw != "" {
		if kind, err = ParseChartKind(raw); err != nil {
			return nil, err
		}
	}
	ds := resolveDataset(ctx, meta.Datasets, meta.Fixtures, dataType, nil)
	title := meta.SettingOr("title", headerLabel(string(dataType)))
	theme := meta.SettingOr("theme", p.resolveTheme(meta.Viewer))
	html, err := p.renderDataset(ctx, meta.Viewer, kind, title, theme, ds)
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_html": html,
		"chart_type": string(kind),
		"data_type":  string(dataType),
		"title":      title,
		"theme":      theme,
	}, nil
}

// RenderDataset draws ds as the requested chart kind and returns HTML plus the theme used.
func (p *EChartsProvider) RenderDataset(ctx context.Context, viewer ViewerContext, kind ChartKind, title string, ds Dataset) (string, string, error) {
	theme := p.resolveTheme(viewer)
	html, err := p.renderDataset(ctx, viewer, kind, title, theme, ds)
	return html, theme, err
}

func (p *EChartsProvider) renderDataset(ctx context.Context, viewer ViewerContext, kind ChartKind, title, theme string, ds Dataset) (string, error) {
	if kind == "" {
		kind = p.chartKind
	}
	title = translateOrFallback(ctx, p.translator, "dashboard.chart."+string(ds.Type)+".title", viewer.Locale, title, nil)
	labels, series := datasetSeries(ds)
	p.translateSeries(ctx, viewer, series)

	key := chartKey{
		DataType: ds.Type,
		Kind:     kind,
		Theme:    theme,
		Locale:   viewer.Locale,
		Content: contentHash(struct {
			Title   string
			Records []Record
		}{title, ds.Records}),
	}
	renderFn := func() (string, error) {
		return p.render(kind, chartID(key), title, labels, series, theme)
	}
	if p.cache == nil {
		return renderFn()
	}
	return p.cache.GetOrRender(key.String(), renderFn)
}

// chartID names the chart element after its cache key so equal inputs render equal HTML.
func chartID(key chartKey) string {
	return "chart_" + contentHash(key.String())[:16]
}

// InvalidateDataset drops cached charts drawn from dt. Caches that cannot
// scope by dataset are left alone and 0 is returned.
func (p *EChartsProvider) InvalidateDataset(dt DataType) int {
	inv, ok := p.cache.(datasetInvalidator)
	if !ok {
		return 0
	}
	return inv.InvalidateDataType(dt)
}

func (p *EChartsProvider) render(kind ChartKind, id, title string, labels []string, series []ChartSeries, theme string) (string, error) {
	switch kind {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(p.globalChartOptions(id, title, theme)...)
		bar.SetXAxis(labels)
		for _, s := range series {
			bar.AddSeries(s.Name, toBarData(labels, s.Values))
		}
		return renderChart(bar)
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(p.globalChartOptions(id, title, theme)...)
		line.SetXAxis(labels)
		for _, s := range series {
			line.AddSeries(s.Name, toLineData(labels, s.Values))
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(p.globalChartOptions(id, title, theme)...)
		if len(series) > 0 {
			pie.AddSeries(series[0].Name, toPieData(labels, series[0].Values))
		}
		return renderChart(pie)
	default:
		return "", fmt.Errorf("%w: chart %q", errInvalidSelection, kind)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(id, title, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		ChartID: id,
		Theme:   theme,
		Width:   "100%",
		Height:  defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func (p *EChartsProvider) resolveTheme(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

func (p *EChartsProvider) translateSeries(ctx context.Context, viewer ViewerContext, series []ChartSeries) {
	if p.translator == nil {
		return
	}
	for i := range series {
		key := "dashboard.field." + series[i].Key
		series[i].Name = translateOrFallback(ctx, p.translator, key, viewer.Locale, series[i].Name, nil)
	}
}

// ChartSeries is one numeric column plotted across the dataset's records.
type ChartSeries struct {
	Key    string
	Name   string
	Values []float64
}

// datasetSeries labels each record by the first string column of the first record
// and turns every numeric column into a series. Missing or non-numeric cells plot as 0.
func datasetSeries(ds Dataset) ([]string, []ChartSeries) {
	if len(ds.Records) == 0 {
		return []string{}, nil
	}
	columns := ColumnsOf(ds.Records[0])
	labelKey := ""
	var series []ChartSeries
	for _, col := range columns {
		value, _ := ds.Records[0].Get(col.Key)
		if value.IsNumber() {
			series = append(series, ChartSeries{Key: col.Key, Name: col.Label})
		} else if labelKey == "" {
			labelKey = col.Key
		}
	}
	labels := make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		labels[i] = fmt.Sprintf("Item %d", i+1)
		if labelKey != "" {
			if value, ok := rec.Get(labelKey); ok && value.String() != "" {
				labels[i] = value.String()
			}
		}
		for j := range series {
			value, _ := rec.Get(series[j].Key)
			var n float64
			if value.IsNumber() {
				n = value.Num
			}
			series[j].Values = append(series[j].Values, n)
		}
	}
	return labels, series
}

func toBarData(labels []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, value := range values {
		data[i] = opts.BarData{Name: labels[i], Value: value}
	}
	return data
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, value := range values {
		data[i] = opts.LineData{Name: labels[i], Value: value}
	}
	return data
}

func toPieData(labels []string, values []float64) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i, value := range values {
		name := labels[i]
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: value}
	}
	return data
}

