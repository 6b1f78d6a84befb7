package dashboard

import (
	"context"
)

func defaultProviders() map[string]Provider {
	return map[string]Provider{
		WidgetMetricsOverview:  ProviderFunc(fetchMetricsOverview),
		WidgetVisualization:    ProviderFunc(fetchVisualization),
		WidgetAlertsPanel:      ProviderFunc(fetchAlertsPanel),
		WidgetConnectionStatus: ProviderFunc(fetchConnectionStatus),
		WidgetDatasetChart:     NewEChartsProvider(string(ChartBar)),
	}
}

func widgetFixtures(meta WidgetContext) *Fixtures {
	if meta.Fixtures != nil {
		return meta.Fixtures
	}
	return DefaultFixtures()
}

func fetchMetricsOverview(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	tab, err := ParseMetricTab(meta.Setting("tab"))
	if err != nil {
		return nil, err
	}
	region, err := ParseRegion(meta.Setting("region"))
	if err != nil {
		return nil, err
	}
	period, err := ParsePeriod(meta.Setting("period"))
	if err != nil {
		return nil, err
	}
	view := BuildMetricsOverview(widgetFixtures(meta).Metrics(), tab, region, period)
	view.Title = translateOrFallback(ctx, meta.Translator, "dashboard.metrics.title", meta.Viewer.Locale, view.Title, nil)
	return WidgetData{"overview": view}, nil
}

func fetchVisualization(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	dataType, err := ParseDataType(meta.Setting("data_type"))
	if err != nil {
		return nil, err
	}
	state, err := ParseVisualizationState(
		meta.Setting("view"),
		meta.Setting("chart"),
		meta.Setting("time_range"),
		meta.Setting("region"),
	)
	if err != nil {
		return nil, err
	}
	charts := NewEChartsProvider(string(ChartBar), WithChartTranslator(meta.Translator))
	ds := resolveDataset(ctx, meta.Datasets, widgetFixtures(meta), dataType, nil)
	viz := NewVisualization(widgetFixtures(meta), VisualizationOptions{
		Title:       meta.Setting("title"),
		Description: meta.Setting("description"),
		DataType:    ds.Type,
		Data:        &ds,
	}, charts)
	view, err := viz.Render(ctx, meta.Viewer, state)
	if err != nil {
		return nil, err
	}
	return WidgetData{"visualization": view}, nil
}

func fetchAlertsPanel(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	tab, err := ParseAlertTab(meta.Setting("tab"))
	if err != nil {
		return nil, err
	}
	view := BuildAlertsView(widgetFixtures(meta).Alerts(), tab)
	if limit, ok := intValue(meta.Instance.Configuration["limit"]); ok && limit > 0 && len(view.Items) > limit {
		view.Items = view.Items[:limit]
	}
	view.Title = translateOrFallback(ctx, meta.Translator, "dashboard.alerts.title", meta.Viewer.Locale, view.Title, nil)
	return WidgetData{"alerts": view}, nil
}

func fetchConnectionStatus(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if meta.Probe == nil {
		return WidgetData{"status": ProbeStatus{
			State:   ProbeError,
			Label:   probeLabels[ProbeError],
			Message: "data store not configured",
		}}, nil
	}
	meta.Probe.Start(context.WithoutCancel(ctx))
	status := meta.Probe.Status()
	if status.State == ProbeChecking {
		status.Label = translateOrFallback(ctx, meta.Translator, "dashboard.probe.checking", meta.Viewer.Locale, status.Label, nil)
	}
	return WidgetData{"status": status}, nil
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
