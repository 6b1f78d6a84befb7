package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// AlertsInput selects the alerts tab for a viewer.
type AlertsInput struct {
	Viewer dashboard.ViewerContext
	Tab    string
}

type alertsService interface {
	Alerts(ctx context.Context, viewer dashboard.ViewerContext, tab dashboard.AlertTab) dashboard.AlertsView
}

// AlertsQuery lists the alerts panel for a tab.
type AlertsQuery struct {
	service alertsService
}

// NewAlertsQuery builds the query.
func NewAlertsQuery(service alertsService) *AlertsQuery {
	return &AlertsQuery{service: service}
}

var _ gocommand.Querier[AlertsInput, dashboard.AlertsView] = (*AlertsQuery)(nil)

// Query validates the tab and filters the alerts.
func (q *AlertsQuery) Query(ctx context.Context, input AlertsInput) (dashboard.AlertsView, error) {
	tab, err := dashboard.ParseAlertTab(input.Tab)
	if err != nil {
		return dashboard.AlertsView{}, err
	}
	return q.service.Alerts(ctx, input.Viewer, tab), nil
}

// MetricsInput selects the metrics tab, region and period for a viewer.
type MetricsInput struct {
	Viewer dashboard.ViewerContext
	Tab    string
	Region string
	Period string
}

type metricsService interface {
	MetricsOverview(ctx context.Context, viewer dashboard.ViewerContext, tab dashboard.MetricTab, region dashboard.Region, period dashboard.Period) dashboard.MetricsOverviewView
}

// MetricsQuery renders the metrics overview for a tab.
type MetricsQuery struct {
	service metricsService
}

// NewMetricsQuery builds the query.
func NewMetricsQuery(service metricsService) *MetricsQuery {
	return &MetricsQuery{service: service}
}

var _ gocommand.Querier[MetricsInput, dashboard.MetricsOverviewView] = (*MetricsQuery)(nil)

// Query validates the selectors and groups the metrics.
func (q *MetricsQuery) Query(ctx context.Context, input MetricsInput) (dashboard.MetricsOverviewView, error) {
	tab, err := dashboard.ParseMetricTab(input.Tab)
	if err != nil {
		return dashboard.MetricsOverviewView{}, err
	}
	region, err := dashboard.ParseRegion(input.Region)
	if err != nil {
		return dashboard.MetricsOverviewView{}, err
	}
	period, err := dashboard.ParsePeriod(input.Period)
	if err != nil {
		return dashboard.MetricsOverviewView{}, err
	}
	return q.service.MetricsOverview(ctx, input.Viewer, tab, region, period), nil
}
