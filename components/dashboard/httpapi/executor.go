package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/components/dashboard/commands"
	"github.com/goliatone/go-agridash/components/dashboard/queries"
)

var errMissingHandler = errors.New("httpapi: handler not configured")

// Executor is the transport-neutral surface behind the dashboard JSON routes.
type Executor interface {
	Layout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
	Area(ctx context.Context, input queries.WidgetAreaInput) (dashboard.ResolvedArea, error)
	Visualization(ctx context.Context, input queries.VisualizationInput) (dashboard.VisualizationView, error)
	Export(ctx context.Context, dataType string, w io.Writer) error
	Alerts(ctx context.Context, input queries.AlertsInput) (dashboard.AlertsView, error)
	Metrics(ctx context.Context, input queries.MetricsInput) (dashboard.MetricsOverviewView, error)
	Connection(ctx context.Context, input queries.ConnectionInput) (dashboard.ProbeStatus, error)
	MarkAlertRead(ctx context.Context, input commands.MarkAlertReadInput) error
	Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
}

// Exporter writes a dataset workbook.
type Exporter interface {
	ExportDataset(ctx context.Context, dt dashboard.DataType, w io.Writer) error
}

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	LayoutQuerier        gocommand.Querier[dashboard.ViewerContext, dashboard.Layout]
	AreaQuerier          gocommand.Querier[queries.WidgetAreaInput, dashboard.ResolvedArea]
	VisualizationQuerier gocommand.Querier[queries.VisualizationInput, dashboard.VisualizationView]
	AlertsQuerier        gocommand.Querier[queries.AlertsInput, dashboard.AlertsView]
	MetricsQuerier       gocommand.Querier[queries.MetricsInput, dashboard.MetricsOverviewView]
	ConnectionQuerier    gocommand.Querier[queries.ConnectionInput, dashboard.ProbeStatus]
	MarkReadCommander    gocommand.Commander[commands.MarkAlertReadInput]
	PreferencesCommander gocommand.Commander[commands.SaveLayoutPreferencesInput]
	RefreshCommander     gocommand.Commander[commands.RefreshWidgetInput]
	Exporter             Exporter
}

// NewCommandExecutor wires every command and query to a single service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		LayoutQuerier:        queries.NewLayoutQuery(service),
		AreaQuerier:          queries.NewWidgetAreaQuery(service),
		VisualizationQuerier: queries.NewVisualizationQuery(service),
		AlertsQuerier:        queries.NewAlertsQuery(service),
		MetricsQuerier:       queries.NewMetricsQuery(service),
		ConnectionQuerier:    queries.NewConnectionQuery(service),
		MarkReadCommander:    commands.NewMarkAlertReadCommand(service, telemetry),
		PreferencesCommander: commands.NewSaveLayoutPreferencesCommand(service, telemetry),
		RefreshCommander:     commands.NewRefreshWidgetCommand(service, telemetry),
		Exporter:             service,
	}
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Layout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error) {
	if e.LayoutQuerier == nil {
		return dashboard.Layout{}, errMissingHandler
	}
	return e.LayoutQuerier.Query(ctx, viewer)
}

func (e *CommandExecutor) Area(ctx context.Context, input queries.WidgetAreaInput) (dashboard.ResolvedArea, error) {
	if e.AreaQuerier == nil {
		return dashboard.ResolvedArea{}, errMissingHandler
	}
	return e.AreaQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Visualization(ctx context.Context, input queries.VisualizationInput) (dashboard.VisualizationView, error) {
	if e.VisualizationQuerier == nil {
		return dashboard.VisualizationView{}, errMissingHandler
	}
	return e.VisualizationQuerier.Query(ctx, input)
}

// Export validates the data type and streams the workbook to w.
func (e *CommandExecutor) Export(ctx context.Context, dataType string, w io.Writer) error {
	if e.Exporter == nil {
		return errMissingHandler
	}
	dt, err := dashboard.ParseDataType(dataType)
	if err != nil {
		return err
	}
	return e.Exporter.ExportDataset(ctx, dt, w)
}

func (e *CommandExecutor) Alerts(ctx context.Context, input queries.AlertsInput) (dashboard.AlertsView, error) {
	if e.AlertsQuerier == nil {
		return dashboard.AlertsView{}, errMissingHandler
	}
	return e.AlertsQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Metrics(ctx context.Context, input queries.MetricsInput) (dashboard.MetricsOverviewView, error) {
	if e.MetricsQuerier == nil {
		return dashboard.MetricsOverviewView{}, errMissingHandler
	}
	return e.MetricsQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Connection(ctx context.Context, input queries.ConnectionInput) (dashboard.ProbeStatus, error) {
	if e.ConnectionQuerier == nil {
		return dashboard.ProbeStatus{}, errMissingHandler
	}
	return e.ConnectionQuerier.Query(ctx, input)
}

func (e *CommandExecutor) MarkAlertRead(ctx context.Context, input commands.MarkAlertReadInput) error {
	if e.MarkReadCommander == nil {
		return errMissingHandler
	}
	return e.MarkReadCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SaveLayoutPreferencesInput) error {
	if e.PreferencesCommander == nil {
		return errMissingHandler
	}
	return e.PreferencesCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	if e.RefreshCommander == nil {
		return errMissingHandler
	}
	return e.RefreshCommander.Execute(ctx, input)
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case commands.IsInvalidInput(err):
		return http.StatusBadRequest
	case dashboard.IsNotFound(err), errors.Is(err, queries.ErrUnknownArea):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
