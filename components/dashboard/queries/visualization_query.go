package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// VisualizationInput carries the raw selector values of a visualization request.
type VisualizationInput struct {
	Viewer    dashboard.ViewerContext
	DataType  string
	View      string
	Chart     string
	TimeRange string
	Region    string
}

type visualizationService interface {
	Visualization(ctx context.Context, viewer dashboard.ViewerContext, req dashboard.VisualizationRequest) (dashboard.VisualizationView, error)
}

// VisualizationQuery validates selector values and renders the selector.
type VisualizationQuery struct {
	service visualizationService
}

// NewVisualizationQuery builds the query.
func NewVisualizationQuery(service visualizationService) *VisualizationQuery {
	return &VisualizationQuery{service: service}
}

var _ gocommand.Querier[VisualizationInput, dashboard.VisualizationView] = (*VisualizationQuery)(nil)

// Query parses the input and renders the requested view mode.
func (q *VisualizationQuery) Query(ctx context.Context, input VisualizationInput) (dashboard.VisualizationView, error) {
	dt, err := dashboard.ParseDataType(input.DataType)
	if err != nil {
		return dashboard.VisualizationView{}, err
	}
	state, err := dashboard.ParseVisualizationState(input.View, input.Chart, input.TimeRange, input.Region)
	if err != nil {
		return dashboard.VisualizationView{}, err
	}
	return q.service.Visualization(ctx, input.Viewer, dashboard.VisualizationRequest{DataType: dt, State: state})
}
