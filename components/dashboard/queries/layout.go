package queries

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// LayoutQuery resolves the whole overview layout with the viewer's overrides applied.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, dashboard.Layout] = (*LayoutQuery)(nil)

// Query resolves every area for viewer.
func (q *LayoutQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error) {
	if q.service == nil {
		return dashboard.Layout{}, ErrMissingService
	}
	return q.service.ConfigureLayout(ctx, viewer)
}

// WidgetAreaInput names one area. Area accepts the short name (metrics, main,
// sidebar) or the full area code.
type WidgetAreaInput struct {
	Viewer dashboard.ViewerContext
	Area   string
}

// WidgetAreaQuery resolves a single area, used by partial page refreshes.
type WidgetAreaQuery struct {
	service layoutService
}

// NewWidgetAreaQuery builds the query.
func NewWidgetAreaQuery(service layoutService) *WidgetAreaQuery {
	return &WidgetAreaQuery{service: service}
}

var _ gocommand.Querier[WidgetAreaInput, dashboard.ResolvedArea] = (*WidgetAreaQuery)(nil)

// Query maps the area name to its code and resolves it.
func (q *WidgetAreaQuery) Query(ctx context.Context, input WidgetAreaInput) (dashboard.ResolvedArea, error) {
	if q.service == nil {
		return dashboard.ResolvedArea{}, ErrMissingService
	}
	code, ok := dashboard.AreaCodeFor(input.Area)
	if !ok {
		return dashboard.ResolvedArea{}, fmt.Errorf("%w: %q", ErrUnknownArea, input.Area)
	}
	return q.service.ResolveArea(ctx, input.Viewer, code)
}
