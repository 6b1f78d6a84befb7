package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/components/dashboard/commands"
	"github.com/goliatone/go-agridash/components/dashboard/httpapi"
	"github.com/goliatone/go-agridash/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard controller, API executor and refresh stream.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML          string
	Layout        string
	Visualization string
	Export        string
	Alerts        string
	AlertRead     string
	Metrics       string
	Connection    string
	Preferences   string
	Refresh       string
	WebSocket     string
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		state, err := cfg.Controller.ResolveShell(ctx.Context(), viewer, dashboard.ShellQuery{
			Tab:      ctx.Query("tab"),
			Language: ctx.Query("lang"),
			Sidebar:  ctx.Query("sidebar"),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, state, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		viewer := resolver(ctx)
		if area := ctx.Query("area"); area != "" {
			resolved, err := api.Area(ctx.Context(), queries.WidgetAreaInput{Viewer: viewer, Area: area})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, dashboard.LayoutPayload(dashboard.Layout{
				Areas: map[string][]dashboard.WidgetInstance{resolved.AreaCode: resolved.Widgets},
			}))
		}
		layout, err := api.Layout(ctx.Context(), viewer)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, dashboard.LayoutPayload(layout))
	}))

	r.Get(routes.Visualization, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.Visualization(ctx.Context(), queries.VisualizationInput{
			Viewer:    resolver(ctx),
			DataType:  ctx.Query("data_type"),
			View:      ctx.Query("view"),
			Chart:     ctx.Query("chart"),
			TimeRange: ctx.Query("time_range"),
			Region:    ctx.Query("region"),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		dataType := ctx.Query("data_type")
		var buf bytes.Buffer
		if err := api.Export(ctx.Context(), dataType, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", httpapi.XLSXContentType)
		ctx.SetHeader("Content-Disposition", `attachment; filename="`+httpapi.ExportFilename(dataType)+`"`)
		return ctx.Send(buf.Bytes())
	}))

	r.Get(routes.Alerts, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.Alerts(ctx.Context(), queries.AlertsInput{Viewer: resolver(ctx), Tab: ctx.Query("tab")})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Post(routes.AlertRead, router.WrapHandler(func(ctx router.Context) error {
		input := commands.MarkAlertReadInput{Viewer: resolver(ctx), AlertID: ctx.Param("id")}
		actx := dashboard.ContextWithActivity(ctx.Context(), activityFor(ctx))
		if err := api.MarkAlertRead(actx, input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
	}))

	r.Get(routes.Metrics, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.Metrics(ctx.Context(), queries.MetricsInput{
			Viewer: resolver(ctx),
			Tab:    ctx.Query("tab"),
			Region: ctx.Query("region"),
			Period: ctx.Query("period"),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Get(routes.Connection, router.WrapHandler(func(ctx router.Context) error {
		wait := strings.EqualFold(ctx.Query("wait"), "true")
		status, err := api.Connection(ctx.Context(), queries.ConnectionInput{Wait: wait})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, status)
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveLayoutPreferencesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		payload.Viewer = resolver(ctx)
		if err := api.Preferences(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(dashboard.NewRefreshMessage(event)); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

// activityFor prefers identities set by auth middleware and falls back to request headers.
func activityFor(ctx router.Context) dashboard.ActivityContext {
	meta := dashboard.ActivityFromHeaders(func(key string) string { return ctx.Header(key) })
	if v, ok := ctx.Locals("actor_id").(string); ok && v != "" {
		meta.ActorID = v
	}
	if v, ok := ctx.Locals("user_id").(string); ok && v != "" {
		meta.UserID = v
	}
	if v, ok := ctx.Locals("tenant_id").(string); ok && v != "" {
		meta.TenantID = v
	}
	return meta
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("lang")); locale != "" {
		return strings.ToLower(locale)
	}
	return httpapi.AcceptLanguage(ctx.Header("Accept-Language"))
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Visualization == "" {
		routes.Visualization = "/dashboard/visualization"
	}
	if routes.Export == "" {
		routes.Export = "/dashboard/visualization/export"
	}
	if routes.Alerts == "" {
		routes.Alerts = "/dashboard/alerts"
	}
	if routes.AlertRead == "" {
		routes.AlertRead = "/dashboard/alerts/:id/read"
	}
	if routes.Metrics == "" {
		routes.Metrics = "/dashboard/metrics"
	}
	if routes.Connection == "" {
		routes.Connection = "/dashboard/connection"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/refresh"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
