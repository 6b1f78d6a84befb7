package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const defaultPageTemplate = "dashboard.html"

var (
	errMissingRenderer = errors.New("dashboard: renderer not configured")
	errMissingService  = errors.New("dashboard: page service not configured")
	errInvalidSidebar  = errors.New("dashboard: invalid sidebar value")
)

// PageService resolves dashboard pages and stored shell state.
type PageService interface {
	Page(ctx context.Context, viewer ViewerContext, state ShellState) (PageView, error)
	Preferences(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
}

// ControllerOptions configures the HTML controller.
type ControllerOptions struct {
	Service  PageService
	Renderer Renderer
	Template string
	Title    string
}

// Controller renders the dashboard page through a template renderer.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the page service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultPageTemplate
	}
	if opts.Title == "" {
		opts.Title = shellBrand
	}
	return &Controller{opts: opts}
}

// ShellQuery holds raw shell overrides taken from a request.
type ShellQuery struct {
	Tab      string
	Language string
	Sidebar  string
}

// ResolveShell merges the viewer's stored shell state with request overrides.
// Empty query values keep the stored state.
func (c *Controller) ResolveShell(ctx context.Context, viewer ViewerContext, query ShellQuery) (ShellState, error) {
	state := DefaultShellState()
	if viewer.UserID != "" && c.opts.Service != nil {
		overrides, err := c.opts.Service.Preferences(ctx, viewer)
		if err != nil {
			return ShellState{}, err
		}
		if overrides.Shell != nil {
			state = *overrides.Shell
		}
	} else if strings.HasPrefix(normalizeLocale(viewer.Locale), altLanguage) {
		state.Language = altLanguage
	}
	if query.Tab != "" {
		tab, err := ParseShellTab(query.Tab)
		if err != nil {
			return ShellState{}, err
		}
		state.Tab = tab
	}
	if lang := normalizeLocale(query.Language); lang != "" {
		state.Language = defaultLanguage
		if strings.HasPrefix(lang, altLanguage) {
			state.Language = altLanguage
		}
	}
	if query.Sidebar != "" {
		open, err := parseSidebar(query.Sidebar)
		if err != nil {
			return ShellState{}, err
		}
		state.SidebarOpen = open
	}
	return state, nil
}

func parseSidebar(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "open", "expanded":
		return true, nil
	case "closed", "collapsed":
		return false, nil
	}
	open, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %q", errInvalidSidebar, value)
	}
	return open, nil
}

// RenderTemplate resolves the page for the shell state and writes the rendered HTML to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, state ShellState, out io.Writer) error {
	if c.opts.Service == nil {
		return errMissingService
	}
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	page, err := c.opts.Service.Page(ctx, viewer, state)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, c.PagePayload(page), out)
	return err
}

// PagePayload flattens a page into the template context.
func (c *Controller) PagePayload(page PageView) map[string]any {
	payload := map[string]any{
		"title":         c.opts.Title,
		"shell":         page.Shell,
		"section":       page.Shell.Section,
		"visualization": page.Visualization,
		"areas":         map[string]any{},
	}
	if page.Layout != nil {
		payload["areas"] = LayoutPayload(*page.Layout)
	}
	return payload
}

// LayoutPayload converts a layout into per-area widget entries keyed by the short area name
// ("metrics", "main", "sidebar"). Each entry names the partial template that renders it.
func LayoutPayload(layout Layout) map[string]any {
	codes := make([]string, 0, len(layout.Areas))
	for code := range layout.Areas {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	areas := make(map[string]any, len(codes))
	for _, code := range codes {
		widgets := layout.Areas[code]
		items := make([]map[string]any, 0, len(widgets))
		for _, w := range widgets {
			item := map[string]any{
				"id":         w.ID,
				"definition": w.DefinitionID,
				"area":       code,
				"template":   widgetTemplate(w.DefinitionID),
				"config":     w.Configuration,
			}
			if data, ok := w.Metadata["data"]; ok {
				item["data"] = data
			}
			items = append(items, item)
		}
		areas[shortCode(code)] = items
	}
	return areas
}

func widgetTemplate(definitionID string) string {
	return "widgets/" + shortCode(definitionID) + ".html"
}

func shortCode(code string) string {
	if i := strings.LastIndex(code, "."); i >= 0 {
		return code[i+1:]
	}
	return code
}
