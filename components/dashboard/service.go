package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-agridash/pkg/activity"
)

var (
	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errInvalidArea        = errors.New("dashboard: area code is required")
	errInvalidDefinition  = errors.New("dashboard: definition id is required")
	errMissingViewer      = errors.New("dashboard: viewer context missing user id")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations without importing internal
// go-agridash packages.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      TranslationService
	Areas           []string

	// Fixtures is the single read-only data source handed to every widget.
	Fixtures *Fixtures
	// Datasets overrides where visualization datasets come from. Failures fall back to Fixtures.
	Datasets DatasetSource
	Charts   *EChartsProvider
	// Probe overrides the connection probe built from ProbeOptions.
	Probe        *ConnectionProbe
	ProbeOptions ProbeOptions
	User         ShellUser

	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
}

// Service orchestrates the agricultural dashboard: widget layout, visualizations,
// alerts, metrics, the connection probe and the navigation shell.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Translator == nil {
		opts.Translator = DefaultCatalog()
	}
	if opts.Fixtures == nil {
		opts.Fixtures = DefaultFixtures()
	}
	if opts.Charts == nil {
		opts.Charts = NewEChartsProvider(string(ChartBar), WithChartTranslator(opts.Translator))
	}
	if opts.Probe == nil {
		probeOpts := opts.ProbeOptions
		if probeOpts.Telemetry == nil {
			probeOpts.Telemetry = opts.Telemetry
		}
		opts.Probe = NewConnectionProbe(probeOpts)
	}
	if opts.User == (ShellUser{}) {
		opts.User = DefaultShellUser()
	}
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Fixtures returns the read-only data source.
func (s *Service) Fixtures() *Fixtures {
	return s.opts.Fixtures
}

// Translator returns the configured translation service.
func (s *Service) Translator() TranslationService {
	return s.opts.Translator
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string
	AreaCode      string
	Configuration map[string]any
	Position      *int
	Roles         []string
	StartAt       *time.Time
	EndAt         *time.Time
	ActorID       string
	UserID        string
	TenantID      string
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.AreaCode == "" {
		return errInvalidArea
	}
	if req.DefinitionID == "" {
		return errInvalidDefinition
	}
	config, err := s.prepareConfiguration(req.DefinitionID, req.Configuration)
	if err != nil {
		return err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: config,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return err
	}
	instance.AreaCode = req.AreaCode
	event := WidgetEvent{
		AreaCode: req.AreaCode,
		Instance: instance,
		Reason:   ReasonAdd,
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	})
	s.emitActivity(ctx, activity.Event{
		Verb:           "dashboard.widget.add",
		ActorID:        req.ActorID,
		UserID:         req.UserID,
		TenantID:       req.TenantID,
		ObjectType:     "widget_instance",
		ObjectID:       instance.ID,
		DefinitionCode: req.DefinitionID,
		Metadata:       map[string]any{"area_code": req.AreaCode},
	})
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// emitActivity fills actor identifiers from the context and forwards the event.
// Hook failures are reported through telemetry and never fail the caller.
func (s *Service) emitActivity(ctx context.Context, event activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	event = activityContextFrom(ctx).stamp(event)
	if err := s.activity.Emit(ctx, event); err != nil {
		s.recordTelemetry(ctx, "dashboard.activity.error", map[string]any{
			"verb":  event.Verb,
			"error": err.Error(),
		})
	}
}

// ConfigureLayout resolves widgets for each dashboard area respecting preferences + auth.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{Areas: make(map[string][]WidgetInstance)}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
			AreaCode: area,
			Audience: viewer.Roles,
			Locale:   viewer.Locale,
		})
		if err != nil {
			return Layout{}, err
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
		}
		layout.Areas[area] = s.filterAuthorized(ctx, viewer, overrides.arrange(area, resolved.Widgets))
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer":  viewer.UserID,
		"widgets": layout.Count(),
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: areaCode,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return ResolvedArea{}, err
	}
	for i := range resolved.Widgets {
		resolved.Widgets[i].AreaCode = areaCode
	}
	resolved.Widgets = s.filterAuthorized(ctx, viewer, resolved.Widgets)
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":   viewer.UserID,
		"areaCode": areaCode,
	})
	return resolved, nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

// prepareConfiguration fills schema defaults and validates the result.
// Unknown definitions pass through untouched.
func (s *Service) prepareConfiguration(definitionID string, config map[string]any) (map[string]any, error) {
	if s.opts.Providers == nil {
		return config, nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return config, nil
	}
	config = ApplyConfigDefaults(def, config)
	if err := s.opts.ConfigValidator.Validate(def, config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return DefaultAreaCodes()
}

func (s *Service) filterAuthorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	var filtered []WidgetInstance
	for _, w := range widgets {
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return s.attachProviderData(ctx, viewer, filtered)
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:   inst,
			Viewer:     viewer,
			Translator: s.opts.Translator,
			Fixtures:   s.opts.Fixtures,
			Datasets:   s.opts.Datasets,
			Probe:      s.opts.Probe,
		})
		if err != nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         err.Error(),
			})
			continue
		}
		metadata := make(map[string]any, len(inst.Metadata)+1)
		for k, v := range inst.Metadata {
			metadata[k] = v
		}
		metadata["data"] = data
		enriched[i].Metadata = metadata
	}
	return enriched
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// RefreshDataset notifies every placed widget that draws dt and drops its cached charts.
// Widgets without a data_type setting show crops. It returns how many widgets were notified.
func (s *Service) RefreshDataset(ctx context.Context, dt DataType, reason string) (int, error) {
	store, err := s.widgetStore()
	if err != nil {
		return 0, err
	}
	if reason == "" {
		reason = ReasonDatasetChanged
	}
	codes := map[string]struct{}{}
	if s.opts.Providers != nil {
		for _, def := range s.opts.Providers.Definitions() {
			if showsDataset(def) {
				codes[def.Code] = struct{}{}
			}
		}
	}

	var errs []error
	notified := 0
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: area})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, inst := range resolved.Widgets {
			if _, ok := codes[inst.DefinitionID]; !ok || instanceDataType(inst) != dt {
				continue
			}
			inst.AreaCode = area
			if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{AreaCode: area, Instance: inst, Reason: reason}); err != nil {
				errs = append(errs, err)
				continue
			}
			notified++
		}
	}

	purged := 0
	if s.opts.Charts != nil {
		purged = s.opts.Charts.InvalidateDataset(dt)
	}
	s.recordTelemetry(ctx, "dashboard.dataset.refresh", map[string]any{
		"data_type": string(dt),
		"reason":    reason,
		"widgets":   notified,
		"charts":    purged,
	})
	return notified, errors.Join(errs...)
}

func instanceDataType(inst WidgetInstance) DataType {
	raw, _ := inst.Configuration["data_type"].(string)
	dt, err := ParseDataType(raw)
	if err != nil {
		return DataTypeCrops
	}
	return dt
}

// Preferences returns the viewer's stored overrides, including shell state.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return LayoutOverrides{}, err
	}
	overrides = overrides.withDefaults()
	return overrides, nil
}

// SavePreferences persists per-viewer layout and shell overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	if overrides.Shell != nil {
		tab, err := ParseShellTab(overrides.Shell.Tab)
		if err != nil {
			return err
		}
		shell := *overrides.Shell
		shell.Tab = tab
		if shell.Language != altLanguage {
			shell.Language = defaultLanguage
		}
		overrides.Shell = &shell
	}
	overrides = overrides.withDefaults()
	if err := s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return err
	}
	payload := map[string]any{"viewer": viewer.UserID}
	if overrides.Shell != nil {
		payload["tab"] = overrides.Shell.Tab
	}
	s.recordTelemetry(ctx, "dashboard.preferences.save", payload)
	return nil
}

// VisualizationRequest selects a dataset and selector state.
type VisualizationRequest struct {
	DataType    DataType
	State       VisualizationState
	Title       string
	Description string
}

// Visualization renders a dataset from the fixtures in the requested view mode.
func (s *Service) Visualization(ctx context.Context, viewer ViewerContext, req VisualizationRequest) (VisualizationView, error) {
	ds := s.Dataset(ctx, req.DataType)
	viz := NewVisualization(s.opts.Fixtures, VisualizationOptions{
		Title:       req.Title,
		Description: req.Description,
		DataType:    ds.Type,
		Data:        &ds,
	}, s.opts.Charts)
	view, err := viz.Render(ctx, viewer, req.State)
	if err != nil {
		return VisualizationView{}, err
	}
	s.recordTelemetry(ctx, "dashboard.visualization.render", map[string]any{
		"data_type": string(view.DataType),
		"view":      string(view.State.ViewMode),
	})
	return view, nil
}

// Dataset resolves the dataset for a data type. Unknown types fall back to crops.
// A failing dataset source is reported through telemetry and the fixtures are used instead.
func (s *Service) Dataset(ctx context.Context, dt DataType) Dataset {
	return resolveDataset(ctx, s.opts.Datasets, s.opts.Fixtures, dt, s.opts.Telemetry)
}

// ExportDataset writes the dataset's table as an XLSX workbook.
func (s *Service) ExportDataset(ctx context.Context, dt DataType, w io.Writer) error {
	ds := s.Dataset(ctx, dt)
	if err := ExportXLSX(w, ds); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.visualization.export", map[string]any{
		"data_type": string(ds.Type),
		"rows":      ds.Len(),
	})
	return nil
}

// Alerts returns the alerts panel for a tab.
func (s *Service) Alerts(ctx context.Context, viewer ViewerContext, tab AlertTab) AlertsView {
	view := BuildAlertsView(s.opts.Fixtures.Alerts(), tab)
	view.Title = translateOrFallback(ctx, s.opts.Translator, "dashboard.alerts.title", viewer.Locale, view.Title, nil)
	return view
}

// MarkAlertRead records that the viewer acknowledged an alert. The alert record itself
// is left untouched: the acknowledgement flows out as an activity event and a refresh event.
func (s *Service) MarkAlertRead(ctx context.Context, viewer ViewerContext, alertID string) error {
	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return errMissingAlertID
	}
	alert, ok := findAlert(s.opts.Fixtures.Alerts(), alertID)
	if !ok {
		return errAlertNotFound
	}
	s.recordTelemetry(ctx, "dashboard.alert.read", map[string]any{
		"alert_id": alert.ID,
		"type":     string(alert.Type),
		"viewer":   viewer.UserID,
	})
	s.emitActivity(ctx, activity.Event{
		Verb:           "alert.read",
		UserID:         viewer.UserID,
		ObjectType:     "alert",
		ObjectID:       alert.ID,
		DefinitionCode: WidgetAlertsPanel,
		Metadata: map[string]any{
			"type":     string(alert.Type),
			"severity": string(alert.Severity),
			"region":   alert.Region,
		},
	})
	return s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: AreaSidebar,
		Instance: WidgetInstance{
			ID:           alert.ID,
			DefinitionID: WidgetAlertsPanel,
			Metadata:     map[string]any{"alert_id": alert.ID},
		},
		Reason: ReasonAlertRead,
	})
}

// MetricsOverview groups the fixture metrics for a tab.
func (s *Service) MetricsOverview(ctx context.Context, viewer ViewerContext, tab MetricTab, region Region, period Period) MetricsOverviewView {
	view := BuildMetricsOverview(s.opts.Fixtures.Metrics(), tab, region, period)
	view.Title = translateOrFallback(ctx, s.opts.Translator, "dashboard.metrics.title", viewer.Locale, view.Title, nil)
	return view
}

// StartProbe launches the connection check once. Later calls are no-ops.
func (s *Service) StartProbe(ctx context.Context) {
	s.opts.Probe.Start(ctx)
}

// StopProbe cancels an in-flight connection check.
func (s *Service) StopProbe() {
	s.opts.Probe.Stop()
}

// ConnectionStatus starts the probe if needed and, when wait is set, blocks until it settles.
func (s *Service) ConnectionStatus(ctx context.Context, wait bool) (ProbeStatus, error) {
	s.opts.Probe.Start(context.WithoutCancel(ctx))
	if !wait {
		return s.opts.Probe.Status(), nil
	}
	return s.opts.Probe.Wait(ctx)
}

// Shell renders the navigation chrome for a shell state.
func (s *Service) Shell(ctx context.Context, state ShellState) ShellView {
	return BuildShell(ctx, state, s.opts.User, s.opts.Fixtures.Alerts(), s.opts.Translator)
}

// PageView is a full dashboard page: the shell plus either the overview layout
// or a section body.
type PageView struct {
	Shell         ShellView          `json:"shell"`
	Layout        *Layout            `json:"layout,omitempty"`
	Visualization *VisualizationView `json:"visualization,omitempty"`
}

// Page resolves the page for the shell state. The overview tab renders the widget areas;
// data sections render their dataset; other sections are placeholders.
func (s *Service) Page(ctx context.Context, viewer ViewerContext, state ShellState) (PageView, error) {
	tab, err := ParseShellTab(state.Tab)
	if err != nil {
		return PageView{}, err
	}
	state.Tab = tab
	if state.Language != "" {
		viewer.Locale = state.Language
	}
	page := PageView{Shell: s.Shell(ctx, state)}
	if tab == defaultShellTab {
		layout, err := s.ConfigureLayout(ctx, viewer)
		if err != nil {
			return PageView{}, err
		}
		page.Layout = &layout
		return page, nil
	}
	if section := page.Shell.Section; section != nil && section.HasVisualization() {
		view, err := s.Visualization(ctx, viewer, VisualizationRequest{
			DataType:    section.DataType,
			State:       DefaultVisualizationState().WithViewMode(section.ViewMode),
			Title:       section.Title,
			Description: section.Description,
		})
		if err != nil {
			return PageView{}, err
		}
		page.Visualization = &view
	}
	return page, nil
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
