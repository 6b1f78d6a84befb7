package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/components/dashboard/commands"
	"github.com/goliatone/go-agridash/components/dashboard/queries"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ViewerFunc extracts the viewer from a request.
type ViewerFunc func(*http.Request) dashboard.ViewerContext

// Handlers exposes the dashboard JSON endpoints on net/http.
type Handlers struct {
	API    Executor
	Viewer ViewerFunc
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return dashboard.ViewerContext{
		UserID: r.Header.Get("X-User-ID"),
		Locale: AcceptLanguage(r.Header.Get("Accept-Language")),
	}
}

// HandleLayout writes the overview layout, or a single area when ?area= is set.
func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewer(r)
	if area := r.URL.Query().Get("area"); area != "" {
		resolved, err := h.API.Area(r.Context(), queries.WidgetAreaInput{Viewer: viewer, Area: area})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dashboard.LayoutPayload(dashboard.Layout{
			Areas: map[string][]dashboard.WidgetInstance{resolved.AreaCode: resolved.Widgets},
		}))
		return
	}
	layout, err := h.API.Layout(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.LayoutPayload(layout))
}

// HandleVisualization renders the selector for the query's data type and toggles.
func (h *Handlers) HandleVisualization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.API.Visualization(r.Context(), queries.VisualizationInput{
		Viewer:    h.viewer(r),
		DataType:  q.Get("data_type"),
		View:      q.Get("view"),
		Chart:     q.Get("chart"),
		TimeRange: q.Get("time_range"),
		Region:    q.Get("region"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleExport streams the dataset as an XLSX attachment.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("data_type")
	var buf bytes.Buffer
	if err := h.API.Export(r.Context(), dataType, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(dataType)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleAlerts lists alerts for ?tab=.
func (h *Handlers) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	view, err := h.API.Alerts(r.Context(), queries.AlertsInput{Viewer: h.viewer(r), Tab: r.URL.Query().Get("tab")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleMetrics renders the metrics overview for ?tab=&region=&period=.
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.API.Metrics(r.Context(), queries.MetricsInput{
		Viewer: h.viewer(r),
		Tab:    q.Get("tab"),
		Region: q.Get("region"),
		Period: q.Get("period"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleMarkAlertRead acknowledges an alert. The response is 202 because the alert list is unchanged.
func (h *Handlers) HandleMarkAlertRead(w http.ResponseWriter, r *http.Request, alertID string) {
	ctx := dashboard.ContextWithActivity(r.Context(), dashboard.ActivityFromHeaders(r.Header.Get))
	if err := h.API.MarkAlertRead(ctx, commands.MarkAlertReadInput{Viewer: h.viewer(r), AlertID: alertID}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HandleConnection reports the probe state. ?wait=true blocks until the probe settles.
func (h *Handlers) HandleConnection(w http.ResponseWriter, r *http.Request) {
	wait := strings.EqualFold(r.URL.Query().Get("wait"), "true")
	status, err := h.API.Connection(r.Context(), queries.ConnectionInput{Wait: wait})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandlePreferences stores shell and layout overrides for the viewer.
func (h *Handlers) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveLayoutPreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.API.Preferences(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// HandleRefresh forwards a refresh event to the registered hooks.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// ExportFilename names the workbook for a data type, defaulting to crops.
func ExportFilename(dataType string) string {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	if dt == "" {
		dt = string(dashboard.DataTypeCrops)
	}
	return dt + "-data.xlsx"
}

// AcceptLanguage returns the first language tag of an Accept-Language header.
func AcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
