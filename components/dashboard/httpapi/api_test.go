package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/components/dashboard/commands"
	"github.com/goliatone/go-agridash/components/dashboard/queries"
	"github.com/goliatone/go-agridash/pkg/datastore"
)

func newTestHandlers(t *testing.T) (*Handlers, *dashboard.Service) {
	t.Helper()
	store := dashboard.NewInMemoryWidgetStore()
	probe := dashboard.NewConnectionProbe(dashboard.ProbeOptions{
		Checker: datastore.NewMockClient(datastore.Succeeded()),
	})
	service := dashboard.NewService(dashboard.Options{WidgetStore: store, Probe: probe})
	_, err := dashboard.Bootstrap(context.Background(), service)
	require.NoError(t, err)
	return &Handlers{API: NewCommandExecutor(service, nil)}, service
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleLayout(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HandleLayout(rec, httptest.NewRequest(http.MethodGet, "/dashboard/_layout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "metrics")
	assert.Contains(t, body, "main")
	assert.Contains(t, body, "sidebar")

	rec = httptest.NewRecorder()
	h.HandleLayout(rec, httptest.NewRequest(http.MethodGet, "/dashboard/_layout?area=sidebar", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body, 1)
	assert.Contains(t, body, "sidebar")

	rec = httptest.NewRecorder()
	h.HandleLayout(rec, httptest.NewRequest(http.MethodGet, "/dashboard/_layout?area=footer", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleVisualization(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HandleVisualization(rec, httptest.NewRequest(http.MethodGet, "/dashboard/visualization?data_type=market&view=table", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view dashboard.VisualizationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotNil(t, view.Table)
	assert.Equal(t, "+5.2", view.Table.Rows[0][2].Text)

	rec = httptest.NewRecorder()
	h.HandleVisualization(rec, httptest.NewRequest(http.MethodGet, "/dashboard/visualization?chart=radar", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "invalid selection")
}

func TestHandleExport(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/dashboard/visualization/export?data_type=livestock", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "livestock-data.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows, err := book.GetRows("Livestock")
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	rec = httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/dashboard/visualization/export?data_type=soil", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAlertsAndMarkRead(t *testing.T) {
	h, service := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HandleAlerts(rec, httptest.NewRequest(http.MethodGet, "/dashboard/alerts?tab=market", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view dashboard.AlertsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 2)
	assert.Equal(t, "3", view.Items[0].ID)

	rec = httptest.NewRecorder()
	h.HandleMarkAlertRead(rec, httptest.NewRequest(http.MethodPost, "/dashboard/alerts/1/read", nil), "1")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, service.Fixtures().Alerts()[0].Read)

	rec = httptest.NewRecorder()
	h.HandleMarkAlertRead(rec, httptest.NewRequest(http.MethodPost, "/dashboard/alerts/99/read", nil), "99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMetrics(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/dashboard/metrics?tab=market", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view dashboard.MetricsOverviewView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "Market Prices", view.Cards[0].Title)
}

func TestHandleConnection(t *testing.T) {
	h, _ := newTestHandlers(t)
	rec := httptest.NewRecorder()
	h.HandleConnection(rec, httptest.NewRequest(http.MethodGet, "/dashboard/connection?wait=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status dashboard.ProbeStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, dashboard.ProbeConnected, status.State)
	assert.Equal(t, "Connected to database", status.Label)
}

func TestHandlePreferences(t *testing.T) {
	h, service := newTestHandlers(t)
	body := `{"shell":{"tab":"crops","sidebar_open":false,"language":"ar"}}`
	req := httptest.NewRequest(http.MethodPost, "/dashboard/preferences", strings.NewReader(body))
	req.Header.Set("X-User-ID", "farmer")
	rec := httptest.NewRecorder()
	h.HandlePreferences(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	prefs, err := service.Preferences(context.Background(), dashboard.ViewerContext{UserID: "farmer"})
	require.NoError(t, err)
	require.NotNil(t, prefs.Shell)
	assert.Equal(t, "crops", prefs.Shell.Tab)
	assert.Equal(t, "ar", prefs.Shell.Language)

	rec = httptest.NewRecorder()
	h.HandlePreferences(rec, httptest.NewRequest(http.MethodPost, "/dashboard/preferences", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRefreshPropagatesErrors(t *testing.T) {
	api := &stubExecutor{err: errors.New("hook offline")}
	h := &Handlers{API: api}
	rec := httptest.NewRecorder()
	h.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/dashboard/refresh", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, api.calls)
}

func TestHandleRefreshByDataType(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/dashboard/refresh", strings.NewReader(`{"data_type":"market","reason":"import"}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/dashboard/refresh", strings.NewReader(`{"data_type":"soil"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/dashboard/refresh", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandExecutorRequiresHandlers(t *testing.T) {
	exec := &CommandExecutor{}
	_, err := exec.Alerts(context.Background(), queries.AlertsInput{})
	assert.ErrorIs(t, err, errMissingHandler)
	assert.ErrorIs(t, exec.Export(context.Background(), "crops", &bytes.Buffer{}), errMissingHandler)
}

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "ar-eg", AcceptLanguage("ar-EG;q=0.9, en;q=0.8"))
	assert.Equal(t, "", AcceptLanguage(""))
	assert.Equal(t, "crops-data.xlsx", ExportFilename(""))
}

type stubExecutor struct {
	Executor
	calls int
	err   error
}

func (s *stubExecutor) Refresh(context.Context, commands.RefreshWidgetInput) error {
	s.calls++
	return s.err
}
