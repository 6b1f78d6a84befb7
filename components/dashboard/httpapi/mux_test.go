package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-agridash/components/dashboard"
)

func TestNewMuxRoutesUnderBasePath(t *testing.T) {
	h, _ := newTestHandlers(t)
	mux := NewMux(h, dashboard.NewBroadcastHook(), "/admin/")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard/alerts?tab=unread", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/dashboard/alerts/2/read", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/alerts", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewMuxWithoutBroadcastSkipsStream(t *testing.T) {
	h, _ := newTestHandlers(t)
	mux := NewMux(h, nil, "")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stream", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
