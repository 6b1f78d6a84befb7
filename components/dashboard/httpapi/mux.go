package httpapi

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-agridash/components/dashboard"
)

// NewMux mounts the JSON endpoints under base on a net/http mux. When hook is set
// the refresh stream is served at /dashboard/stream (SSE) and /dashboard/ws.
func NewMux(h *Handlers, hook *dashboard.BroadcastHook, base string) *http.ServeMux {
	base = "/" + strings.Trim(base, "/")
	if base == "/" {
		base = ""
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/dashboard/_layout", h.HandleLayout)
	mux.HandleFunc("GET "+base+"/dashboard/visualization", h.HandleVisualization)
	mux.HandleFunc("GET "+base+"/dashboard/visualization/export", h.HandleExport)
	mux.HandleFunc("GET "+base+"/dashboard/alerts", h.HandleAlerts)
	mux.HandleFunc("POST "+base+"/dashboard/alerts/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		h.HandleMarkAlertRead(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET "+base+"/dashboard/metrics", h.HandleMetrics)
	mux.HandleFunc("GET "+base+"/dashboard/connection", h.HandleConnection)
	mux.HandleFunc("POST "+base+"/dashboard/preferences", h.HandlePreferences)
	mux.HandleFunc("POST "+base+"/dashboard/refresh", h.HandleRefresh)
	if hook != nil {
		mux.HandleFunc("GET "+base+"/dashboard/stream", hook.ServeSSE)
		mux.HandleFunc("GET "+base+"/dashboard/ws", hook.ServeWebSocket)
	}
	return mux
}
