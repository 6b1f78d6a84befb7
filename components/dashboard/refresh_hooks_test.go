package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRefreshHook struct{ err error }

func (h failingRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error { return h.err }

func TestRefreshHooksFanOut(t *testing.T) {
	first := &collectingHook{}
	second := &collectingHook{}
	boom := errors.New("boom")
	hooks := RefreshHooks{first, nil, failingRefreshHook{err: boom}, second}

	err := hooks.WidgetUpdated(context.Background(), WidgetEvent{Reason: "alert.read"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.events)
	assert.Equal(t, 1, second.events)
}

func TestLogRefreshHookWritesEntry(t *testing.T) {
	handler := memory.New()
	logger := &log.Logger{Handler: handler, Level: log.InfoLevel}
	hook := LogRefreshHook{Logger: logger}

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{
		AreaCode: AreaSidebar,
		Instance: WidgetInstance{ID: "2", DefinitionID: WidgetAlertsPanel},
		Reason:   "alert.read",
	}))
	require.Len(t, handler.Entries, 1)
	entry := handler.Entries[0]
	assert.Equal(t, "dashboard.refresh", entry.Message)
	assert.Equal(t, "alert.read", entry.Fields.Get("reason"))
}

func TestLogTelemetryLevels(t *testing.T) {
	handler := memory.New()
	telemetry := NewLogTelemetry(&log.Logger{Handler: handler, Level: log.InfoLevel})

	telemetry.Record(context.Background(), "dashboard.probe.connected", map[string]any{"collection": "crops"})
	telemetry.Record(context.Background(), "dashboard.probe.failed", map[string]any{"error": "timeout"})

	require.Len(t, handler.Entries, 2)
	assert.Equal(t, log.InfoLevel, handler.Entries[0].Level)
	assert.Equal(t, "crops", handler.Entries[0].Fields.Get("collection"))
	assert.Equal(t, log.WarnLevel, handler.Entries[1].Level)
}
