package dashboard

import (
	"context"

	"github.com/apex/log"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes events as structured log entries.
type LogTelemetry struct {
	Logger log.Interface
}

// NewLogTelemetry logs through logger, or the apex/log default when nil.
func NewLogTelemetry(logger log.Interface) *LogTelemetry {
	if logger == nil {
		logger = log.Log
	}
	return &LogTelemetry{Logger: logger}
}

// Record logs event at info level, or warn when the payload carries an error.
func (t *LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := make(log.Fields, len(payload))
	for k, v := range payload {
		fields[k] = v
	}
	entry := t.Logger.WithFields(fields)
	if _, failed := payload["error"]; failed {
		entry.Warn(event)
		return
	}
	entry.Info(event)
}
