// Package commands exposes dashboard mutations as go-command handlers so HTTP,
// WebSocket and CLI transports share one execution path.
package commands

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

var (
	// ErrMissingService is returned when a command was built without its backing service.
	ErrMissingService = errors.New("commands: dashboard service is required")
	errMissingStore   = errors.New("commands: widget store is required")
	errMissingAlertID = errors.New("commands: alert id is required")
	errAnonymous      = errors.New("commands: viewer user id is required")
	errEmptyRefresh   = errors.New("commands: refresh needs a widget event or a data type")
)

// Telemetry is the dashboard telemetry sink shared by every command.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

func requireService(name string, present bool) error {
	if present {
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrMissingService)
}

// IsInvalidInput reports whether a command rejected its payload, including the
// dashboard's own selector and configuration errors.
func IsInvalidInput(err error) bool {
	switch {
	case errors.Is(err, errMissingAlertID), errors.Is(err, errAnonymous), errors.Is(err, errEmptyRefresh):
		return true
	default:
		return dashboard.IsInvalidInput(err)
	}
}
