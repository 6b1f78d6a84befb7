package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// RefreshWidgetInput asks transports to redraw one widget, or every widget of a
// dataset when DataType is set.
type RefreshWidgetInput struct {
	Event    dashboard.WidgetEvent `json:"event"`
	DataType string                `json:"data_type,omitempty"`
	Reason   string                `json:"reason,omitempty"`
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
	RefreshDataset(ctx context.Context, dt dashboard.DataType, reason string) (int, error)
}

// RefreshWidgetCommand fans refresh events out through the service hooks.
type RefreshWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshNotifier, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute refreshes a dataset when DataType is given, otherwise the single widget in Event.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if err := requireService("refresh", c.service != nil); err != nil {
		return err
	}
	if msg.DataType != "" {
		return c.refreshDataset(ctx, msg)
	}
	if msg.Event.Instance.ID == "" && msg.Event.AreaCode == "" {
		return errEmptyRefresh
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = msg.Reason
	}
	if err := c.service.NotifyWidgetUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"area_code": msg.Event.AreaCode,
		"widget_id": msg.Event.Instance.ID,
	})
	return nil
}

func (c *RefreshWidgetCommand) refreshDataset(ctx context.Context, msg RefreshWidgetInput) error {
	dt, err := dashboard.ParseDataType(msg.DataType)
	if err != nil {
		return err
	}
	n, err := c.service.RefreshDataset(ctx, dt, msg.Reason)
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"data_type": string(dt),
		"widgets":   n,
		"failed":    err != nil,
	})
	return err
}
