package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// MarkAlertReadInput identifies the alert a viewer acknowledged.
type MarkAlertReadInput struct {
	Viewer  dashboard.ViewerContext `json:"viewer"`
	AlertID string                  `json:"alert_id"`
}

type alertService interface {
	MarkAlertRead(ctx context.Context, viewer dashboard.ViewerContext, alertID string) error
}

// MarkAlertReadCommand wraps Service.MarkAlertRead.
type MarkAlertReadCommand struct {
	service   alertService
	telemetry Telemetry
}

// NewMarkAlertReadCommand creates the command.
func NewMarkAlertReadCommand(service alertService, telemetry Telemetry) *MarkAlertReadCommand {
	return &MarkAlertReadCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MarkAlertReadInput] = (*MarkAlertReadCommand)(nil)

// Execute forwards the acknowledgement. The alert list is not modified.
func (c *MarkAlertReadCommand) Execute(ctx context.Context, msg MarkAlertReadInput) error {
	if err := requireService("mark alert read", c.service != nil); err != nil {
		return err
	}
	if msg.AlertID == "" {
		return errMissingAlertID
	}
	if err := c.service.MarkAlertRead(ctx, msg.Viewer, msg.AlertID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.alert_read", map[string]any{
		"alert_id": msg.AlertID,
		"user_id":  msg.Viewer.UserID,
	})
	return nil
}
