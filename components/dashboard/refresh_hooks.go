package dashboard

import (
	"context"
	"errors"

	"github.com/apex/log"
)

// RefreshHooks fans a widget event out to every hook. All hooks run; their errors are joined.
type RefreshHooks []RefreshHook

// WidgetUpdated forwards event to each non-nil hook.
func (h RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// LogRefreshHook writes refresh events to a logger.
type LogRefreshHook struct {
	Logger log.Interface
}

// WidgetUpdated logs the event and never fails.
func (h LogRefreshHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	logger := h.Logger
	if logger == nil {
		logger = log.Log
	}
	logger.WithFields(log.Fields{
		"area_code":  event.AreaCode,
		"widget_id":  event.Instance.ID,
		"definition": event.Instance.DefinitionID,
		"reason":     event.Reason,
	}).Info("dashboard.refresh")
	return nil
}
