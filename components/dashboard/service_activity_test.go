package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-agridash/pkg/activity"
)

func TestAddWidgetEmitsActivity(t *testing.T) {
	store := &stubWidgetStore{}
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		WidgetStore: store,
		ActivityHooks: activity.Hooks{
			capture,
		},
		ActivityConfig: activity.Config{Enabled: true, Channel: "dashboard"},
	})

	req := AddWidgetRequest{
		DefinitionID: WidgetAlertsPanel,
		AreaCode:     AreaSidebar,
		ActorID:      "actor-1",
		UserID:       "user-1",
		TenantID:     "tenant-1",
	}
	if err := service.AddWidget(context.Background(), req); err != nil {
		t.Fatalf("AddWidget returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != "dashboard.widget.add" || event.ObjectType != "widget_instance" {
		t.Fatalf("unexpected event payload: %+v", event)
	}
	if event.ActorID != "actor-1" || event.UserID != "user-1" || event.TenantID != "tenant-1" {
		t.Fatalf("unexpected actor context: %+v", event)
	}
	if event.Metadata["area_code"] != AreaSidebar {
		t.Fatalf("expected area_code metadata, got %+v", event.Metadata)
	}
}

func TestMarkAlertReadEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: true},
	})
	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "actor-9", TenantID: "tenant-2"})

	if err := service.MarkAlertRead(ctx, ViewerContext{UserID: "user-7"}, "2"); err != nil {
		t.Fatalf("MarkAlertRead returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != "alert.read" || event.ObjectType != "alert" || event.ObjectID != "2" {
		t.Fatalf("unexpected event payload: %+v", event)
	}
	if event.ActorID != "actor-9" || event.UserID != "user-7" || event.TenantID != "tenant-2" {
		t.Fatalf("unexpected actor context: %+v", event)
	}
	if event.Channel != "dashboard" {
		t.Fatalf("expected default channel, got %q", event.Channel)
	}
	if event.Metadata["type"] != "pest" || event.Metadata["severity"] != "high" {
		t.Fatalf("expected alert metadata, got %+v", event.Metadata)
	}
}

func TestMarkAlertReadActorFallsBackToViewer(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: true},
	})
	if err := service.MarkAlertRead(context.Background(), ViewerContext{UserID: "user-3"}, "1"); err != nil {
		t.Fatalf("MarkAlertRead returned error: %v", err)
	}
	if capture.Events[0].ActorID != "user-3" {
		t.Fatalf("expected viewer as actor, got %+v", capture.Events[0])
	}
}

func TestActivityDisabledEmitsNothing(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: false},
	})
	if err := service.MarkAlertRead(context.Background(), ViewerContext{UserID: "user-1"}, "1"); err != nil {
		t.Fatalf("MarkAlertRead returned error: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(capture.Events))
	}
}

func TestActivityHookFailureIsRecordedNotReturned(t *testing.T) {
	telemetry := &testTelemetry{}
	failing := activity.HookFunc(func(context.Context, activity.Event) error {
		return errors.New("sink down")
	})
	service := NewService(Options{
		Telemetry:      telemetry,
		ActivityHooks:  activity.Hooks{failing},
		ActivityConfig: activity.Config{Enabled: true},
	})
	if err := service.MarkAlertRead(context.Background(), ViewerContext{UserID: "user-1"}, "3"); err != nil {
		t.Fatalf("MarkAlertRead returned error: %v", err)
	}
	found := false
	for _, event := range telemetry.events {
		if event == "dashboard.activity.error" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected activity error telemetry, got %v", telemetry.events)
	}
}
