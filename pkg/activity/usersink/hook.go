// Package usersink forwards dashboard activity into go-users activity records.
package usersink

import (
	"context"
	"strings"

	"github.com/apex/log"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-agridash/pkg/activity"
)

// subjectNamespace derives stable UUIDs for dashboard accounts whose ids are not UUIDs.
var subjectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("agridash:subject"))

// Sink is the go-users activity sink contract.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook turns dashboard events (alert reads, widget placement) into activity records.
type Hook struct {
	Sink Sink
}

// Notify converts and logs the event. Events without a verb are skipped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	return h.Sink.Log(ctx, Record(event))
}

// Record maps a normalized event. Non-UUID subject ids are hashed into the
// record and kept verbatim in Data under "<role>_ref".
func Record(event activity.Event) types.ActivityRecord {
	data := make(map[string]any, len(event.Metadata)+5)
	for k, v := range event.Metadata {
		data[k] = v
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = event.Recipients
	}
	return types.ActivityRecord{
		ActorID:    subjectID("actor", event.ActorID, data),
		UserID:     subjectID("user", event.UserID, data),
		TenantID:   subjectID("tenant", event.TenantID, data),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
		Data:       data,
	}
}

func subjectID(role, value string, data map[string]any) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(value); err == nil {
		return id
	}
	data[role+"_ref"] = value
	return uuid.NewSHA1(subjectNamespace, []byte(role+":"+value))
}

// LogSink writes activity records to an apex/log logger. Used when no go-users
// repository is configured.
type LogSink struct {
	Logger log.Interface
}

// Log emits one "activity" entry per record.
func (s LogSink) Log(_ context.Context, record types.ActivityRecord) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Log
	}
	fields := log.Fields{
		"verb":    record.Verb,
		"channel": record.Channel,
		"object":  record.ObjectType + ":" + record.ObjectID,
	}
	if record.UserID != uuid.Nil {
		fields["user_id"] = record.UserID.String()
	}
	if ref, ok := record.Data["user_ref"]; ok {
		fields["user"] = ref
	}
	logger.WithFields(fields).Info("activity")
	return nil
}
