package dashboard

import (
	"context"
	"strings"

	"github.com/goliatone/go-agridash/pkg/activity"
)

// Request headers carrying the acting identity when no auth middleware sets locals.
const (
	HeaderActorID  = "X-Actor-ID"
	HeaderUserID   = "X-User-ID"
	HeaderTenantID = "X-Tenant-ID"
)

// ActivityContext names who performed a dashboard action. ActorID differs from
// UserID when an operator acts on behalf of a farmer account.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ActivityFromHeaders reads the identity headers through header (http.Header.Get
// or a router context's Header method).
func ActivityFromHeaders(header func(string) string) ActivityContext {
	if header == nil {
		return ActivityContext{}
	}
	return ActivityContext{
		ActorID:  strings.TrimSpace(header(HeaderActorID)),
		UserID:   strings.TrimSpace(header(HeaderUserID)),
		TenantID: strings.TrimSpace(header(HeaderTenantID)),
	}
}

// ContextWithActivity stores meta on ctx. Empty fields do not hide values set by an outer call.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	meta = meta.or(activityContextFrom(ctx))
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	meta, _ := ctx.Value(activityContextKey{}).(ActivityContext)
	return meta
}

func (a ActivityContext) or(fallback ActivityContext) ActivityContext {
	if a.ActorID == "" {
		a.ActorID = fallback.ActorID
	}
	if a.UserID == "" {
		a.UserID = fallback.UserID
	}
	if a.TenantID == "" {
		a.TenantID = fallback.TenantID
	}
	return a
}

// stamp fills missing identity on event. The user acts for themself when no actor is known.
func (a ActivityContext) stamp(event activity.Event) activity.Event {
	filled := ActivityContext{ActorID: event.ActorID, UserID: event.UserID, TenantID: event.TenantID}.or(a)
	if filled.ActorID == "" {
		filled.ActorID = filled.UserID
	}
	event.ActorID, event.UserID, event.TenantID = filled.ActorID, filled.UserID, filled.TenantID
	return event
}
