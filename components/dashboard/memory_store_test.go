package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededMemoryStore(t *testing.T) *InMemoryWidgetStore {
	t.Helper()
	store := NewInMemoryWidgetStore()
	require.NoError(t, RegisterAreas(context.Background(), store))
	require.NoError(t, RegisterDefinitions(context.Background(), store, nil))
	return store
}

func TestInMemoryWidgetStoreAssignsInOrder(t *testing.T) {
	ctx := context.Background()
	store := newSeededMemoryStore(t)

	first, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{DefinitionID: WidgetAlertsPanel})
	require.NoError(t, err)
	second, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{DefinitionID: WidgetConnectionStatus})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, store.AssignInstance(ctx, AssignWidgetInput{AreaCode: AreaSidebar, InstanceID: first.ID}))
	zero := 0
	require.NoError(t, store.AssignInstance(ctx, AssignWidgetInput{AreaCode: AreaSidebar, InstanceID: second.ID, Position: &zero}))

	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: AreaSidebar})
	require.NoError(t, err)
	require.Len(t, resolved.Widgets, 2)
	assert.Equal(t, second.ID, resolved.Widgets[0].ID)
	assert.Equal(t, first.ID, resolved.Widgets[1].ID)
}

func TestInMemoryWidgetStoreRejectsUnknownReferences(t *testing.T) {
	ctx := context.Background()
	store := newSeededMemoryStore(t)

	_, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{DefinitionID: "agri.widget.unknown"})
	assert.Error(t, err)

	inst, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{DefinitionID: WidgetAlertsPanel})
	require.NoError(t, err)
	assert.Error(t, store.AssignInstance(ctx, AssignWidgetInput{AreaCode: "agri.dashboard.footer", InstanceID: inst.ID}))
	assert.Error(t, store.AssignInstance(ctx, AssignWidgetInput{AreaCode: AreaSidebar, InstanceID: "missing"}))
}

func TestInMemoryWidgetStoreVisibility(t *testing.T) {
	ctx := context.Background()
	store := newSeededMemoryStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	cases := []struct {
		name       string
		visibility WidgetVisibility
	}{
		{name: "admins", visibility: WidgetVisibility{Roles: []string{"admin"}}},
		{name: "scheduled", visibility: WidgetVisibility{StartAt: &later}},
		{name: "expired", visibility: WidgetVisibility{EndAt: &earlier}},
		{name: "open", visibility: WidgetVisibility{}},
	}
	ids := map[string]string{}
	for _, tc := range cases {
		inst, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{DefinitionID: WidgetAlertsPanel, Visibility: tc.visibility})
		require.NoError(t, err)
		require.NoError(t, store.AssignInstance(ctx, AssignWidgetInput{AreaCode: AreaSidebar, InstanceID: inst.ID}))
		ids[tc.name] = inst.ID
	}

	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: AreaSidebar, Audience: []string{"viewer"}})
	require.NoError(t, err)
	require.Len(t, resolved.Widgets, 1)
	assert.Equal(t, ids["open"], resolved.Widgets[0].ID)

	resolved, err = store.ResolveArea(ctx, ResolveAreaInput{AreaCode: AreaSidebar, Audience: []string{"admin"}})
	require.NoError(t, err)
	assert.Len(t, resolved.Widgets, 2)
}
