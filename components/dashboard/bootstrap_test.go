package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps the in-memory store and counts placements.
type countingStore struct {
	*InMemoryWidgetStore
	assigned  int
	failAreas bool
}

func newCountingStore() *countingStore {
	return &countingStore{InMemoryWidgetStore: NewInMemoryWidgetStore()}
}

func (c *countingStore) EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error) {
	if c.failAreas {
		return false, errors.New("disk full")
	}
	return c.InMemoryWidgetStore.EnsureArea(ctx, def)
}

func (c *countingStore) AssignInstance(ctx context.Context, input AssignWidgetInput) error {
	c.assigned++
	return c.InMemoryWidgetStore.AssignInstance(ctx, input)
}

func TestRegisterAreasCreatesEachAreaOnce(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()

	created, err := ensureAreas(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultAreaDefinitions()), created)

	require.NoError(t, RegisterAreas(ctx, store))
	created, err = ensureAreas(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestRegisterDefinitionsFillsRegistry(t *testing.T) {
	store := newCountingStore()
	registry := newRegistry()
	if err := RegisterDefinitions(context.Background(), store, registry); err != nil {
		t.Fatalf("register definitions: %v", err)
	}
	if got, want := len(registry.Definitions()), len(DefaultWidgetDefinitions()); got != want {
		t.Fatalf("expected %d registry definitions, got %d", want, got)
	}
	for _, code := range []string{WidgetVisualization, WidgetAlertsPanel, WidgetConnectionStatus} {
		if _, ok := registry.Definition(code); !ok {
			t.Fatalf("expected %s in registry", code)
		}
	}
}

func TestSeedLayoutPlacesStarterWidgets(t *testing.T) {
	store := newCountingStore()
	service := NewService(Options{WidgetStore: store})
	require.NoError(t, RegisterAreas(context.Background(), store))
	require.NoError(t, RegisterDefinitions(context.Background(), store, nil))

	require.NoError(t, SeedLayout(context.Background(), service))
	assert.Equal(t, len(DefaultSeedWidgets()), store.assigned)

	sidebar, err := store.ResolveArea(context.Background(), ResolveAreaInput{AreaCode: AreaSidebar})
	require.NoError(t, err)
	assert.NotEmpty(t, sidebar.Widgets)
}

func TestBootstrapSeedsOnlyEmptyDashboards(t *testing.T) {
	store := newCountingStore()
	telemetry := &testTelemetry{}
	service := NewService(Options{WidgetStore: store, Telemetry: telemetry})

	report, err := Bootstrap(context.Background(), service)
	require.NoError(t, err)
	assert.Equal(t, BootstrapReport{
		AreasCreated:       len(DefaultAreaDefinitions()),
		DefinitionsCreated: len(DefaultWidgetDefinitions()),
		Seeded:             true,
	}, report)
	assert.Contains(t, telemetry.events, "dashboard.bootstrap")

	report, err = Bootstrap(context.Background(), service)
	require.NoError(t, err)
	if report != (BootstrapReport{}) {
		t.Fatalf("expected a rerun to change nothing, got %+v", report)
	}
	assert.Equal(t, len(DefaultSeedWidgets()), store.assigned)
}

func TestBootstrapRequiresStore(t *testing.T) {
	_, err := Bootstrap(context.Background(), NewService(Options{}))
	require.ErrorIs(t, err, errMissingWidgetStore)
}

func TestBootstrapRequiresService(t *testing.T) {
	require.ErrorIs(t, SeedLayout(context.Background(), nil), errBootstrapService)
	_, err := Bootstrap(context.Background(), nil)
	require.ErrorIs(t, err, errBootstrapService)
}

func TestBootstrapWrapsStoreErrors(t *testing.T) {
	store := newCountingStore()
	store.failAreas = true
	report, err := Bootstrap(context.Background(), NewService(Options{WidgetStore: store}))
	if err == nil || report.Seeded {
		t.Fatalf("expected failure without seeding, got %+v %v", report, err)
	}
	if want := "dashboard: ensure area " + AreaMetrics; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in %v", want, err)
	}
	assert.Zero(t, store.assigned)
}
