package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-agridash/pkg/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFetcher struct{}

func (failingFetcher) FetchRecords(context.Context, string, int) ([]datastore.Record, error) {
	return nil, errors.New("store offline")
}

func TestStoreDatasetsConvertsRows(t *testing.T) {
	mock := datastore.NewMockClient(datastore.Succeeded())
	mock.SetRecords("market", []datastore.Record{
		{{Name: "product", Value: "Wheat (ton)"}, {Name: "price", Value: 320.0}, {Name: "change", Value: 5.2}},
		{{Name: "product", Value: "Rice (ton)"}, {Name: "price", Value: nil}, {Name: "change", Value: -2.1}},
	})
	ds, err := NewStoreDatasets(mock, 0).Dataset(context.Background(), DataTypeMarket)
	require.NoError(t, err)
	assert.Equal(t, DataTypeMarket, ds.Type)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, []string{"product", "price", "change"}, ds.Records[0].Names())

	table := BuildTable(ds)
	assert.Equal(t, Cell{}, table.Rows[1][1])
	assert.Equal(t, "-2.1", table.Rows[1][2].Text)
}

func TestStoreDatasetsKeepsNullColumnsOfFirstRow(t *testing.T) {
	mock := datastore.NewMockClient(datastore.Succeeded())
	mock.SetRecords("crops", []datastore.Record{
		{{Name: "name", Value: "Wheat"}, {Name: "yield", Value: nil}, {Name: "change", Value: 1.0}},
		{{Name: "name", Value: "Rice"}, {Name: "yield", Value: 3.2}, {Name: "change", Value: -1.0}},
	})
	ds, err := NewStoreDatasets(mock, 10).Dataset(context.Background(), DataTypeCrops)
	require.NoError(t, err)

	table := BuildTable(ds)
	assert.Equal(t, []string{"Name", "Yield", "Change"}, table.Headers())
	assert.Equal(t, Cell{}, table.Rows[0][1])
	assert.Equal(t, "3.2", table.Rows[1][1].Text)
}

func TestStoreDatasetsPrintsUnsupportedValues(t *testing.T) {
	mock := datastore.NewMockClient(datastore.Succeeded())
	mock.SetRecords("market", []datastore.Record{
		{{Name: "product", Value: "Wheat"}, {Name: "tags", Value: []string{"grain", "winter"}}},
	})
	ds, err := NewStoreDatasets(mock, 10).Dataset(context.Background(), DataTypeMarket)
	require.NoError(t, err)
	value, ok := ds.Records[0].Get("tags")
	require.True(t, ok)
	assert.Equal(t, "[grain winter]", value.String())
}

func TestStoreDatasetsRequiresFetcher(t *testing.T) {
	_, err := NewStoreDatasets(nil, 10).Dataset(context.Background(), DataTypeCrops)
	assert.ErrorIs(t, err, errMissingDatasetSource)
}

func TestServiceVisualizationFallsBackToFixtures(t *testing.T) {
	telemetry := &testTelemetry{}
	service := NewService(Options{
		Datasets:  NewStoreDatasets(failingFetcher{}, 10),
		Telemetry: telemetry,
	})
	view, err := service.Visualization(context.Background(), ViewerContext{}, VisualizationRequest{
		DataType: DataTypeMarket,
		State:    DefaultVisualizationState().WithViewMode(ViewTable),
	})
	require.NoError(t, err)
	require.NotNil(t, view.Table)
	assert.Len(t, view.Table.Rows, 6)
	assert.Contains(t, telemetry.events, "dashboard.dataset.error")
}

func TestServiceVisualizationUsesStore(t *testing.T) {
	mock := datastore.NewMockClient(datastore.Succeeded())
	mock.SetRecords("livestock", []datastore.Record{
		{{Name: "type", Value: "Goats"}, {Name: "count", Value: 40.0}},
	})
	service := NewService(Options{Datasets: NewStoreDatasets(mock, 10)})
	view, err := service.Visualization(context.Background(), ViewerContext{}, VisualizationRequest{
		DataType: DataTypeLivestock,
		State:    DefaultVisualizationState().WithViewMode(ViewTable),
	})
	require.NoError(t, err)
	require.Len(t, view.Table.Rows, 1)
	assert.Equal(t, "Goats", view.Table.Rows[0][0].Text)
}

func TestServiceVisualizationShowsStoreRowsWithNestedValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Wheat","meta":{"a":1},"change":2}]`))
	}))
	t.Cleanup(server.Close)
	client, err := datastore.NewRESTClient(datastore.RESTConfig{BaseURL: server.URL, APIKey: "anon"})
	require.NoError(t, err)

	telemetry := &testTelemetry{}
	service := NewService(Options{Datasets: NewStoreDatasets(client, 10), Telemetry: telemetry})
	view, err := service.Visualization(context.Background(), ViewerContext{}, VisualizationRequest{
		DataType: DataTypeCrops,
		State:    DefaultVisualizationState().WithViewMode(ViewTable),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Meta", "Change"}, view.Table.Headers())
	require.Len(t, view.Table.Rows, 1)
	assert.Equal(t, `{"a":1}`, view.Table.Rows[0][1].Text)
	assert.Equal(t, Cell{Text: "+2", Class: classPositive}, view.Table.Rows[0][2])
	assert.NotContains(t, telemetry.events, "dashboard.dataset.error")
}
