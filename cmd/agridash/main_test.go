package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-agridash/components/dashboard"
	"github.com/goliatone/go-agridash/pkg/config"
	"github.com/goliatone/go-agridash/pkg/datastore"
)

func TestRenderTablePlainMarket(t *testing.T) {
	ds := dashboard.DefaultFixtures().Dataset(dashboard.DataTypeMarket)
	out := renderTable(dashboard.BuildTable(ds), false)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)
	assert.Contains(t, lines[1], "Product")
	assert.Contains(t, lines[1], "Change")
	assert.Contains(t, out, "+5.2")
	assert.Contains(t, out, "-2.1")
	assert.NotContains(t, out, "+320", "only the change column is signed")
}

func TestRenderTableEmptyDataset(t *testing.T) {
	assert.Equal(t, "", renderTable(dashboard.BuildTable(dashboard.Dataset{}), true))
}

func TestRenderProbeStatus(t *testing.T) {
	assert.Equal(t, "connected: Connected to database", renderProbeStatus(dashboard.ProbeStatus{
		State: dashboard.ProbeConnected,
		Label: "Connected to database",
	}))
	assert.Equal(t, "error: Connection error (Unknown error)", renderProbeStatus(dashboard.ProbeStatus{
		State:   dashboard.ProbeError,
		Label:   "Connection error",
		Message: "Unknown error",
	}))
}

func TestRenderFixturesSummary(t *testing.T) {
	out := renderFixturesSummary(dashboard.DefaultFixtures())
	assert.Contains(t, out, "agricultural-demo is valid")
	assert.Contains(t, out, "crops      8 records")
	assert.Contains(t, out, "alerts     7 (4 unread)")
	assert.Contains(t, out, "metrics    6")
}

func TestOpenStoreMockDriverConnects(t *testing.T) {
	store, closeStore, err := openStore(config.StoreConfig{Driver: config.DriverMock})
	require.NoError(t, err)
	defer closeStore()

	status := dashboard.RunProbe(context.Background(), dashboard.ProbeOptions{Checker: store})
	assert.Equal(t, dashboard.ProbeConnected, status.State)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, _, err := openStore(config.StoreConfig{Driver: "mongo"})
	require.ErrorIs(t, err, config.ErrUnknownDriver)
}

func TestOpenStoreRESTNeedsCredentials(t *testing.T) {
	_, _, err := openStore(config.StoreConfig{Driver: config.DriverREST})
	require.Error(t, err)
}

func TestOpenStoreSQLite(t *testing.T) {
	store, closeStore, err := openStore(config.StoreConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer closeStore()
	_, ok := store.(*datastore.SQLStore)
	assert.True(t, ok)
}

func TestConfigureLogging(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, configureLogging(&buf, config.LogConfig{Level: "WARN", Format: config.FormatJSON}))
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	require.Error(t, configureLogging(&buf, config.LogConfig{Level: "loud"}))
}

func TestDatasetForFixtures(t *testing.T) {
	root := &cli{}
	ds, err := root.datasetFor(context.Background(), "livestock", false)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())

	_, err = root.datasetFor(context.Background(), "soil", false)
	require.Error(t, err)
}
