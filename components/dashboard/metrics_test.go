package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricTitles(metrics []Metric) []string {
	out := make([]string, len(metrics))
	for i, m := range metrics {
		out[i] = m.Title
	}
	return out
}

func TestGroupMetrics(t *testing.T) {
	metrics := DefaultFixtures().Metrics()
	assert.Equal(t, metrics, GroupMetrics(metrics, MetricTabAll))
	assert.Equal(t, []string{"Crop Yields"}, metricTitles(GroupMetrics(metrics, MetricTab(MetricCrops))))
	assert.Equal(t,
		[]string{"Water Resources", "Weather Conditions", "Pest Activity"},
		metricTitles(GroupMetrics(metrics, MetricTab(MetricEnvironment))),
	)
	assert.Empty(t, GroupMetrics(nil, MetricTab(MetricMarket)))
}

func TestParseMetricTab(t *testing.T) {
	tab, err := ParseMetricTab("")
	require.NoError(t, err)
	assert.Equal(t, MetricTabAll, tab)

	tab, err = ParseMetricTab(" Livestock ")
	require.NoError(t, err)
	assert.Equal(t, MetricTab(MetricLivestock), tab)

	_, err = ParseMetricTab("soil")
	assert.ErrorIs(t, err, errInvalidMetricTab)
}

func TestNewMetricCardDirection(t *testing.T) {
	up := NewMetricCard(Metric{Title: "Crop Yields", Value: "4.2 tons/ha", Change: 12.5})
	assert.True(t, up.Positive)
	assert.Equal(t, "up", up.Direction)
	assert.Equal(t, "12.5%", up.ChangeText)
	assert.Equal(t, "text-green-500", up.ColorClass)

	down := NewMetricCard(Metric{Title: "Water", Change: -5.2})
	assert.False(t, down.Positive)
	assert.Equal(t, "down", down.Direction)
	assert.Equal(t, "5.2%", down.ChangeText)
	assert.Equal(t, "text-red-500", down.ColorClass)

	flat := NewMetricCard(Metric{Title: "Flat"})
	assert.True(t, flat.Positive)
	assert.Equal(t, "0%", flat.ChangeText)
}

func TestBuildMetricsOverview(t *testing.T) {
	view := BuildMetricsOverview(DefaultFixtures().Metrics(), MetricTab(MetricLivestock), "", "")
	assert.Equal(t, "Key Metrics Overview", view.Title)
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "Livestock Health", view.Cards[0].Title)
	assert.Equal(t, RegionAll, view.Region)
	assert.Equal(t, Period("month"), view.Period)
	require.Len(t, view.Tabs, 5)
	assert.True(t, view.Tabs[2].Active)

	view = BuildMetricsOverview(DefaultFixtures().Metrics(), MetricTabAll, "north", "year")
	assert.Len(t, view.Cards, 6)
	for _, opt := range view.Regions {
		assert.Equal(t, opt.Value == "north", opt.Selected, opt.Value)
	}
}

func TestParsePeriod(t *testing.T) {
	period, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Period("month"), period)

	period, err = ParsePeriod("quarter")
	require.NoError(t, err)
	assert.Equal(t, Period("quarter"), period)

	_, err = ParsePeriod("decade")
	assert.ErrorIs(t, err, errInvalidSelection)
}
