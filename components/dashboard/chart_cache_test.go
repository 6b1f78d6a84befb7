package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(10 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(2 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCacheSkipsFailedRenders(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("crops:bar", func() (string, error) {
		return "", assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, cache.Len())

	html, err := cache.GetOrRender("crops:bar", func() (string, error) { return "<div>bar</div>", nil })
	require.NoError(t, err)
	assert.Equal(t, "<div>bar</div>", html)
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestContentHashIsStableForEqualDatasets(t *testing.T) {
	a := DefaultFixtures().Dataset(DataTypeMarket)
	b := DefaultFixtures().Dataset(DataTypeMarket)
	assert.Equal(t, contentHash(a.Records), contentHash(b.Records))
	assert.NotEqual(t, contentHash(a.Records), contentHash(DefaultFixtures().Dataset(DataTypeCrops).Records))
	assert.Equal(t, "empty", contentHash(nil))
}

func TestChartCacheInvalidatesOneDataType(t *testing.T) {
	cache := NewChartCache(time.Minute)
	render := func() (string, error) { return "html", nil }
	for _, key := range []chartKey{
		{DataType: DataTypeMarket, Kind: ChartBar, Theme: "westeros", Content: "a"},
		{DataType: DataTypeMarket, Kind: ChartPie, Theme: "westeros", Locale: "es", Content: "b"},
		{DataType: DataTypeWeather, Kind: ChartLine, Theme: "westeros", Content: "c"},
	} {
		_, err := cache.GetOrRender(key.String(), render)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.InvalidateDataType(DataTypeMarket))
	assert.Equal(t, 0, cache.InvalidateDataType(DataTypeLivestock))
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheCountsHitsAndMisses(t *testing.T) {
	cache := NewChartCache(time.Minute)
	render := func() (string, error) { return "html", nil }
	for i := 0; i < 3; i++ {
		_, err := cache.GetOrRender("crops:bar:westeros::x", render)
		require.NoError(t, err)
	}
	stats := cache.Stats()
	assert.Equal(t, ChartCacheStats{Entries: 1, Hits: 2, Misses: 1}, stats)

	var nilCache *ChartCache
	assert.Zero(t, nilCache.InvalidateDataType(DataTypeCrops))
	assert.Equal(t, ChartCacheStats{}, nilCache.Stats())
}

func TestChartCacheDisabledByZeroTTL(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := cache.GetOrRender("k", func() (string, error) { calls++; return "x", nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.Zero(t, cache.Len())
}
