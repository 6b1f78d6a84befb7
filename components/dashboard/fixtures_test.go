package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixtures(t *testing.T) {
	fx := DefaultFixtures()
	assert.Equal(t, "agricultural-demo", fx.Name())
	assert.Equal(t, "embedded", fx.Source())
	assert.Len(t, fx.Alerts(), 7)
	assert.Len(t, fx.Metrics(), 6)
	for _, dt := range DataTypes() {
		ds := fx.Dataset(dt)
		assert.Equal(t, dt, ds.Type)
		assert.NotZero(t, ds.Len(), dt)
	}
}

func TestFixturesUnknownTypeFallsBackToCrops(t *testing.T) {
	ds := DefaultFixtures().Dataset("soil")
	assert.Equal(t, DataTypeCrops, ds.Type)
	assert.Equal(t, 8, ds.Len())
}

func TestFixturesAccessorsReturnCopies(t *testing.T) {
	fx := DefaultFixtures()
	alerts := fx.Alerts()
	alerts[0].Read = true
	assert.False(t, fx.Alerts()[0].Read)
}

func TestDecodeFixturesValidation(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "version: \"1\"\nextra: true\n",
		"bad version":    "version: \"2\"\n",
		"bad data type":  "datasets:\n  soil: []\n",
		"duplicate id":   "alerts:\n  - {id: \"1\", type: pest, severity: low}\n  - {id: \"1\", type: pest, severity: low}\n",
		"bad alert type": "alerts:\n  - {id: \"1\", type: flood, severity: low}\n",
		"bad severity":   "alerts:\n  - {id: \"1\", type: pest, severity: severe}\n",
		"bad category":   "metrics:\n  - {title: Soil, category: all}\n",
		"empty":          "",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFixtures(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFixturesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	doc := "name: small\ndatasets:\n  market:\n    - { product: Dates, price: 12, change: 0 }\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	fx, err := LoadFixturesFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fx.Source())
	table := BuildTable(fx.Dataset(DataTypeMarket))
	assert.Equal(t, "+0", table.Rows[0][2].Text)

	_, err = LoadFixturesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
