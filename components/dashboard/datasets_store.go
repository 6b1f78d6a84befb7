package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-agridash/pkg/datastore"
)

const defaultStoreRowLimit = 100

var errMissingDatasetSource = errors.New("dashboard: dataset source not configured")

// DatasetSource loads the dataset shown for a data type.
type DatasetSource interface {
	Dataset(ctx context.Context, dt DataType) (Dataset, error)
}

// StoreDatasets reads datasets from a record store. Each data type maps to the collection
// of the same name.
type StoreDatasets struct {
	fetcher datastore.RecordFetcher
	limit   int
}

// NewStoreDatasets wraps a record fetcher. A non-positive limit selects 100 rows.
func NewStoreDatasets(fetcher datastore.RecordFetcher, limit int) *StoreDatasets {
	if limit <= 0 {
		limit = defaultStoreRowLimit
	}
	return &StoreDatasets{fetcher: fetcher, limit: limit}
}

// Dataset fetches the collection and converts its rows. NULL columns are kept as
// empty strings so the first row still defines every column. Values the table cannot
// represent degrade to their printed form.
func (s *StoreDatasets) Dataset(ctx context.Context, dt DataType) (Dataset, error) {
	if s == nil || s.fetcher == nil {
		return Dataset{}, errMissingDatasetSource
	}
	rows, err := s.fetcher.FetchRecords(ctx, string(dt), s.limit)
	if err != nil {
		return Dataset{}, err
	}
	ds := Dataset{Type: dt, Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		rec := Record{Fields: make([]Field, 0, len(row))}
		for _, col := range row {
			rec.Fields = append(rec.Fields, Field{Name: col.Name, Value: storeValue(col.Value)})
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func storeValue(raw any) Value {
	value, err := ValueOf(raw)
	if err != nil {
		return StringValue(fmt.Sprint(raw))
	}
	return value
}

// FixtureDatasets serves the bundled fixtures as a DatasetSource.
type FixtureDatasets struct {
	Fixtures *Fixtures
}

// Dataset returns the fixture dataset for dt.
func (f FixtureDatasets) Dataset(_ context.Context, dt DataType) (Dataset, error) {
	if f.Fixtures == nil {
		return DefaultFixtures().Dataset(dt), nil
	}
	return f.Fixtures.Dataset(dt), nil
}

// resolveDataset prefers source and falls back to the fixtures when it fails.
func resolveDataset(ctx context.Context, source DatasetSource, fixtures *Fixtures, dt DataType, telemetry Telemetry) Dataset {
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}
	if !knownDataType(dt) {
		dt = DataTypeCrops
	}
	if source == nil {
		return fixtures.Dataset(dt)
	}
	ds, err := source.Dataset(ctx, dt)
	if err != nil {
		normalizeTelemetry(telemetry).Record(ctx, "dashboard.dataset.error", map[string]any{
			"data_type": string(dt),
			"error":     err.Error(),
		})
		return fixtures.Dataset(dt)
	}
	ds.Type = dt
	return ds
}

func knownDataType(dt DataType) bool {
	for _, known := range DataTypes() {
		if known == dt {
			return true
		}
	}
	return false
}
