package dashboard

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	fixturesVersionV1 = "1"
	// FixturesVersion exposes the current fixtures format version for tooling.
	FixturesVersion = fixturesVersionV1
)

//go:embed fixtures/agri.yaml
var embeddedFixtures []byte

// FixturesDocument is the on-disk YAML shape of a fixtures file.
type FixturesDocument struct {
	Version  string                `yaml:"version"`
	Name     string                `yaml:"name,omitempty"`
	Datasets map[DataType][]Record `yaml:"datasets"`
	Alerts   []AlertRecord         `yaml:"alerts"`
	Metrics  []Metric              `yaml:"metrics"`
	Source   string                `yaml:"-"`
}

// Fixtures is the single read-only source of datasets, alerts and metrics.
// Accessors return copies, so it is safe to share between requests.
type Fixtures struct {
	name     string
	source   string
	datasets map[DataType]Dataset
	alerts   []AlertRecord
	metrics  []Metric
}

var (
	defaultFixturesOnce sync.Once
	defaultFixtures     *Fixtures
)

// DefaultFixtures returns the embedded demo fixtures.
func DefaultFixtures() *Fixtures {
	defaultFixturesOnce.Do(func() {
		doc, err := DecodeFixtures(bytes.NewReader(embeddedFixtures))
		if err != nil {
			panic(fmt.Errorf("dashboard: embedded fixtures are invalid: %w", err))
		}
		doc.Source = "embedded"
		defaultFixtures = NewFixtures(doc)
	})
	return defaultFixtures
}

// NewFixtures freezes a decoded document.
func NewFixtures(doc *FixturesDocument) *Fixtures {
	f := &Fixtures{
		name:     doc.Name,
		source:   doc.Source,
		datasets: make(map[DataType]Dataset, len(doc.Datasets)),
		alerts:   append([]AlertRecord(nil), doc.Alerts...),
		metrics:  append([]Metric(nil), doc.Metrics...),
	}
	for dt, records := range doc.Datasets {
		f.datasets[dt] = Dataset{Type: dt, Records: records}.Clone()
	}
	return f
}

// Name returns the fixture set name.
func (f *Fixtures) Name() string { return f.name }

// Source returns where the fixtures were loaded from.
func (f *Fixtures) Source() string { return f.source }

// Dataset returns a copy of the dataset for dt. Unknown types fall back to crops.
func (f *Fixtures) Dataset(dt DataType) Dataset {
	ds, ok := f.datasets[dt]
	if !ok {
		ds = f.datasets[DataTypeCrops]
		ds.Type = DataTypeCrops
	}
	return ds.Clone()
}

// Alerts returns a copy of the alert list.
func (f *Fixtures) Alerts() []AlertRecord {
	return append([]AlertRecord(nil), f.alerts...)
}

// Metrics returns a copy of the metric list.
func (f *Fixtures) Metrics() []Metric {
	return append([]Metric(nil), f.metrics...)
}

// LoadFixturesFile reads and validates a fixtures file.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open fixtures %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode fixtures %s: %w", path, err)
	}
	doc.Source = path
	return NewFixtures(doc), nil
}

// DecodeFixtures reads a fixtures document from any reader. Unknown keys are rejected.
func DecodeFixtures(r io.Reader) (*FixturesDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc FixturesDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: fixtures document is empty")
		}
		return nil, fmt.Errorf("dashboard: parse fixtures: %w", err)
	}
	if doc.Version == "" {
		doc.Version = fixturesVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks versions, dataset keys, alert enums and uniqueness.
func (doc *FixturesDocument) Validate() error {
	if doc.Version != fixturesVersionV1 {
		return fmt.Errorf("dashboard: unsupported fixtures version %q", doc.Version)
	}
	for dt := range doc.Datasets {
		if _, err := ParseDataType(string(dt)); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(doc.Alerts))
	for idx, alert := range doc.Alerts {
		if alert.ID == "" {
			return fmt.Errorf("dashboard: alert at index %d is missing id", idx)
		}
		if _, exists := seen[alert.ID]; exists {
			return fmt.Errorf("dashboard: fixtures duplicate alert id %s", alert.ID)
		}
		seen[alert.ID] = struct{}{}
		switch alert.Type {
		case AlertWeather, AlertPest, AlertMarket:
		default:
			return fmt.Errorf("dashboard: alert %s has unknown type %q", alert.ID, alert.Type)
		}
		switch alert.Severity {
		case SeverityLow, SeverityMedium, SeverityHigh:
		default:
			return fmt.Errorf("dashboard: alert %s has unknown severity %q", alert.ID, alert.Severity)
		}
	}
	for idx, metric := range doc.Metrics {
		if metric.Title == "" {
			return fmt.Errorf("dashboard: metric at index %d is missing title", idx)
		}
		if tab, err := ParseMetricTab(string(metric.Category)); err != nil || metric.Category == "" || tab == MetricTabAll {
			return fmt.Errorf("dashboard: metric %s has unknown category %q", metric.Title, metric.Category)
		}
	}
	return nil
}
