package datastore

import (
	"context"
	"sync"
)

// MockClient returns a fixed result and fixed records. It is safe for concurrent use.
type MockClient struct {
	mu      sync.RWMutex
	result  Result
	records map[string][]Record
	calls   int
}

// NewMockClient builds a mock that answers every check with result.
func NewMockClient(result Result) *MockClient {
	return &MockClient{result: result, records: map[string][]Record{}}
}

// SetRecords registers the rows returned for collection.
func (m *MockClient) SetRecords(collection string, records []Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[collection] = records
}

// Check returns the configured result unless ctx has already ended.
func (m *MockClient) Check(ctx context.Context, _ string, _ int) Result {
	m.mu.Lock()
	m.calls++
	result := m.result
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Failed(err.Error())
	}
	return result
}

// FetchRecords returns at most limit registered rows.
func (m *MockClient) FetchRecords(_ context.Context, collection string, limit int) ([]Record, error) {
	if err := validateQuery(collection, limit); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.records[collection]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]Record, len(rows))
	for i, rec := range rows {
		out[i] = append(Record(nil), rec...)
	}
	return out, nil
}

// Calls reports how many checks ran.
func (m *MockClient) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
