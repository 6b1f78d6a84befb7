package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var errUnsupportedDriver = errors.New("datastore: unsupported sql driver")

// SQLStore probes and reads collections as tables through database/sql.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens a mysql or sqlite database and applies pool limits.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("datastore: open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return NewSQLStore(db), nil
}

// NewSQLStore wraps an existing handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Close releases the underlying handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Check counts rows in collection with the row cap applied.
func (s *SQLStore) Check(ctx context.Context, collection string, limit int) Result {
	if err := validateQuery(collection, limit); err != nil {
		return Failed(err.Error())
	}
	var count int64
	query := "SELECT COUNT(*) FROM " + collection + " LIMIT ?"
	if err := s.db.QueryRowContext(ctx, query, limit).Scan(&count); err != nil {
		return Failed(err.Error())
	}
	return Succeeded()
}

// FetchRecords loads up to limit rows. Column order follows the result set.
func (s *SQLStore) FetchRecords(ctx context.Context, collection string, limit int) ([]Record, error) {
	if err := validateQuery(collection, limit); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+collection+" LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("datastore: query %s: %w", collection, err)
	}
	defer rows.Close()

	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("datastore: columns %s: %w", collection, err)
	}
	var records []Record
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("datastore: scan %s: %w", collection, err)
		}
		rec := make(Record, len(columns))
		for i, col := range columns {
			rec[i] = Field{Name: col.Name(), Value: normalizeSQLValue(values[i], numericColumn(col.DatabaseTypeName()))}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datastore: rows %s: %w", collection, err)
	}
	return records, nil
}

// normalizeSQLValue maps driver values onto the scalar set used by Record.
// Raw bytes become numbers only for numeric columns.
func normalizeSQLValue(v any, numeric bool) any {
	switch t := v.(type) {
	case []byte:
		if numeric {
			if f, err := strconv.ParseFloat(string(t), 64); err == nil {
				return f
			}
		}
		return string(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return t
	}
}

// numericColumn matches mysql and sqlite type names such as DECIMAL, UNSIGNED BIGINT or DOUBLE.
func numericColumn(typeName string) bool {
	typeName = strings.ToUpper(typeName)
	for _, marker := range []string{"INT", "DEC", "NUMERIC", "FLOAT", "DOUBLE", "REAL"} {
		if strings.Contains(typeName, marker) {
			return true
		}
	}
	return false
}
