// Package datastore holds the clients the dashboard uses to reach its remote data store.
// Checks never return Go errors: an unreachable store is reported as a failed Result.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	errInvalidCollection = errors.New("datastore: invalid collection name")
	errInvalidLimit      = errors.New("datastore: limit must be positive")
)

// Failure carries the store's error message. The message may be empty.
type Failure struct {
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a single probe query.
type Result struct {
	Success bool     `json:"success"`
	Error   *Failure `json:"error,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded() Result {
	return Result{Success: true}
}

// Failed builds a failed result with message.
func Failed(message string) Result {
	return Result{Error: &Failure{Message: message}}
}

// Checker runs the probe query: fetch at most limit rows from collection.
type Checker interface {
	Check(ctx context.Context, collection string, limit int) Result
}

// Field is a named column value. Values are strings, float64, int64, bool or nil.
type Field struct {
	Name  string
	Value any
}

// Record is a row with columns in result order.
type Record []Field

// RecordFetcher loads up to limit rows from collection.
type RecordFetcher interface {
	FetchRecords(ctx context.Context, collection string, limit int) ([]Record, error)
}

// Store combines probing and record loading.
type Store interface {
	Checker
	RecordFetcher
}

var collectionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateCollection rejects names that are not plain identifiers.
func ValidateCollection(name string) error {
	if !collectionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", errInvalidCollection, name)
	}
	return nil
}

func validateQuery(collection string, limit int) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("%w: %d", errInvalidLimit, limit)
	}
	return nil
}
