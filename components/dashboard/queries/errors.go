package queries

import "errors"

var (
	// ErrUnknownArea is returned for area names outside the overview layout.
	ErrUnknownArea = errors.New("queries: unknown area")
	// ErrMissingService is returned by queries built without a dashboard service.
	ErrMissingService = errors.New("queries: dashboard service is required")
)
