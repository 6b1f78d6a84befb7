package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-agridash/components/dashboard"
)

// ConnectionInput controls whether the query blocks until the probe settles.
type ConnectionInput struct {
	Wait bool
}

type connectionService interface {
	ConnectionStatus(ctx context.Context, wait bool) (dashboard.ProbeStatus, error)
}

// ConnectionQuery reports the data store probe state.
type ConnectionQuery struct {
	service connectionService
}

// NewConnectionQuery builds the query.
func NewConnectionQuery(service connectionService) *ConnectionQuery {
	return &ConnectionQuery{service: service}
}

var _ gocommand.Querier[ConnectionInput, dashboard.ProbeStatus] = (*ConnectionQuery)(nil)

// Query returns the current probe status, starting the probe on first use.
func (q *ConnectionQuery) Query(ctx context.Context, input ConnectionInput) (dashboard.ProbeStatus, error) {
	return q.service.ConnectionStatus(ctx, input.Wait)
}
