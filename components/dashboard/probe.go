package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-agridash/pkg/datastore"
)

// ProbeState is the tri-state outcome of a connection probe.
type ProbeState string

const (
	ProbeChecking  ProbeState = "checking"
	ProbeConnected ProbeState = "connected"
	ProbeError     ProbeState = "error"
)

const (
	defaultProbeCollection = "crops"
	defaultProbeLimit      = 1
	defaultProbeTimeout    = 5 * time.Second
	unknownProbeError      = "Unknown error"
)

var probeLabels = map[ProbeState]string{
	ProbeChecking:  "Checking connection...",
	ProbeConnected: "Connected to database",
	ProbeError:     "Connection error",
}

// CheckFailure carries the store's failure message, which may be empty.
type CheckFailure = datastore.Failure

// CheckResult is the outcome of a single store query. Failures are values, never Go errors.
type CheckResult = datastore.Result

// ConnectionChecker runs the probe query: fetch at most limit rows from collection.
// Every datastore client satisfies it.
type ConnectionChecker = datastore.Checker

// ConnectionCheckerFunc adapts a function into a ConnectionChecker.
type ConnectionCheckerFunc func(ctx context.Context, collection string, limit int) CheckResult

// Check calls f.
func (f ConnectionCheckerFunc) Check(ctx context.Context, collection string, limit int) CheckResult {
	return f(ctx, collection, limit)
}

// ProbeStatus is a snapshot of the probe.
type ProbeStatus struct {
	State     ProbeState `json:"state"`
	Label     string     `json:"label"`
	Message   string     `json:"message,omitempty"`
	CheckedAt time.Time  `json:"checked_at,omitempty"`
}

// ProbeOptions configures a ConnectionProbe.
type ProbeOptions struct {
	Checker    ConnectionChecker
	Collection string
	Limit      int
	Timeout    time.Duration
	Telemetry  Telemetry
}

// ConnectionProbe checks store reachability exactly once per Start.
// Stop cancels an in-flight check and guarantees its result is discarded.
type ConnectionProbe struct {
	opts ProbeOptions

	mu         sync.Mutex
	status     ProbeStatus
	generation uint64
	started    bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConnectionProbe builds a probe in the checking state.
func NewConnectionProbe(opts ProbeOptions) *ConnectionProbe {
	if opts.Collection == "" {
		opts.Collection = defaultProbeCollection
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultProbeLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProbeTimeout
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &ConnectionProbe{
		opts:   opts,
		status: ProbeStatus{State: ProbeChecking, Label: probeLabels[ProbeChecking]},
		done:   make(chan struct{}),
	}
}

// Start launches the check in the background. Later calls are no-ops.
func (p *ConnectionProbe) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	gen := p.generation
	checkCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	p.cancel = cancel
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		result := p.check(checkCtx)
		p.apply(checkCtx, gen, result)
	}()
}

func (p *ConnectionProbe) check(ctx context.Context) CheckResult {
	if p.opts.Checker == nil {
		return CheckResult{Error: &CheckFailure{Message: "data store not configured"}}
	}
	return p.opts.Checker.Check(ctx, p.opts.Collection, p.opts.Limit)
}

func (p *ConnectionProbe) apply(ctx context.Context, gen uint64, result CheckResult) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	status := ProbeStatus{CheckedAt: time.Now().UTC()}
	if result.Success {
		status.State = ProbeConnected
	} else {
		status.State = ProbeError
		status.Message = failureMessage(result.Error)
	}
	status.Label = probeLabels[status.State]
	p.status = status
	p.mu.Unlock()

	if status.State == ProbeConnected {
		p.opts.Telemetry.Record(ctx, "dashboard.probe.connected", map[string]any{
			"collection": p.opts.Collection,
			"message":    "Database connection successful",
		})
		return
	}
	p.opts.Telemetry.Record(ctx, "dashboard.probe.failed", map[string]any{
		"collection": p.opts.Collection,
		"message":    "Database connection failed",
		"error":      status.Message,
	})
}

// failureMessage returns the store message or "Unknown error" when absent.
func failureMessage(failure *CheckFailure) string {
	if failure == nil || failure.Message == "" {
		return unknownProbeError
	}
	return failure.Message
}

// Stop cancels an in-flight check. A result that arrives afterwards is dropped.
func (p *ConnectionProbe) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	if p.cancel != nil {
		p.cancel()
	}
}

// Status returns the current snapshot.
func (p *ConnectionProbe) Status() ProbeStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Wait blocks until the started check settles or ctx ends, then returns the snapshot.
func (p *ConnectionProbe) Wait(ctx context.Context) (ProbeStatus, error) {
	p.mu.Lock()
	started := p.started
	done := p.done
	p.mu.Unlock()
	if !started {
		return p.Status(), nil
	}
	select {
	case <-done:
		return p.Status(), nil
	case <-ctx.Done():
		return p.Status(), ctx.Err()
	}
}

// RunProbe performs a single synchronous probe.
func RunProbe(ctx context.Context, opts ProbeOptions) ProbeStatus {
	probe := NewConnectionProbe(opts)
	probe.Start(ctx)
	status, _ := probe.Wait(ctx)
	return status
}
