package risk

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotReady indicates the engine has not produced its first report.
var ErrNotReady = errors.New("risk engine not ready")

// ReportReader provides read-only access to risk reports.
// Implemented by Provider; consumers should depend on this interface.
type ReportReader interface {
	Current(ctx context.Context) (*Report, error)
}

// ReadinessChecker provides health check functionality.
// Implemented by Provider; used by health probes.
type ReadinessChecker interface {
	Ready() bool
}

// Provider serves pre-computed risk reports.
//
// Design:
// - Writes happen when a report is recomputed (~every recalc interval)
// - Reads happen on every API request (potentially thousands per second)
// - atomic.Pointer provides lock-free reads with zero allocations
//
// Thread safety: All methods are safe for concurrent use.
type Provider struct {
	current atomic.Pointer[Report]
	updates atomic.Uint64 // total number of updates (for metrics)
}

// NewProvider creates a new Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Update atomically replaces the current report.
// The provided report should be treated as immutable after this call.
func (p *Provider) Update(r *Report) {
	p.current.Store(r)
	p.updates.Add(1)
}

// Current returns the latest risk report.
// Returns ErrNotReady if no report has been computed yet.
//
// This is the hot path - must be as fast as possible.
// Single atomic load, no allocations, no locks.
func (p *Provider) Current(ctx context.Context) (*Report, error) {
	// Check context first to support request cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := p.current.Load()
	if r == nil {
		return nil, ErrNotReady
	}
	return r, nil
}

// Ready returns true if at least one report has been computed.
// Used for health/readiness checks.
func (p *Provider) Ready() bool {
	return p.current.Load() != nil
}

// UpdateCount returns the total number of report updates.
// Useful for metrics and debugging.
func (p *Provider) UpdateCount() uint64 {
	return p.updates.Load()
}

// Verify interface compliance at compile time.
var (
	_ ReportReader     = (*Provider)(nil)
	_ ReadinessChecker = (*Provider)(nil)
)
