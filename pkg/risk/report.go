// Package risk orchestrates tail-risk estimation: it windows incoming
// profit-and-loss observations, periodically recomputes value-at-risk and
// expected shortfall at the configured confidence levels, and publishes
// the latest report for lock-free reads.
package risk

import (
	"time"

	"github.com/branched-services/go-risk/pkg/quantile"
)

// Metric holds the pair of tail statistics at one confidence level.
type Metric struct {
	// Level is the probability level, measured from the bottom of the
	// P&L distribution.
	Level float64

	// ValueAtRisk is the quantile of the windowed sample at Level.
	ValueAtRisk quantile.Result

	// ExpectedShortfall is the tail-conditional average at Level,
	// computed by the same method as ValueAtRisk.
	ExpectedShortfall quantile.Result
}

// Report represents a point-in-time tail-risk estimate.
// This struct is immutable - all fields are value types or treated as
// read-only. Safe to share across goroutines.
type Report struct {
	PortfolioID string
	AsOf        time.Time

	// Method names the quantile method that produced the metrics.
	Method string

	// SampleSize is the number of observations in the window when the
	// report was computed.
	SampleSize int

	// Metrics holds one entry per configured confidence level, in the
	// configured order.
	Metrics []Metric
}

// Metric returns the metric at the given level, if present.
func (r *Report) Metric(level float64) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Level == level {
			return m, true
		}
	}
	return Metric{}, false
}
