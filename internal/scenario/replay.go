package scenario

import (
	"context"
	"time"

	"github.com/branched-services/go-risk/pkg/risk"
)

// Replay feeds a fixed set of observations to the engine in batches.
// Useful for backtesting and for running the service against a file
// instead of a live scenario producer.
type Replay struct {
	portfolioID  string
	observations []float64
	batchSize    int
}

// NewReplay creates a replay source. A non-positive batchSize delivers
// everything in one batch.
func NewReplay(portfolioID string, observations []float64, batchSize int) *Replay {
	if batchSize <= 0 {
		batchSize = len(observations)
	}
	return &Replay{
		portfolioID:  portfolioID,
		observations: observations,
		batchSize:    batchSize,
	}
}

// Subscribe implements risk.ScenarioSource. The channel closes once every
// observation has been delivered.
func (r *Replay) Subscribe(ctx context.Context) (<-chan risk.Batch, error) {
	ch := make(chan risk.Batch)
	go func() {
		defer close(ch)
		for start := 0; start < len(r.observations); start += r.batchSize {
			end := start + r.batchSize
			if end > len(r.observations) {
				end = len(r.observations)
			}
			batch := risk.Batch{
				PortfolioID:  r.portfolioID,
				GeneratedAt:  time.Now(),
				Observations: r.observations[start:end],
			}
			select {
			case <-ctx.Done():
				return
			case ch <- batch:
			}
		}
	}()
	return ch, nil
}

// Close implements risk.ScenarioSource.
func (r *Replay) Close() error {
	return nil
}

// Verify interface compliance at compile time.
var _ risk.ScenarioSource = (*Replay)(nil)
