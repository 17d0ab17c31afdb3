package risk

import (
	"context"
	"time"
)

// Batch is one delivery of P&L observations for a portfolio.
type Batch struct {
	PortfolioID  string
	GeneratedAt  time.Time
	Observations []float64
}

// ScenarioSource delivers batches of observations to the engine: simulated
// P&L outcomes, curve residuals, or replayed historical scenarios.
type ScenarioSource interface {
	// Subscribe returns a channel of batches. The channel is closed when
	// the source is exhausted or closed.
	Subscribe(ctx context.Context) (<-chan Batch, error)

	// Close releases the source's resources.
	Close() error
}
