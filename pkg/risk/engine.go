package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/branched-services/go-risk/pkg/quantile"
)

// Recorder receives engine telemetry. Implementations must be safe for
// concurrent use; the engine calls it from its run loop only.
type Recorder interface {
	RecalcCompleted(duration time.Duration, sampleSize int)
}

// nopRecorder is the default when no recorder is injected.
type nopRecorder struct{}

func (nopRecorder) RecalcCompleted(time.Duration, int) {}

// Engine orchestrates tail-risk estimation by:
// 1. Subscribing to scenario batches
// 2. Windowing recent observations
// 3. Triggering recalculation
// 4. Updating the provider
type Engine struct {
	// Dependencies (injected)
	source   ScenarioSource
	provider *Provider
	method   quantile.Method
	logger   *slog.Logger
	recorder Recorder

	// Configuration
	windowSize     int
	levels         []float64
	recalcInterval time.Duration

	// Internal state
	window *Window

	// Lifecycle
	mu      sync.Mutex
	running bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWindowSize sets the number of observation batches to retain.
func WithWindowSize(size int) Option {
	return func(e *Engine) {
		e.windowSize = size
	}
}

// WithLevels sets the confidence levels reported, measured from the
// bottom of the distribution.
func WithLevels(levels ...float64) Option {
	return func(e *Engine) {
		e.levels = levels
	}
}

// WithMethod sets the quantile estimation method.
func WithMethod(m quantile.Method) Option {
	return func(e *Engine) {
		e.method = m
	}
}

// WithRecalcInterval sets how often to recompute reports.
func WithRecalcInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.recalcInterval = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// New creates a new Engine with the given dependencies and options.
func New(source ScenarioSource, provider *Provider, opts ...Option) *Engine {
	e := &Engine{
		source:         source,
		provider:       provider,
		method:         quantile.SampleInterpolation,
		logger:         slog.Default(),
		recorder:       nopRecorder{},
		windowSize:     20,
		levels:         []float64{0.95, 0.975, 0.99},
		recalcInterval: time.Second,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.window = NewWindow(e.windowSize)
	e.logger = e.logger.With("component", "engine")

	return e
}

// Run starts the engine. Blocks until context is canceled or the scenario
// source is exhausted.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("engine already running")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	batchCh, err := e.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to scenarios: %w", err)
	}

	ticker := time.NewTicker(e.recalcInterval)
	defer ticker.Stop()

	e.logger.Info("engine running",
		"method", e.method.Name(),
		"levels", e.levels,
		"window_size", e.windowSize,
		"recalc_interval", e.recalcInterval,
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping")
			return nil

		case batch, ok := <-batchCh:
			if !ok {
				e.logger.Info("scenario source exhausted")
				e.recalculate()
				return nil
			}
			e.handleBatch(batch)

		case <-ticker.C:
			e.recalculate()
		}
	}
}

// handleBatch windows a new batch and recomputes immediately so fresh
// scenarios show up without waiting for the next tick.
func (e *Engine) handleBatch(batch Batch) {
	if len(batch.Observations) == 0 {
		e.logger.Warn("discarding empty batch", "portfolio", batch.PortfolioID)
		return
	}

	e.window.Push(batch)
	e.recalculate()

	e.logger.Debug("processed batch",
		"portfolio", batch.PortfolioID,
		"observations", len(batch.Observations),
		"window_batches", e.window.Len(),
	)
}

// recalculate computes a new report and updates the provider.
func (e *Engine) recalculate() {
	start := time.Now()

	sample := e.window.Flatten()
	if len(sample) == 0 {
		return
	}

	latest, _ := e.window.Latest()
	report := &Report{
		PortfolioID: latest.PortfolioID,
		AsOf:        time.Now(),
		Method:      e.method.Name(),
		SampleSize:  len(sample),
		Metrics:     make([]Metric, 0, len(e.levels)),
	}

	for _, level := range e.levels {
		vaR, err := quantile.QuantileExtrapolated(e.method, level, sample)
		if err != nil {
			e.logger.Error("quantile failed", "level", level, "error", err)
			return
		}
		es, err := quantile.ExpectedShortfall(e.method, level, sample)
		if err != nil {
			e.logger.Error("expected shortfall failed", "level", level, "error", err)
			return
		}
		report.Metrics = append(report.Metrics, Metric{
			Level:             level,
			ValueAtRisk:       vaR,
			ExpectedShortfall: es,
		})
	}

	e.provider.Update(report)
	e.recorder.RecalcCompleted(time.Since(start), len(sample))

	e.logger.Debug("report updated",
		"portfolio", report.PortfolioID,
		"sample_size", report.SampleSize,
		"duration_us", time.Since(start).Microseconds(),
	)
}
