package risk

import (
	"context"
	"sync"
	"time"
)

type mockScenarioSource struct {
	subscribeFunc func(ctx context.Context) (<-chan Batch, error)
	closeFunc     func() error
}

func (m *mockScenarioSource) Subscribe(ctx context.Context) (<-chan Batch, error) {
	if m.subscribeFunc != nil {
		return m.subscribeFunc(ctx)
	}
	return nil, nil
}

func (m *mockScenarioSource) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

type mockRecorder struct {
	mu      sync.Mutex
	recalcs int
	samples []int
}

func (m *mockRecorder) RecalcCompleted(_ time.Duration, sampleSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recalcs++
	m.samples = append(m.samples, sampleSize)
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recalcs
}
