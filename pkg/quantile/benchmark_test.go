package quantile

import (
	"math/rand"
	"testing"
)

// BenchmarkQuantile measures one estimation over a realistic scenario set.
// The sort of the copied sample dominates.
func BenchmarkQuantile(b *testing.B) {
	rng := rand.New(rand.NewSource(7))
	sample := make([]float64, 1000)
	for i := range sample {
		sample[i] = rng.NormFloat64()
	}

	for name, m := range methods {
		b.Run(name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = QuantileExtrapolated(m, 0.99, sample)
			}
		})
	}
}

// BenchmarkExpectedShortfall includes the tail accumulation on top of the sort.
func BenchmarkExpectedShortfall(b *testing.B) {
	rng := rand.New(rand.NewSource(7))
	sample := make([]float64, 1000)
	for i := range sample {
		sample[i] = rng.NormFloat64()
	}

	for name, m := range methods {
		b.Run(name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = ExpectedShortfall(m, 0.95, sample)
			}
		})
	}
}
