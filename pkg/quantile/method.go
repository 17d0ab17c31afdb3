// Package quantile estimates sample quantiles and expected shortfalls.
//
// A Method encodes one rule for turning a probability level into a rank
// within the sorted sample and for combining the bracketing order
// statistics. All methods are stateless and safe for concurrent use; the
// caller's sample is never mutated.
//
// Levels are measured from the bottom of the distribution: level 0.99 is
// the threshold below which 99% of observations fall.
package quantile

import (
	"cmp"
	"math"
	"slices"
)

// Method is implemented by each concrete estimation strategy.
// The hook methods are unexported: the set of strategies is fixed and
// enumerable, so implementations live in this package.
type Method interface {
	// Name returns a stable identifier for the method.
	// Used for logging, metrics and config lookup.
	Name() string

	// quantile computes the quantile from the sorted sample, applying
	// the shared bounds policy with the given extrapolation mode.
	quantile(level float64, s *sortedSample, extrapolate bool) (Result, error)

	// expectedShortfall computes the tail average from the sorted
	// sample, using the same rank logic as quantile.
	expectedShortfall(level float64, s *sortedSample) (Result, error)
}

// Quantile computes the quantile estimate at the given level from an
// unsorted sample. The implied rank must fall inside the sample's index
// range; a *RangeError is returned otherwise.
func Quantile(m Method, level float64, sample []float64) (Result, error) {
	if err := validate(level, sample); err != nil {
		return Result{}, err
	}
	return m.quantile(level, newSortedSample(sample), false)
}

// QuantileExtrapolated computes the quantile estimate at the given level
// from an unsorted sample, clamping ranks outside the sample's index range
// to the nearest order statistic (flat extrapolation). It never fails on
// range for a valid level and non-empty sample.
func QuantileExtrapolated(m Method, level float64, sample []float64) (Result, error) {
	if err := validate(level, sample); err != nil {
		return Result{}, err
	}
	return m.quantile(level, newSortedSample(sample), true)
}

// ExpectedShortfall computes the average of the worst level-fraction of
// observations. The tail average is always well-defined near the
// boundaries, so extrapolation semantics apply unconditionally; this is
// coherent with QuantileExtrapolated at the same level.
func ExpectedShortfall(m Method, level float64, sample []float64) (Result, error) {
	if err := validate(level, sample); err != nil {
		return Result{}, err
	}
	return m.expectedShortfall(level, newSortedSample(sample))
}

// validate rejects malformed input before any sorting or numeric work.
func validate(level float64, sample []float64) error {
	if !(level > 0 && level < 1) {
		return ErrInvalidLevel
	}
	if len(sample) == 0 {
		return ErrEmptySample
	}
	return nil
}

// checkIndex applies the shared bounds policy to a computed rank.
//
// With extrapolation the rank is clamped into [1, size]; without it, a rank
// outside [1, size] yields a *RangeError identifying the offending side.
func checkIndex(rank float64, size int, extrapolate bool) (float64, error) {
	if extrapolate {
		return math.Min(math.Max(rank, 1), float64(size)), nil
	}
	if rank < 1 {
		return 0, &RangeError{Rank: rank, Size: size, Direction: BelowLowest}
	}
	if rank > float64(size) {
		return 0, &RangeError{Rank: rank, Size: size, Direction: AboveHighest}
	}
	return rank, nil
}

// sortedSample is an ascending view over a sample together with the
// permutation back to the caller's original positions. Order statistics
// are numbered from 1 to size.
type sortedSample struct {
	values []float64
	source []int
}

// newSortedSample copies and stably sorts the sample, so ties keep their
// original relative order and the caller's slice is untouched.
func newSortedSample(sample []float64) *sortedSample {
	n := len(sample)
	source := make([]int, n)
	for i := range source {
		source[i] = i
	}
	slices.SortStableFunc(source, func(a, b int) int {
		return cmp.Compare(sample[a], sample[b])
	})

	values := make([]float64, n)
	for i, j := range source {
		values[i] = sample[j]
	}
	return &sortedSample{values: values, source: source}
}

func (s *sortedSample) size() int {
	return len(s.values)
}

// value returns the k-th order statistic, 1-based.
func (s *sortedSample) value(k int) float64 {
	return s.values[k-1]
}

// origin returns the original 0-based position of the k-th order statistic.
func (s *sortedSample) origin(k int) int {
	return s.source[k-1]
}
