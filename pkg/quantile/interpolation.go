package quantile

import "math"

// Interpolation methods map the level to a possibly fractional rank and
// interpolate linearly between the two bracketing order statistics. They
// differ only in the formula from level to rank.

// SampleInterpolation uses rank = level * size.
var SampleInterpolation Method = &interpolationMethod{
	name: "sample-interpolation",
	rank: func(level float64, size int) float64 { return level * float64(size) },
}

// SamplePlusOneInterpolation uses rank = level * (size + 1), the standard
// estimator for samples viewed as draws without the extremes represented.
var SamplePlusOneInterpolation Method = &interpolationMethod{
	name: "sample-plus-one-interpolation",
	rank: func(level float64, size int) float64 { return level * float64(size+1) },
}

// MidwayInterpolation uses rank = level * size + 0.5, placing each order
// statistic at the midpoint of its probability bucket.
var MidwayInterpolation Method = &interpolationMethod{
	name: "midway-interpolation",
	rank: func(level float64, size int) float64 { return level*float64(size) + 0.5 },
}

// ExcelInterpolation uses rank = level * (size - 1) + 1, matching the
// PERCENTILE function of common spreadsheets. The rank is inside [1, size]
// for every level in (0, 1), so the strict entry point never range-fails.
var ExcelInterpolation Method = &interpolationMethod{
	name: "excel-interpolation",
	rank: func(level float64, size int) float64 { return level*float64(size-1) + 1 },
}

type interpolationMethod struct {
	name string
	rank func(level float64, size int) float64
}

func (m *interpolationMethod) Name() string {
	return m.name
}

func (m *interpolationMethod) quantile(level float64, s *sortedSample, extrapolate bool) (Result, error) {
	rank, err := checkIndex(m.rank(level, s.size()), s.size(), extrapolate)
	if err != nil {
		return Result{}, err
	}
	lo, hi, w := bracket(rank)
	return Result{
		Value:      (1-w)*s.value(lo) + w*s.value(hi),
		LowerIndex: s.origin(lo),
		UpperIndex: s.origin(hi),
		Weight:     w,
	}, nil
}

// expectedShortfall averages the tail at or below the bracketing rank: the
// lo whole order statistics carry unit weight and the interpolated quantile
// itself carries the fractional weight w, normalized by the total weight
// lo + w. At the same level this uses exactly the rank and weighting of
// quantile, so the result reads as the mean of the worst level-fraction.
func (m *interpolationMethod) expectedShortfall(level float64, s *sortedSample) (Result, error) {
	rank, err := checkIndex(m.rank(level, s.size()), s.size(), true)
	if err != nil {
		return Result{}, err
	}
	lo, hi, w := bracket(rank)
	q := (1-w)*s.value(lo) + w*s.value(hi)

	sum := 0.0
	for k := 1; k <= lo; k++ {
		sum += s.value(k)
	}
	return Result{
		Value:      (sum + w*q) / (float64(lo) + w),
		LowerIndex: s.origin(lo),
		UpperIndex: s.origin(hi),
		Weight:     w,
	}, nil
}

// bracket splits a validated rank into the bracketing order statistics and
// the upper interpolation weight. A whole rank is the exact-order-statistic
// case: lo == hi, weight 0.
func bracket(rank float64) (lo, hi int, w float64) {
	lo = int(math.Floor(rank))
	hi = int(math.Ceil(rank))
	if lo == hi {
		return lo, hi, 0
	}
	return lo, hi, rank - float64(lo)
}

// Verify interface compliance at compile time.
var _ Method = (*interpolationMethod)(nil)
